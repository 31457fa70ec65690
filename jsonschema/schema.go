// Package jsonschema holds the wire model for the designer: a single Schema
// node type covering the draft 2020-12 keywords the designer interprets, with
// every other keyword carried verbatim so externally authored schemas survive
// a round trip untouched.
package jsonschema

import (
	"bytes"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// Version2020 is the meta-schema URI stamped onto every exported document.
const Version2020 = "https://json-schema.org/draft/2020-12/schema"

// DefsPrefix is the local reference prefix used for all $ref values.
const DefsPrefix = "#/$defs/"

// Custom keywords recognized on document-type schemas. They are opaque
// pass-through metadata everywhere except the import/export envelope.
const (
	KeywordDocumentType = "x-document-type"
	KeywordNamePattern  = "x-document-name-pattern"
	KeywordPagePattern  = "x-page-content-pattern"
)

// Schema is one JSON Schema node. The same node shape serves both the editing
// model (where id/name bookkeeping keys may be present) and the wire format;
// the exporter strips the bookkeeping keys at the boundary.
//
// Keywords the designer does not interpret live in Extra and round-trip
// verbatim. Marshal order is fixed, so serialization is deterministic.
type Schema struct {
	// Editor bookkeeping, not JSON Schema keywords. Stripped on export.
	NodeID   string // "id"
	NodeName string // "name"

	Version     string // "$schema"
	ID          string // "$id"
	Ref         string // "$ref"
	Type        string
	Description string

	Properties *Properties
	Required   []string
	Items      *Schema
	Defs       map[string]*Schema // "$defs"

	// Document-type envelope metadata.
	DocumentType string // "x-document-type"
	Examples     []any
	NamePattern  string // "x-document-name-pattern"
	PagePattern  string // "x-page-content-pattern"

	// Extra holds every keyword not modeled above (enum, const, pattern,
	// minimum, oneOf, if/then/else, ...), preserved verbatim.
	Extra map[string]any
}

// NewObject returns an empty object node ({type:"object", properties:{}}).
func NewObject() *Schema {
	return &Schema{Type: "object", Properties: NewProperties()}
}

// RefName extracts the class name from a local "#/$defs/<name>" reference.
// It returns "" when the node has no local $ref.
func (s *Schema) RefName() string {
	if s == nil || !strings.HasPrefix(s.Ref, DefsPrefix) {
		return ""
	}
	return strings.TrimPrefix(s.Ref, DefsPrefix)
}

// RefTo builds the local reference string for a class name.
func RefTo(name string) string { return DefsPrefix + name }

// Clone returns a deep copy. Extra values are copied per key; nested maps and
// slices inside an Extra value are shared, since the designer never mutates
// inside opaque keywords.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	out.Properties = s.Properties.Clone()
	out.Items = s.Items.Clone()
	if s.Required != nil {
		out.Required = append([]string(nil), s.Required...)
	}
	if s.Examples != nil {
		out.Examples = append([]any(nil), s.Examples...)
	}
	if s.Defs != nil {
		out.Defs = make(map[string]*Schema, len(s.Defs))
		for k, v := range s.Defs {
			out.Defs[k] = v.Clone()
		}
	}
	if s.Extra != nil {
		out.Extra = make(map[string]any, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}

// SetExtra records an uninterpreted keyword, allocating the map lazily.
func (s *Schema) SetExtra(key string, v any) {
	if s.Extra == nil {
		s.Extra = make(map[string]any)
	}
	s.Extra[key] = v
}

// keywords with dedicated fields; everything else lands in Extra.
var knownKeywords = map[string]bool{
	"id": true, "name": true,
	"$schema": true, "$id": true, "$ref": true,
	"type": true, "description": true,
	"properties": true, "required": true, "items": true, "$defs": true,
	KeywordDocumentType: true, "examples": true,
	KeywordNamePattern: true, KeywordPagePattern: true,
}

// MarshalJSON writes known keywords in a canonical order, then Extra keys
// sorted, so exports are byte-for-byte deterministic.
func (s *Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	field := func(key string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(vb)
		return nil
	}
	str := func(key, v string) error {
		if v == "" {
			return nil
		}
		return field(key, v)
	}

	if err := str("id", s.NodeID); err != nil {
		return nil, err
	}
	if err := str("name", s.NodeName); err != nil {
		return nil, err
	}
	if err := str("$schema", s.Version); err != nil {
		return nil, err
	}
	if err := str("$id", s.ID); err != nil {
		return nil, err
	}
	if err := str(KeywordDocumentType, s.DocumentType); err != nil {
		return nil, err
	}
	if err := str("$ref", s.Ref); err != nil {
		return nil, err
	}
	if err := str("type", s.Type); err != nil {
		return nil, err
	}
	if err := str("description", s.Description); err != nil {
		return nil, err
	}
	if s.Properties != nil {
		if err := field("properties", s.Properties); err != nil {
			return nil, err
		}
	}
	if len(s.Required) > 0 {
		if err := field("required", s.Required); err != nil {
			return nil, err
		}
	}
	if s.Items != nil {
		if err := field("items", s.Items); err != nil {
			return nil, err
		}
	}
	if len(s.Defs) > 0 {
		names := make([]string, 0, len(s.Defs))
		for n := range s.Defs {
			names = append(names, n)
		}
		sort.Strings(names)
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(`"$defs":{`)
		for i, n := range names {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(n)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := json.Marshal(s.Defs[n])
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
	}
	if len(s.Examples) > 0 {
		if err := field("examples", s.Examples); err != nil {
			return nil, err
		}
	}
	if err := str(KeywordNamePattern, s.NamePattern); err != nil {
		return nil, err
	}
	if err := str(KeywordPagePattern, s.PagePattern); err != nil {
		return nil, err
	}
	if len(s.Extra) > 0 {
		keys := make([]string, 0, len(s.Extra))
		for k := range s.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := field(k, s.Extra[k]); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes known keywords into their fields and keeps everything
// else in Extra. Property order is preserved (see Properties).
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Schema{}
	decodeStr := func(key string, dst *string) error {
		rm, ok := raw[key]
		if !ok {
			return nil
		}
		return json.Unmarshal(rm, dst)
	}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"id", &s.NodeID},
		{"name", &s.NodeName},
		{"$schema", &s.Version},
		{"$id", &s.ID},
		{"$ref", &s.Ref},
		{"type", &s.Type},
		{"description", &s.Description},
		{KeywordDocumentType, &s.DocumentType},
		{KeywordNamePattern, &s.NamePattern},
		{KeywordPagePattern, &s.PagePattern},
	} {
		if err := decodeStr(f.key, f.dst); err != nil {
			return err
		}
	}
	if rm, ok := raw["properties"]; ok {
		s.Properties = NewProperties()
		if err := json.Unmarshal(rm, s.Properties); err != nil {
			return err
		}
	}
	if rm, ok := raw["required"]; ok {
		if err := json.Unmarshal(rm, &s.Required); err != nil {
			return err
		}
	}
	if rm, ok := raw["items"]; ok {
		s.Items = &Schema{}
		if err := json.Unmarshal(rm, s.Items); err != nil {
			return err
		}
	}
	if rm, ok := raw["$defs"]; ok {
		if err := json.Unmarshal(rm, &s.Defs); err != nil {
			return err
		}
	}
	if rm, ok := raw["examples"]; ok {
		if err := json.Unmarshal(rm, &s.Examples); err != nil {
			return err
		}
	}
	for k, rm := range raw {
		if knownKeywords[k] {
			continue
		}
		var v any
		if err := json.Unmarshal(rm, &v); err != nil {
			return err
		}
		s.SetExtra(k, v)
	}
	return nil
}
