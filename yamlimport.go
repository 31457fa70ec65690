package docskema

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	js "github.com/reoring/docskema/jsonschema"
)

// ImportYAML accepts YAML-authored schema documents: a multi-document stream,
// a sequence of documents, or a single document. Property order is taken from
// the YAML source, matching the JSON import path. A single document gets the
// legacy single-schema conversion; anything more shares one $defs pool.
func ImportYAML(data []byte) ([]*Class, Diag, error) {
	d := &simpleDiag{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []*js.Schema
	single := true
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, d, fmt.Errorf("docskema: invalid YAML: %w", err)
		}
		root := &node
		if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
			root = root.Content[0]
		}
		if root.Kind == yaml.SequenceNode {
			single = false
			for _, el := range root.Content {
				s, err := schemaFromYAML(el)
				if err != nil {
					return nil, d, err
				}
				docs = append(docs, s)
			}
			continue
		}
		if root.Kind != yaml.MappingNode {
			d.warnf("/", CodeInvalidInput, "skipping non-mapping YAML document")
			continue
		}
		s, err := schemaFromYAML(root)
		if err != nil {
			return nil, d, err
		}
		docs = append(docs, s)
	}
	switch {
	case len(docs) == 0:
		return nil, d, nil
	case len(docs) == 1 && single:
		return convertDocument(docs[0], d), d, nil
	default:
		return convertDocuments(docs, d), d, nil
	}
}

func schemaFromYAML(n *yaml.Node) (*js.Schema, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("docskema: schema node must be a YAML mapping (line %d)", n.Line)
	}
	s := &js.Schema{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		val := n.Content[i+1]
		var err error
		switch key {
		case "id":
			err = val.Decode(&s.NodeID)
		case "name":
			err = val.Decode(&s.NodeName)
		case "$schema":
			err = val.Decode(&s.Version)
		case "$id":
			err = val.Decode(&s.ID)
		case "$ref":
			err = val.Decode(&s.Ref)
		case "type":
			err = val.Decode(&s.Type)
		case "description":
			err = val.Decode(&s.Description)
		case js.KeywordDocumentType:
			err = val.Decode(&s.DocumentType)
		case js.KeywordNamePattern:
			err = val.Decode(&s.NamePattern)
		case js.KeywordPagePattern:
			err = val.Decode(&s.PagePattern)
		case "properties":
			s.Properties, err = propertiesFromYAML(val)
		case "required":
			err = val.Decode(&s.Required)
		case "items":
			s.Items, err = schemaFromYAML(val)
		case "$defs":
			s.Defs, err = defsFromYAML(val)
		case "examples":
			err = val.Decode(&s.Examples)
		default:
			var v any
			if err = val.Decode(&v); err == nil {
				s.SetExtra(key, v)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("docskema: YAML keyword %q: %w", key, err)
		}
	}
	return s, nil
}

func propertiesFromYAML(n *yaml.Node) (*js.Properties, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("docskema: properties must be a YAML mapping (line %d)", n.Line)
	}
	props := js.NewProperties()
	for i := 0; i+1 < len(n.Content); i += 2 {
		child, err := schemaFromYAML(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		props.Set(n.Content[i].Value, child)
	}
	return props, nil
}

func defsFromYAML(n *yaml.Node) (map[string]*js.Schema, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("docskema: $defs must be a YAML mapping (line %d)", n.Line)
	}
	defs := make(map[string]*js.Schema, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		def, err := schemaFromYAML(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		defs[n.Content[i].Value] = def
	}
	return defs, nil
}
