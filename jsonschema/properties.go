package jsonschema

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Properties is an insertion-ordered properties map. Order is significant:
// it drives both UI layout and the key order of exported schemas.
type Properties struct {
	keys []string
	m    map[string]*Schema
}

// NewProperties returns an empty, ready-to-use Properties.
func NewProperties() *Properties {
	return &Properties{m: make(map[string]*Schema)}
}

// Len reports the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Get looks up a property by name.
func (p *Properties) Get(name string) (*Schema, bool) {
	if p == nil {
		return nil, false
	}
	s, ok := p.m[name]
	return s, ok
}

// Has reports whether a property with the given name exists.
func (p *Properties) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Set inserts or replaces a property. A new name is appended at the end of
// the insertion order; an existing name keeps its position.
func (p *Properties) Set(name string, s *Schema) {
	if p.m == nil {
		p.m = make(map[string]*Schema)
	}
	if _, ok := p.m[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.m[name] = s
}

// Delete removes a property, preserving the relative order of the rest.
func (p *Properties) Delete(name string) {
	if p == nil {
		return
	}
	if _, ok := p.m[name]; !ok {
		return
	}
	delete(p.m, name)
	for i, k := range p.keys {
		if k == name {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the property names in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Rename moves a property to a new key, keeping its position and value.
// It fails when old is absent or new already exists.
func (p *Properties) Rename(old, new string) bool {
	if p == nil {
		return false
	}
	s, ok := p.m[old]
	if !ok {
		return false
	}
	if _, exists := p.m[new]; exists {
		return false
	}
	delete(p.m, old)
	p.m[new] = s
	for i, k := range p.keys {
		if k == old {
			p.keys[i] = new
			break
		}
	}
	return true
}

// Move relocates the property at oldIndex to newIndex with splice semantics:
// the property is removed and reinserted, shifting neighbors rather than
// swapping. Out-of-range indexes are ignored.
func (p *Properties) Move(oldIndex, newIndex int) {
	if p == nil {
		return
	}
	n := len(p.keys)
	if oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n || oldIndex == newIndex {
		return
	}
	k := p.keys[oldIndex]
	p.keys = append(p.keys[:oldIndex], p.keys[oldIndex+1:]...)
	rest := append([]string(nil), p.keys[newIndex:]...)
	p.keys = append(append(p.keys[:newIndex], k), rest...)
}

// Clone returns a deep copy.
func (p *Properties) Clone() *Properties {
	if p == nil {
		return nil
	}
	out := NewProperties()
	for _, k := range p.keys {
		out.Set(k, p.m[k].Clone())
	}
	return out
}

// MarshalJSON emits properties in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(p.m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object token-by-token so that the original key
// order is captured, not the map iteration order.
func (p *Properties) UnmarshalJSON(data []byte) error {
	*p = *NewProperties()
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("jsonschema: properties must be an object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("jsonschema: property key must be a string, got %v", tok)
		}
		node := &Schema{}
		if err := dec.Decode(node); err != nil {
			return err
		}
		p.Set(key, node)
	}
	// closing '}'
	_, err = dec.Token()
	return err
}
