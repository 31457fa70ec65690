package docskema

import (
	"github.com/google/uuid"

	js "github.com/reoring/docskema/jsonschema"
)

// Class is a named, addressable schema fragment: either a document type
// (exported as a standalone top-level schema) or a shared class (materialized
// inside another schema's $defs when referenced).
//
// Name is the key $refs resolve against (#/$defs/<name>). The store does not
// enforce name uniqueness, but export assumes it. ID is assigned at creation
// and never reused.
type Class struct {
	ID             string     `json:"id,omitempty"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	IsDocumentType bool       `json:"isDocumentType,omitempty"`
	Attributes     *js.Schema `json:"attributes"`

	// Document-type-only metadata, passed through export verbatim.
	Examples            []any  `json:"examples,omitempty"`
	DocumentNamePattern string `json:"documentNamePattern,omitempty"`
	PageContentPattern  string `json:"pageContentPattern,omitempty"`
}

// newClassID is overridable in tests for deterministic fixtures.
var newClassID = uuid.NewString

// NewClass returns a class with empty object attributes.
func NewClass(name, description string) *Class {
	return &Class{
		ID:          newClassID(),
		Name:        name,
		Description: description,
		Attributes:  js.NewObject(),
	}
}

// ensureAttributes normalizes a class loaded from external input so the
// attribute tree is always addressable.
func (c *Class) ensureAttributes() {
	if c.Attributes == nil {
		c.Attributes = js.NewObject()
		return
	}
	if c.Attributes.Type == "" {
		c.Attributes.Type = "object"
	}
	if c.Attributes.Properties == nil {
		c.Attributes.Properties = js.NewProperties()
	}
}

// Attribute looks up a top-level attribute by name.
func (c *Class) Attribute(name string) (*js.Schema, bool) {
	if c == nil || c.Attributes == nil {
		return nil, false
	}
	return c.Attributes.Properties.Get(name)
}
