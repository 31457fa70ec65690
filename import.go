package docskema

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	js "github.com/reoring/docskema/jsonschema"
)

// ImportJSON converts externally authored JSON into a flat class list. Three
// input shapes are accepted:
//
//   - an array of flattened classes (elements carrying an "attributes" key),
//     passed through with fresh ids where missing;
//   - an array of raw JSON Schema documents sharing one $defs pool;
//   - a single raw JSON Schema document (legacy form).
//
// Malformed JSON is the only error; schema-level oddities degrade to empty or
// partial classes and surface through Diag.
func ImportJSON(data []byte) ([]*Class, Diag, error) {
	d := &simpleDiag{}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, d, nil
	}
	if trimmed[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, d, fmt.Errorf("docskema: invalid JSON: %w", err)
		}
		if len(raws) == 0 {
			return nil, d, nil
		}
		if isFlattenedClass(raws[0]) {
			classes := make([]*Class, 0, len(raws))
			for _, rm := range raws {
				c := &Class{}
				if err := json.Unmarshal(rm, c); err != nil {
					return nil, d, fmt.Errorf("docskema: invalid class element: %w", err)
				}
				if c.ID == "" {
					c.ID = newClassID()
				}
				c.ensureAttributes()
				classes = append(classes, c)
			}
			return classes, d, nil
		}
		docs := make([]*js.Schema, 0, len(raws))
		for _, rm := range raws {
			doc := &js.Schema{}
			if err := json.Unmarshal(rm, doc); err != nil {
				return nil, d, fmt.Errorf("docskema: invalid schema element: %w", err)
			}
			docs = append(docs, doc)
		}
		classes := convertDocuments(docs, d)
		return classes, d, nil
	}
	doc := &js.Schema{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, d, fmt.Errorf("docskema: invalid JSON: %w", err)
	}
	classes := convertDocument(doc, d)
	return classes, d, nil
}

// isFlattenedClass peeks at a raw element for the "attributes" key, the
// marker distinguishing the store's own flat model from wire JSON Schema.
func isFlattenedClass(rm json.RawMessage) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(rm, &probe); err != nil {
		return false
	}
	_, ok := probe["attributes"]
	return ok
}

// ConvertDocuments turns an array of raw JSON Schema documents sharing a
// $defs pool into classes: one document type per element, pooled shared
// classes for their $defs (first occurrence wins; defs shadowed by a document
// type name are skipped), plus one shared class per extracted inline object.
func ConvertDocuments(docs []*js.Schema) ([]*Class, Diag) {
	d := &simpleDiag{}
	return convertDocuments(docs, d), d
}

// ConvertDocument is the legacy single-document form: the document becomes a
// document type and all of its $defs become shared classes unconditionally.
func ConvertDocument(doc *js.Schema) ([]*Class, Diag) {
	d := &simpleDiag{}
	return convertDocument(doc, d), d
}

func convertDocuments(docs []*js.Schema, d *simpleDiag) []*Class {
	ex := newExtraction(d)
	docTypes := make([]*Class, 0, len(docs))
	docNames := make(map[string]bool, len(docs))
	for i, doc := range docs {
		c := documentTypeClass(doc, i, ex)
		docTypes = append(docTypes, c)
		docNames[c.Name] = true
	}

	// Pool $defs across all input documents. A def whose name collides with a
	// document type is assumed already represented and skipped; otherwise the
	// first occurrence wins.
	var defClasses []*Class
	seen := make(map[string]bool)
	for i, doc := range docs {
		for _, name := range sortedDefNames(doc) {
			if docNames[name] {
				d.warnf(fmt.Sprintf("/%d/$defs/%s", i, name), CodeSkippedDef,
					"$defs entry %q shadowed by a document type of the same name", name)
				continue
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			defClasses = append(defClasses, sharedClassFromDef(name, doc.Defs[name]))
		}
	}

	out := append(docTypes, defClasses...)
	return append(out, ex.classes()...)
}

func convertDocument(doc *js.Schema, d *simpleDiag) []*Class {
	ex := newExtraction(d)
	c := documentTypeClass(doc, 0, ex)
	out := []*Class{c}
	for _, name := range sortedDefNames(doc) {
		out = append(out, sharedClassFromDef(name, doc.Defs[name]))
	}
	return append(out, ex.classes()...)
}

// documentTypeClass wraps one raw schema document as a document-type class,
// extracting inline objects from its properties first. The class name comes
// from $id, then the document-type marker, then a positional fallback.
func documentTypeClass(doc *js.Schema, index int, ex *extraction) *Class {
	name := doc.ID
	if name == "" {
		name = doc.DocumentType
	}
	if name == "" {
		name = fmt.Sprintf("DocumentType%d", index+1)
	}
	props := doc.Properties.Clone()
	if props == nil {
		props = js.NewProperties()
	}
	ex.extractInline(props)
	assignNodeIdentity(props)
	return &Class{
		ID:             newClassID(),
		Name:           name,
		Description:    doc.Description,
		IsDocumentType: true,
		Attributes: &js.Schema{
			Type:       "object",
			Properties: props,
			Required:   append([]string(nil), doc.Required...),
		},
		Examples:            doc.Examples,
		DocumentNamePattern: doc.NamePattern,
		PageContentPattern:  doc.PagePattern,
	}
}

func sharedClassFromDef(name string, def *js.Schema) *Class {
	c := &Class{ID: newClassID(), Name: name}
	if def == nil {
		c.Attributes = js.NewObject()
		return c
	}
	props := def.Properties.Clone()
	if props == nil {
		props = js.NewProperties()
	}
	assignNodeIdentity(props)
	c.Description = def.Description
	c.Attributes = &js.Schema{
		Type:       "object",
		Properties: props,
		Required:   append([]string(nil), def.Required...),
	}
	return c
}

// sortedDefNames iterates a document's $defs deterministically.
func sortedDefNames(doc *js.Schema) []string {
	if len(doc.Defs) == 0 {
		return nil
	}
	names := make([]string, 0, len(doc.Defs))
	for n := range doc.Defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// extraction accumulates shared classes promoted from inline object
// definitions, in registration order. Registering an existing name replaces
// the earlier class (assignment semantics) and warns.
type extraction struct {
	d      *simpleDiag
	order  []string
	byName map[string]*Class
}

func newExtraction(d *simpleDiag) *extraction {
	return &extraction{d: d, byName: make(map[string]*Class)}
}

func (ex *extraction) classes() []*Class {
	out := make([]*Class, 0, len(ex.order))
	for _, n := range ex.order {
		out = append(out, ex.byName[n])
	}
	return out
}

func (ex *extraction) register(name string, node *js.Schema) {
	if _, dup := ex.byName[name]; dup {
		ex.d.warnf("/$defs/"+name, CodeDuplicateClass,
			"two inline objects extracted to the same class name %q; the later wins", name)
	} else {
		ex.order = append(ex.order, name)
	}
	props := node.Properties
	if props == nil {
		props = js.NewProperties()
	}
	assignNodeIdentity(props)
	ex.byName[name] = &Class{
		ID:          newClassID(),
		Name:        name,
		Description: node.Description,
		Attributes: &js.Schema{
			Type:       "object",
			Properties: props,
			Required:   append([]string(nil), node.Required...),
		},
	}
}

// extractInline promotes every inline object definition in props to a shared
// class and rewrites the property to reference it. Children are extracted
// before their parent is registered, so nesting bottoms out first. Running it
// again over an already-extracted map is a no-op.
func (ex *extraction) extractInline(props *js.Properties) {
	for _, name := range props.Keys() {
		node, _ := props.Get(name)
		if node == nil {
			continue
		}
		switch {
		case isInlineObject(node):
			ex.extractInline(node.Properties)
			ex.register(name, node)
			// The property keeps its remaining keywords and gains a $ref;
			// type is retained for the editing UI and stripped on export.
			node.Ref = js.RefTo(name)
			node.Properties = nil
			node.Required = nil
		case node.Type == "array" && isInlineObject(node.Items):
			itemName := arrayItemClassName(name)
			ex.extractInline(node.Items.Properties)
			ex.register(itemName, node.Items)
			node.Items = &js.Schema{Ref: js.RefTo(itemName)}
		}
	}
}

// isInlineObject matches the extraction criteria: an object with a non-empty
// properties map and no $ref of its own.
func isInlineObject(node *js.Schema) bool {
	return node != nil && node.Type == "object" && node.Ref == "" && node.Properties.Len() > 0
}

// arrayItemClassName derives the shared-class name for array items: strip a
// trailing "s" from the property name, or append "Item" when there is none.
func arrayItemClassName(property string) string {
	if strings.HasSuffix(property, "s") {
		return strings.TrimSuffix(property, "s")
	}
	return property + "Item"
}

// assignNodeIdentity stamps editor bookkeeping (id, name) onto every
// attribute node so the UI can address them. Import is the only place fresh
// trees enter the designer.
func assignNodeIdentity(props *js.Properties) {
	if props == nil {
		return
	}
	for _, name := range props.Keys() {
		node, _ := props.Get(name)
		if node == nil {
			continue
		}
		if node.NodeID == "" {
			node.NodeID = newClassID()
		}
		if node.NodeName == "" {
			node.NodeName = name
		}
		assignNodeIdentity(node.Properties)
		if node.Items != nil {
			assignNodeIdentity(node.Items.Properties)
		}
	}
}
