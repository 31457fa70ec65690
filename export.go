package docskema

import (
	js "github.com/reoring/docskema/jsonschema"
)

// Export emits one self-contained JSON Schema document per document-type
// class. Each document's $defs holds exactly the classes transitively
// reachable from its attribute tree via $ref edges: never the whole store.
//
// Export never fails: empty $defs and absent metadata are omitted, a $ref to
// a class name missing from the store stays in the output as a dangling
// reference (reported through Diag, not repaired), and a nil or empty class
// list yields nil.
func Export(classes []*Class) ([]*js.Schema, Diag) {
	d := &simpleDiag{}
	if len(classes) == 0 {
		return nil, d
	}
	byName := make(map[string]*Class, len(classes))
	for _, c := range classes {
		if _, ok := byName[c.Name]; !ok {
			byName[c.Name] = c
		}
	}
	var docTypes []*Class
	for _, c := range classes {
		if c.IsDocumentType {
			docTypes = append(docTypes, c)
		}
	}
	if len(docTypes) == 0 {
		// Backward-compat single-class mode: treat the first class as the
		// sole document type.
		docTypes = classes[:1]
	}
	out := make([]*js.Schema, 0, len(docTypes))
	for _, dt := range docTypes {
		out = append(out, exportDocument(dt, byName, d))
	}
	return out, d
}

func exportDocument(c *Class, byName map[string]*Class, d *simpleDiag) *js.Schema {
	c.ensureAttributes()
	doc := &js.Schema{
		Version:      js.Version2020,
		ID:           c.Name,
		DocumentType: c.Name,
		Type:         "object",
		Description:  c.Description,
		Properties:   sanitizeProperties(c.Attributes.Properties),
		Examples:     c.Examples,
		NamePattern:  c.DocumentNamePattern,
		PagePattern:  c.PageContentPattern,
	}
	if len(c.Attributes.Required) > 0 {
		doc.Required = append([]string(nil), c.Attributes.Required...)
	}
	warnRequiredWithoutProperty(c.Name, c.Attributes, d)

	reach := make(map[string]*Class)
	collectReachable(c.Name, c.Attributes.Properties, byName, reach, d)
	if len(reach) > 0 {
		doc.Defs = make(map[string]*js.Schema, len(reach))
		for name, rc := range reach {
			rc.ensureAttributes()
			def := &js.Schema{
				Type:        "object",
				Description: rc.Description,
				Properties:  sanitizeProperties(rc.Attributes.Properties),
			}
			if len(rc.Attributes.Required) > 0 {
				def.Required = append([]string(nil), rc.Attributes.Required...)
			}
			warnRequiredWithoutProperty(c.Name+"/$defs/"+name, rc.Attributes, d)
			doc.Defs[name] = def
		}
	}
	return doc
}

// collectReachable walks an attribute tree depth-first, following $ref edges
// (direct and array items) into referenced classes transitively. The reach
// set doubles as the visited guard, so cyclic references terminate.
func collectReachable(from string, props *js.Properties, byName map[string]*Class, reach map[string]*Class, d *simpleDiag) {
	if props == nil {
		return
	}
	visit := func(name string) {
		cls, ok := byName[name]
		if !ok {
			d.warnf("/"+from, CodeDanglingRef,
				"$ref to %q has no matching class; the exported schema keeps the dangling reference", name)
			return
		}
		if _, seen := reach[name]; seen {
			return
		}
		reach[name] = cls
		cls.ensureAttributes()
		collectReachable(name, cls.Attributes.Properties, byName, reach, d)
	}
	for _, key := range props.Keys() {
		node, _ := props.Get(key)
		walkNode(node, visit)
	}
}

func walkNode(node *js.Schema, visit func(string)) {
	if node == nil {
		return
	}
	if name := node.RefName(); name != "" {
		visit(name)
	}
	if node.Items != nil {
		walkNode(node.Items, visit)
	}
	// Inline objects are not separately defined; recurse without adding an
	// edge so their nested $refs are still discovered.
	if node.Properties != nil {
		for _, key := range node.Properties.Keys() {
			child, _ := node.Properties.Get(key)
			walkNode(child, visit)
		}
	}
}

// sanitizeProperties deep-copies and scrubs an attribute tree for emission.
func sanitizeProperties(props *js.Properties) *js.Properties {
	out := props.Clone()
	if out == nil {
		return js.NewProperties()
	}
	for _, key := range out.Keys() {
		node, _ := out.Get(key)
		sanitizeNode(node)
	}
	return out
}

// sanitizeNode strips editor bookkeeping and enforces the $ref exclusivity
// invariant at the boundary: an emitted node with $ref carries no type,
// properties, required, or object cardinality keywords, even if the
// in-memory attribute briefly held both during editing.
func sanitizeNode(node *js.Schema) {
	if node == nil {
		return
	}
	node.NodeID = ""
	node.NodeName = ""
	if node.Ref != "" {
		node.Type = ""
		node.Properties = nil
		node.Required = nil
		delete(node.Extra, "minProperties")
		delete(node.Extra, "maxProperties")
		delete(node.Extra, "additionalProperties")
	}
	if node.Items != nil {
		sanitizeNode(node.Items)
	}
	if node.Properties != nil {
		for _, key := range node.Properties.Keys() {
			child, _ := node.Properties.Get(key)
			sanitizeNode(child)
		}
	}
}

func warnRequiredWithoutProperty(path string, attrs *js.Schema, d *simpleDiag) {
	for _, r := range attrs.Required {
		if !attrs.Properties.Has(r) {
			d.warnf("/"+path+"/required", CodeRequiredWithoutProperty,
				"required name %q has no matching property", r)
		}
	}
}
