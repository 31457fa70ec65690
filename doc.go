// Package docskema is the core of a document-class designer: an in-memory
// store of "classes" (document types and shared definitions) plus a
// deterministic import/export boundary against JSON Schema draft 2020-12.
//
// The designer comprises three layers:
//
//   - Store: the flat, mutable class list with attribute add/update/rename/
//     reorder mutators, a dirty flag, and referential lookups. No knowledge of
//     the wire format.
//   - Converter (ImportJSON/ImportYAML/ConvertDocuments): turns externally
//     authored schema documents into the flat class model, promoting every
//     inline object definition to its own addressable shared class.
//   - Exporter (Export): emits one self-contained schema document per
//     document-type class whose $defs contains exactly the classes reachable
//     over $ref edges.
//
// Designer layers UI-session selection state and reactive export push on top
// of the store; hosts that only need the data path can use Store directly.
//
// Error model: nothing here throws for degenerate input. Mutators against
// unknown ids no-op, malformed schemas degrade to empty classes, and
// import/export report non-fatal findings through Diag (Issues with a JSON
// Pointer path and a stable code).
//
// Typical usage:
//
//	classes, diag, err := docskema.ImportJSON(raw)
//	if err != nil {
//		return err
//	}
//	d := docskema.NewDesigner(docskema.NewStore())
//	d.OnExport(func(docs []*jsonschema.Schema, _ docskema.Diag) { save(docs) })
//	d.Load(classes)
//	d.SelectClass(d.Store().Classes()[0].ID)
//	d.AddAttribute(d.Selection().ClassID, "total", "number")
package docskema
