package docskema_test

import (
	"reflect"
	"testing"

	json "github.com/goccy/go-json"

	docskema "github.com/reoring/docskema"
	js "github.com/reoring/docskema/jsonschema"
)

// normalize marshals v to JSON and unmarshals back into interface{} to remove ordering effects.
func normalize(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func classNames(classes []*docskema.Class) []string {
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = c.Name
	}
	return out
}

func findClass(t *testing.T, classes []*docskema.Class, name string) *docskema.Class {
	t.Helper()
	for _, c := range classes {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("class %q not found in %v", name, classNames(classes))
	return nil
}

func TestImportJSON_SingleDocument(t *testing.T) {
	in := []byte(`{
		"$id": "Invoice",
		"type": "object",
		"properties": {"total": {"type": "number"}},
		"required": ["total"]
	}`)
	classes, diag, err := docskema.ImportJSON(in)
	if err != nil {
		t.Fatalf("import err: %v", err)
	}
	if diag.HasWarnings() {
		t.Fatalf("unexpected warnings: %v", diag.Warnings())
	}
	if len(classes) != 1 {
		t.Fatalf("classes = %v, want exactly Invoice", classNames(classes))
	}
	c := classes[0]
	if c.Name != "Invoice" || !c.IsDocumentType || c.ID == "" {
		t.Fatalf("class = %+v", c)
	}
	attr, ok := c.Attribute("total")
	if !ok || attr.Type != "number" {
		t.Fatalf("total attribute = %+v, %v", attr, ok)
	}
	if attr.NodeID == "" || attr.NodeName != "total" {
		t.Fatalf("imported attribute must carry editor bookkeeping: %+v", attr)
	}
	if !reflect.DeepEqual(c.Attributes.Required, []string{"total"}) {
		t.Fatalf("required = %v", c.Attributes.Required)
	}
}

func TestImportJSON_InlineObjectExtraction(t *testing.T) {
	in := []byte(`{
		"$id": "Invoice",
		"type": "object",
		"properties": {
			"address": {
				"type": "object",
				"description": "billing address",
				"properties": {"city": {"type": "string"}}
			}
		}
	}`)
	classes, _, err := docskema.ImportJSON(in)
	if err != nil {
		t.Fatalf("import err: %v", err)
	}
	if got := classNames(classes); !reflect.DeepEqual(got, []string{"Invoice", "address"}) {
		t.Fatalf("classes = %v, want [Invoice address]", got)
	}

	invoice := findClass(t, classes, "Invoice")
	attr, _ := invoice.Attribute("address")
	if attr.Ref != js.RefTo("address") {
		t.Fatalf("address $ref = %q, want %q", attr.Ref, js.RefTo("address"))
	}
	// Type is retained for the editing UI; properties moved to the new class.
	if attr.Type != "object" {
		t.Fatalf("address type = %q, want object kept for the editor", attr.Type)
	}
	if attr.Properties.Len() != 0 {
		t.Fatalf("inline properties must move to the shared class, got %v", attr.Properties.Keys())
	}

	shared := findClass(t, classes, "address")
	if shared.IsDocumentType {
		t.Fatal("extracted class must be a shared class")
	}
	if shared.Description != "billing address" {
		t.Fatalf("description = %q", shared.Description)
	}
	if city, ok := shared.Attribute("city"); !ok || city.Type != "string" {
		t.Fatalf("city attribute = %+v, %v", city, ok)
	}
}

func TestImportJSON_NestedExtractionBottomsOutFirst(t *testing.T) {
	in := []byte(`{
		"$id": "Invoice",
		"type": "object",
		"properties": {
			"customer": {
				"type": "object",
				"properties": {
					"address": {
						"type": "object",
						"properties": {"city": {"type": "string"}}
					}
				}
			}
		}
	}`)
	classes, _, err := docskema.ImportJSON(in)
	if err != nil {
		t.Fatalf("import err: %v", err)
	}
	// Children register before parents.
	if got := classNames(classes); !reflect.DeepEqual(got, []string{"Invoice", "address", "customer"}) {
		t.Fatalf("classes = %v, want [Invoice address customer]", got)
	}
	customer := findClass(t, classes, "customer")
	addrAttr, _ := customer.Attribute("address")
	if addrAttr.Ref != js.RefTo("address") {
		t.Fatalf("nested extraction must rewrite the child to a $ref, got %+v", addrAttr)
	}
}

func TestImportJSON_ArrayItemClassNaming(t *testing.T) {
	in := []byte(`{
		"$id": "Invoice",
		"type": "object",
		"properties": {
			"lineItems": {
				"type": "array",
				"items": {"type": "object", "properties": {"sku": {"type": "string"}}}
			},
			"cargo": {
				"type": "array",
				"items": {"type": "object", "properties": {"weight": {"type": "number"}}}
			}
		}
	}`)
	classes, _, err := docskema.ImportJSON(in)
	if err != nil {
		t.Fatalf("import err: %v", err)
	}
	// Trailing "s" is stripped; otherwise "Item" is appended.
	if got := classNames(classes); !reflect.DeepEqual(got, []string{"Invoice", "lineItem", "cargoItem"}) {
		t.Fatalf("classes = %v, want [Invoice lineItem cargoItem]", got)
	}
	invoice := findClass(t, classes, "Invoice")
	li, _ := invoice.Attribute("lineItems")
	if li.Items == nil || li.Items.Ref != js.RefTo("lineItem") {
		t.Fatalf("lineItems.items = %+v, want $ref to lineItem", li.Items)
	}
}

func TestImportJSON_ScalarAndRefPropertiesPassThrough(t *testing.T) {
	in := []byte(`{
		"$id": "Invoice",
		"type": "object",
		"properties": {
			"total": {"type": "number", "minimum": 0},
			"tags": {"type": "array", "items": {"type": "string"}},
			"payer": {"$ref": "#/$defs/Party"}
		},
		"$defs": {
			"Party": {"type": "object", "properties": {"name": {"type": "string"}}}
		}
	}`)
	classes, _, err := docskema.ImportJSON(in)
	if err != nil {
		t.Fatalf("import err: %v", err)
	}
	if got := classNames(classes); !reflect.DeepEqual(got, []string{"Invoice", "Party"}) {
		t.Fatalf("classes = %v, want [Invoice Party]", got)
	}
	invoice := findClass(t, classes, "Invoice")
	total, _ := invoice.Attribute("total")
	if got := total.Extra["minimum"]; got == nil {
		t.Fatalf("opaque keyword minimum lost: %+v", total)
	}
	tags, _ := invoice.Attribute("tags")
	if tags.Items == nil || tags.Items.Type != "string" {
		t.Fatalf("array-of-scalar must pass through, got %+v", tags.Items)
	}
}

func TestImportJSON_MultiDocumentDefsPooling(t *testing.T) {
	in := []byte(`[
		{
			"$id": "Invoice",
			"type": "object",
			"properties": {"payer": {"$ref": "#/$defs/Party"}},
			"$defs": {
				"Party": {"type": "object", "properties": {"name": {"type": "string"}}},
				"Receipt": {"type": "object", "properties": {"ignored": {"type": "string"}}}
			}
		},
		{
			"$id": "Receipt",
			"type": "object",
			"properties": {"payee": {"$ref": "#/$defs/Party"}},
			"$defs": {
				"Party": {"type": "object", "properties": {"other": {"type": "string"}}}
			}
		}
	]`)
	classes, diag, err := docskema.ImportJSON(in)
	if err != nil {
		t.Fatalf("import err: %v", err)
	}
	// Document types first, then pooled defs. The "Receipt" def collides with
	// a document-type name and is skipped; "Party" dedupes first-wins.
	if got := classNames(classes); !reflect.DeepEqual(got, []string{"Invoice", "Receipt", "Party"}) {
		t.Fatalf("classes = %v, want [Invoice Receipt Party]", got)
	}
	party := findClass(t, classes, "Party")
	if _, ok := party.Attribute("name"); !ok {
		t.Fatal("first occurrence of Party must win")
	}
	if !diag.HasWarnings() {
		t.Fatal("skipped def must be reported")
	}
	found := false
	for _, iss := range diag.Warnings() {
		if iss.Code == docskema.CodeSkippedDef {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v, want a %s", diag.Warnings(), docskema.CodeSkippedDef)
	}
}

func TestImportJSON_DocumentTypeNameFallbacks(t *testing.T) {
	in := []byte(`[
		{"type": "object", "x-document-type": "Claim", "properties": {}},
		{"type": "object", "properties": {}}
	]`)
	classes, _, err := docskema.ImportJSON(in)
	if err != nil {
		t.Fatalf("import err: %v", err)
	}
	if got := classNames(classes); !reflect.DeepEqual(got, []string{"Claim", "DocumentType2"}) {
		t.Fatalf("classes = %v, want [Claim DocumentType2]", got)
	}
}

func TestImportJSON_FlattenedClassesPassThrough(t *testing.T) {
	in := []byte(`[
		{
			"name": "Invoice",
			"isDocumentType": true,
			"attributes": {
				"type": "object",
				"properties": {"total": {"type": "number"}},
				"required": ["total"]
			}
		},
		{
			"id": "pre-assigned",
			"name": "Party",
			"attributes": {"type": "object", "properties": {}}
		}
	]`)
	classes, _, err := docskema.ImportJSON(in)
	if err != nil {
		t.Fatalf("import err: %v", err)
	}
	if len(classes) != 2 {
		t.Fatalf("classes = %v", classNames(classes))
	}
	if classes[0].ID == "" {
		t.Fatal("missing id must be assigned")
	}
	if classes[1].ID != "pre-assigned" {
		t.Fatalf("existing id must be kept, got %q", classes[1].ID)
	}
	if _, ok := classes[0].Attribute("total"); !ok {
		t.Fatal("flattened attributes must pass through")
	}
}

func TestImportJSON_MalformedSchemaDegradesToEmpty(t *testing.T) {
	// No properties at all: a document type with empty attributes, no error.
	classes, _, err := docskema.ImportJSON([]byte(`{"$id": "Bare"}`))
	if err != nil {
		t.Fatalf("import err: %v", err)
	}
	if len(classes) != 1 || classes[0].Attributes.Properties.Len() != 0 {
		t.Fatalf("classes = %+v", classes)
	}

	// Invalid JSON is the only error.
	if _, _, err := docskema.ImportJSON([]byte(`{nope`)); err == nil {
		t.Fatal("invalid JSON must error")
	}
}

func TestImportJSON_ExtractionIdempotence(t *testing.T) {
	in := []byte(`{
		"$id": "Invoice",
		"type": "object",
		"properties": {
			"address": {"type": "object", "properties": {"city": {"type": "string"}}}
		}
	}`)
	classes, _, err := docskema.ImportJSON(in)
	if err != nil {
		t.Fatalf("import err: %v", err)
	}
	docs, _ := docskema.Export(classes)
	if len(docs) != 1 {
		t.Fatalf("docs = %d", len(docs))
	}

	// Re-convert the exported document: the properties map is already
	// all-$ref, so extraction must add nothing new.
	again, _ := docskema.ConvertDocument(docs[0])
	if !reflect.DeepEqual(classNames(again), classNames(classes)) {
		t.Fatalf("second conversion changed the class set: %v vs %v",
			classNames(again), classNames(classes))
	}
	invoice := findClass(t, again, "Invoice")
	attr, _ := invoice.Attribute("address")
	if attr.Ref != js.RefTo("address") || attr.Properties.Len() != 0 {
		t.Fatalf("already-extracted property changed: %+v", attr)
	}
}
