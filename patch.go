package docskema

import js "github.com/reoring/docskema/jsonschema"

// Patch is a tri-state field update: the zero value leaves the field
// untouched, Set replaces it, Remove clears it to the zero value. This
// replaces the loosely-typed "explicit absent value means delete the key"
// convention with an unambiguous per-field intent.
type Patch[T any] struct {
	op    patchOp
	value T
}

type patchOp uint8

const (
	opUnchanged patchOp = iota
	opSet
	opRemove
)

// Set returns a patch that replaces the field with v.
func Set[T any](v T) Patch[T] { return Patch[T]{op: opSet, value: v} }

// Remove returns a patch that clears the field.
func Remove[T any]() Patch[T] { return Patch[T]{op: opRemove} }

// IsZero reports whether the patch leaves the field unchanged.
func (p Patch[T]) IsZero() bool { return p.op == opUnchanged }

func (p Patch[T]) apply(dst *T) {
	switch p.op {
	case opSet:
		*dst = p.value
	case opRemove:
		var zero T
		*dst = zero
	}
}

// AttributesPatch updates a class's attribute fragment key-by-key, so a
// required-only update never clobbers properties.
type AttributesPatch struct {
	Properties Patch[*js.Properties]
	Required   Patch[[]string]
}

// ClassPatch updates class-level fields. Nil Attributes leaves the attribute
// fragment untouched.
type ClassPatch struct {
	Name                Patch[string]
	Description         Patch[string]
	IsDocumentType      Patch[bool]
	Examples            Patch[[]any]
	DocumentNamePattern Patch[string]
	PageContentPattern  Patch[string]
	Attributes          *AttributesPatch
}

// AttributePatch updates a single attribute. Keywords patches opaque
// JSON Schema keywords; Remove deletes the keyword outright (for example,
// clearing a stale $ref or an enum).
type AttributePatch struct {
	Type        Patch[string]
	Ref         Patch[string]
	Description Patch[string]
	Properties  Patch[*js.Properties]
	Required    Patch[[]string]
	Items       Patch[*js.Schema]
	Keywords    map[string]Patch[any]
}
