package docskema

import (
	"strings"

	js "github.com/reoring/docskema/jsonschema"
)

// Store is the authoritative, mutable collection of classes. It is pure data
// plus mutators: selection state lives in Designer, and the wire format lives
// in the converter/exporter. Mutators against unknown ids are silent no-ops,
// defensive against stale references after deletes from other panels.
//
// Store is not safe for concurrent writers; the designer is single-threaded
// and event-driven by construction.
type Store struct {
	classes []*Class
	dirty   bool
	rev     uint64
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

func (st *Store) touch() {
	st.dirty = true
	st.rev++
}

// Dirty reports whether a mutation happened since the last MarkClean. Hosts
// use it to know an unsaved change exists.
func (st *Store) Dirty() bool { return st.dirty }

// MarkClean resets the dirty flag, typically after the host persisted an
// export.
func (st *Store) MarkClean() { st.dirty = false }

// Revision increases monotonically with every mutation. Export memoization
// keys off it.
func (st *Store) Revision() uint64 { return st.rev }

// Len reports the number of classes.
func (st *Store) Len() int { return len(st.classes) }

// Classes returns the class list in insertion order. The returned slice is a
// copy; the classes themselves are shared.
func (st *Store) Classes() []*Class {
	return append([]*Class(nil), st.classes...)
}

// ClassByID looks a class up by its immutable id.
func (st *Store) ClassByID(id string) *Class {
	for _, c := range st.classes {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ClassByName returns the first class with the given name. Names are the
// $ref resolution key; uniqueness is assumed, not enforced.
func (st *Store) ClassByName(name string) *Class {
	for _, c := range st.classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AddClass creates a class with empty attributes and appends it. There is no
// uniqueness check on name; AddClass always succeeds.
func (st *Store) AddClass(name, description string) *Class {
	c := NewClass(name, description)
	st.classes = append(st.classes, c)
	st.touch()
	return c
}

// UpdateClass merges top-level fields into the class. The attributes fragment
// is merged key-by-key (properties and required independently), so a partial
// update never clobbers the other half. No-op when id is unknown.
func (st *Store) UpdateClass(id string, p ClassPatch) {
	c := st.ClassByID(id)
	if c == nil {
		return
	}
	p.Name.apply(&c.Name)
	p.Description.apply(&c.Description)
	p.IsDocumentType.apply(&c.IsDocumentType)
	p.Examples.apply(&c.Examples)
	p.DocumentNamePattern.apply(&c.DocumentNamePattern)
	p.PageContentPattern.apply(&c.PageContentPattern)
	if p.Attributes != nil {
		c.ensureAttributes()
		p.Attributes.Properties.apply(&c.Attributes.Properties)
		p.Attributes.Required.apply(&c.Attributes.Required)
		if c.Attributes.Properties == nil {
			c.Attributes.Properties = js.NewProperties()
		}
	}
	st.touch()
}

// RemoveClass deletes a class by id. Dangling $refs in other classes are not
// cascade-fixed. Reports whether a class was removed.
func (st *Store) RemoveClass(id string) bool {
	for i, c := range st.classes {
		if c.ID == id {
			st.classes = append(st.classes[:i], st.classes[i+1:]...)
			st.touch()
			return true
		}
	}
	return false
}

// AddAttribute appends an attribute with type-appropriate defaults: object
// gets empty properties/required, array gets a single string item. Silent
// no-op when the class is unknown.
func (st *Store) AddAttribute(classID, name, typ string) *js.Schema {
	c := st.ClassByID(classID)
	if c == nil {
		return nil
	}
	c.ensureAttributes()
	attr := &js.Schema{NodeID: newClassID(), NodeName: name, Type: typ}
	switch typ {
	case "object":
		attr.Properties = js.NewProperties()
		attr.Required = []string{}
	case "array":
		attr.Items = &js.Schema{NodeName: "item", Type: "string"}
	}
	c.Attributes.Properties.Set(name, attr)
	st.touch()
	return attr
}

// UpdateAttribute merges the patch into an existing attribute. A Remove patch
// deletes the field (clearing a keyword, e.g. removing $ref). No-op when the
// class or attribute is unknown.
func (st *Store) UpdateAttribute(classID, name string, p AttributePatch) {
	c := st.ClassByID(classID)
	if c == nil {
		return
	}
	attr, ok := c.Attribute(name)
	if !ok {
		return
	}
	p.Type.apply(&attr.Type)
	p.Ref.apply(&attr.Ref)
	p.Description.apply(&attr.Description)
	p.Properties.apply(&attr.Properties)
	p.Required.apply(&attr.Required)
	p.Items.apply(&attr.Items)
	for k, kp := range p.Keywords {
		switch {
		case kp.op == opRemove:
			delete(attr.Extra, k)
		case kp.op == opSet:
			attr.SetExtra(k, kp.value)
		}
	}
	st.touch()
}

// RenameAttribute moves an attribute to a new key, preserving its position,
// value and id, and rewrites the required list in place. It fails without
// mutating when the new name is empty after trimming, equals the old name,
// the class or old attribute does not exist, or the new name is taken.
func (st *Store) RenameAttribute(classID, oldName, newName string) bool {
	if strings.TrimSpace(newName) == "" || newName == oldName {
		return false
	}
	c := st.ClassByID(classID)
	if c == nil || c.Attributes == nil {
		return false
	}
	attr, ok := c.Attribute(oldName)
	if !ok {
		return false
	}
	if !c.Attributes.Properties.Rename(oldName, newName) {
		return false
	}
	attr.NodeName = newName
	for i, r := range c.Attributes.Required {
		if r == oldName {
			c.Attributes.Required[i] = newName
		}
	}
	st.touch()
	return true
}

// RemoveAttribute deletes the attribute and drops it from required.
func (st *Store) RemoveAttribute(classID, name string) {
	c := st.ClassByID(classID)
	if c == nil || c.Attributes == nil {
		return
	}
	if !c.Attributes.Properties.Has(name) {
		return
	}
	c.Attributes.Properties.Delete(name)
	req := c.Attributes.Required[:0]
	for _, r := range c.Attributes.Required {
		if r != name {
			req = append(req, r)
		}
	}
	c.Attributes.Required = req
	st.touch()
}

// ReorderAttributes moves one property to a new position in insertion order
// with splice semantics; all other relative order is preserved.
func (st *Store) ReorderAttributes(classID string, oldIndex, newIndex int) {
	c := st.ClassByID(classID)
	if c == nil || c.Attributes == nil {
		return
	}
	c.Attributes.Properties.Move(oldIndex, newIndex)
	st.touch()
}

// Replace swaps the whole class collection, typically with the output of the
// converter when a new external schema is loaded.
func (st *Store) Replace(classes []*Class) {
	for _, c := range classes {
		if c.ID == "" {
			c.ID = newClassID()
		}
		c.ensureAttributes()
	}
	st.classes = classes
	st.touch()
}

// Clear resets the store to empty.
func (st *Store) Clear() {
	st.classes = nil
	st.touch()
}

// Export emits one schema document per document-type class, or nil when the
// store is empty. See Export for the traversal and sanitization rules.
func (st *Store) Export() ([]*js.Schema, Diag) {
	return Export(st.classes)
}
