package docskema

import js "github.com/reoring/docskema/jsonschema"

// Selection is UI-session state: the class and attribute the host currently
// has focused. It references classes by stable id and attributes by name, and
// lives here rather than inside Store so the store stays pure data.
type Selection struct {
	ClassID       string
	AttributeName string
}

// Designer couples a Store with selection state and reactive export: after
// every mutation the current export is recomputed (memoized on the store
// revision) and pushed to the host callback.
type Designer struct {
	store *Store
	sel   Selection

	onExport  func([]*js.Schema, Diag)
	cached    []*js.Schema
	cachedDg  Diag
	cachedRev uint64
	haveCache bool
}

// NewDesigner wraps the given store; a nil store gets a fresh empty one.
func NewDesigner(store *Store) *Designer {
	if store == nil {
		store = NewStore()
	}
	return &Designer{store: store}
}

// Store exposes the underlying class store.
func (d *Designer) Store() *Store { return d.store }

// OnExport registers the host callback receiving recomputed exports. It fires
// once immediately so the host starts from the current state.
func (d *Designer) OnExport(fn func([]*js.Schema, Diag)) {
	d.onExport = fn
	d.push()
}

// Selection returns the current selection.
func (d *Designer) Selection() Selection { return d.sel }

// SelectClass focuses a class and clears any attribute focus.
func (d *Designer) SelectClass(id string) {
	d.sel = Selection{ClassID: id}
}

// SelectAttribute focuses an attribute of the selected class.
func (d *Designer) SelectAttribute(name string) {
	d.sel.AttributeName = name
}

// SelectedClass resolves the current class selection, nil when nothing is
// selected or the class has been removed.
func (d *Designer) SelectedClass() *Class {
	if d.sel.ClassID == "" {
		return nil
	}
	return d.store.ClassByID(d.sel.ClassID)
}

// SelectedAttribute resolves the current attribute selection.
func (d *Designer) SelectedAttribute() *js.Schema {
	c := d.SelectedClass()
	if c == nil || d.sel.AttributeName == "" {
		return nil
	}
	attr, _ := c.Attribute(d.sel.AttributeName)
	return attr
}

// AddClass creates a class and selects it.
func (d *Designer) AddClass(name, description string) *Class {
	c := d.store.AddClass(name, description)
	d.sel = Selection{ClassID: c.ID}
	d.push()
	return c
}

// UpdateClass applies a class patch.
func (d *Designer) UpdateClass(id string, p ClassPatch) {
	d.store.UpdateClass(id, p)
	d.push()
}

// RemoveClass deletes a class; a matching selection is cleared.
func (d *Designer) RemoveClass(id string) bool {
	ok := d.store.RemoveClass(id)
	if ok && d.sel.ClassID == id {
		d.sel = Selection{}
	}
	d.push()
	return ok
}

// AddAttribute adds an attribute and focuses it.
func (d *Designer) AddAttribute(classID, name, typ string) *js.Schema {
	attr := d.store.AddAttribute(classID, name, typ)
	if attr != nil && d.sel.ClassID == classID {
		d.sel.AttributeName = name
	}
	d.push()
	return attr
}

// UpdateAttribute applies an attribute patch.
func (d *Designer) UpdateAttribute(classID, name string, p AttributePatch) {
	d.store.UpdateAttribute(classID, name, p)
	d.push()
}

// RenameAttribute renames an attribute, keeping a matching selection
// coherent. The boolean mirrors Store.RenameAttribute.
func (d *Designer) RenameAttribute(classID, oldName, newName string) bool {
	ok := d.store.RenameAttribute(classID, oldName, newName)
	if ok && d.sel.ClassID == classID && d.sel.AttributeName == oldName {
		d.sel.AttributeName = newName
	}
	d.push()
	return ok
}

// RemoveAttribute deletes an attribute; a matching attribute selection is
// cleared.
func (d *Designer) RemoveAttribute(classID, name string) {
	d.store.RemoveAttribute(classID, name)
	if d.sel.ClassID == classID && d.sel.AttributeName == name {
		d.sel.AttributeName = ""
	}
	d.push()
}

// ReorderAttributes moves one property to a new insertion-order position.
func (d *Designer) ReorderAttributes(classID string, oldIndex, newIndex int) {
	d.store.ReorderAttributes(classID, oldIndex, newIndex)
	d.push()
}

// Load seeds the store with converter output and resets the selection.
func (d *Designer) Load(classes []*Class) {
	d.store.Replace(classes)
	d.sel = Selection{}
	d.push()
}

// ClearAll resets the store to empty and clears all selection.
func (d *Designer) ClearAll() {
	d.store.Clear()
	d.sel = Selection{}
	d.push()
}

// Export returns the current export, recomputing only when the store has
// changed since the last call.
func (d *Designer) Export() ([]*js.Schema, Diag) {
	if d.haveCache && d.cachedRev == d.store.Revision() {
		return d.cached, d.cachedDg
	}
	docs, dg := d.store.Export()
	d.cached, d.cachedDg, d.cachedRev, d.haveCache = docs, dg, d.store.Revision(), true
	return docs, dg
}

func (d *Designer) push() {
	if d.onExport == nil {
		return
	}
	docs, dg := d.Export()
	d.onExport(docs, dg)
}
