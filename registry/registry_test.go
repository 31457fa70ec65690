package registry_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/registry"
)

func openTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = reg.Close() })
	if err := reg.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return reg
}

func TestRegistry_PutGetDelete(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	doc := []byte(`{"$id":"Invoice","type":"object"}`)
	if err := reg.Put(ctx, "Invoice", doc); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := reg.Get(ctx, "Invoice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(doc) {
		t.Fatalf("get = %s, want %s", got, doc)
	}

	// Upsert replaces.
	doc2 := []byte(`{"$id":"Invoice","type":"object","description":"v2"}`)
	if err := reg.Put(ctx, "Invoice", doc2); err != nil {
		t.Fatalf("put v2: %v", err)
	}
	got, err = reg.Get(ctx, "Invoice")
	if err != nil {
		t.Fatalf("get v2: %v", err)
	}
	if string(got) != string(doc2) {
		t.Fatalf("get = %s, want %s", got, doc2)
	}

	if err := reg.Delete(ctx, "Invoice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := reg.Get(ctx, "Invoice"); !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("get after delete = %v, want ErrNotFound", err)
	}

	// Deleting an absent name is a no-op.
	if err := reg.Delete(ctx, "Invoice"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestRegistry_MigrateIsIdempotent(t *testing.T) {
	reg := openTestRegistry(t)
	if err := reg.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestRegistry_PutSnapshotStoresEveryDocumentType(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	in := []byte(`[
		{"$id": "Invoice", "type": "object", "properties": {"total": {"type": "number"}}},
		{"$id": "Receipt", "type": "object", "properties": {"paid": {"type": "boolean"}}}
	]`)
	classes, _, err := docskema.ImportJSON(in)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	docs, _ := docskema.Export(classes)
	if err := reg.PutSnapshot(ctx, docs); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	entries, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "Invoice" || entries[1].Name != "Receipt" {
		t.Fatalf("entries = %+v", entries)
	}
	for _, e := range entries {
		if len(e.Document) == 0 || e.UpdatedAt.IsZero() {
			t.Fatalf("entry incomplete: %+v", e)
		}
	}
}
