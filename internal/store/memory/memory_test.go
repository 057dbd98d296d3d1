package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"enoteca/internal/core"
)

func TestStoreSaveLoadAndKeys(t *testing.T) {
	ctx := context.Background()
	s := New(DemoItems())

	if _, found, err := s.LoadRecord(ctx, core.StorageKey("2026-10-14")); found || err != nil {
		t.Fatalf("expected missing record, found=%v err=%v", found, err)
	}

	payload := []byte(`{"date":"2026-10-14"}`)
	if err := s.SaveRecord(ctx, core.StorageKey("2026-10-14"), payload); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = s.SaveRecord(ctx, core.StorageKey("2026-10-01"), payload)
	_ = s.SaveRecord(ctx, "unrelated", payload)

	// Stored bytes must not alias the caller's slice.
	payload[0] = 'X'
	got, found, err := s.LoadRecord(ctx, core.StorageKey("2026-10-14"))
	if err != nil || !found || string(got) != `{"date":"2026-10-14"}` {
		t.Fatalf("unexpected load: %q found=%v err=%v", got, found, err)
	}

	keys, _ := s.ListRecordKeys(ctx)
	if len(keys) != 2 || keys[0] != "2026-10-01" || keys[1] != "2026-10-14" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestDemoItemsAreUnique(t *testing.T) {
	items := DemoItems()
	if len(items) != 30 {
		t.Fatalf("expected 30 demo items, got %d", len(items))
	}
	if len(core.ItemIDs(items)) != len(items) {
		t.Fatalf("duplicate ids in demo list")
	}
}

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	items, _ := s.ListItems(context.Background())
	if len(items) != 30 {
		t.Fatalf("expected demo items when file missing, got %d", len(items))
	}

	content := "# id|name\nA1|Barolo\nA2 | Barbaresco \nA1|Duplicate\n\nA3\n|nameless\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_items.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s = NewFromFiles(dir)
	items, _ = s.ListItems(context.Background())
	want := []core.Item{{ID: "A1", Name: "Barolo"}, {ID: "A2", Name: "Barbaresco"}, {ID: "A3", Name: "A3"}}
	if len(items) != len(want) {
		t.Fatalf("unexpected items: %v", items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}
}
