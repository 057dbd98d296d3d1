package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"enoteca/internal/core"
)

// Store keeps serialized records in process memory, keyed like browser
// local storage, and serves a static item list.
type Store struct {
	mu      sync.Mutex
	entries map[string][]byte
	items   []core.Item
}

func New(items []core.Item) *Store {
	return &Store{entries: make(map[string][]byte), items: dedupeItems(items)}
}

// NewFromFiles seeds the item list from base/seed_items.txt ("id|name" per
// line) and falls back to the demo list when the file is missing or empty.
func NewFromFiles(base string) *Store {
	items := readItems(filepath.Join(base, "seed_items.txt"))
	if len(items) == 0 {
		items = DemoItems()
	}
	return New(items)
}

func (s *Store) LoadRecord(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (s *Store) SaveRecord(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), payload...)
	return nil
}

func (s *Store) ListRecordKeys(_ context.Context) ([]core.DateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.DateKey, 0, len(s.entries))
	for key := range s.entries {
		if d, ok := core.DateFromStorageKey(key); ok {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (s *Store) ListItems(_ context.Context) ([]core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Item(nil), s.items...), nil
}

func readItems(path string) []core.Item {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []core.Item
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, name, ok := strings.Cut(line, "|")
		if !ok {
			name = id
		}
		out = append(out, core.Item{ID: strings.TrimSpace(id), Name: strings.TrimSpace(name)})
	}
	return dedupeItems(out)
}

func dedupeItems(in []core.Item) []core.Item {
	seen := map[string]struct{}{}
	out := make([]core.Item, 0, len(in))
	for _, it := range in {
		if it.Validate() != nil {
			continue
		}
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
