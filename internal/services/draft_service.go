package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"enoteca/internal/cache"
	"enoteca/internal/core"
	"enoteca/internal/store"
)

// Publisher announces submitted steps to downstream consumers.
type Publisher interface {
	PublishRecordSubmitted(ctx context.Context, date core.DateKey, step core.Step) error
}

// Page is what the entry page renders for one date.
type Page struct {
	Date         core.DateKey
	Rows         []core.ItemRow
	Totals       core.Totals
	TouchedCount int
	ItemCount    int
}

// DraftService owns the active date and its record. Every mutation is
// persisted before it becomes visible.
type DraftService struct {
	mu        sync.Mutex
	records   store.RecordStore
	catalog   store.ItemCatalog
	publisher Publisher

	active core.DailyRecord
	opened bool

	items  cacheStore[string, []core.Item]
	peeked cacheStore[core.DateKey, core.DailyRecord]
}

// cacheStore is a cache the janitor can clean.
type cacheStore[K comparable, V any] interface {
	cache.Cache[K, V]
	cache.Cleaner
}

const itemsCacheKey = "items"

func NewDraftService(records store.RecordStore, catalog store.ItemCatalog, publisher Publisher) *DraftService {
	return &DraftService{
		records:   records,
		catalog:   catalog,
		publisher: publisher,
		items:     cache.NewLRU[string, []core.Item](1, 10*time.Minute),
		peeked:    cache.NewLRU[core.DateKey, core.DailyRecord](64, 5*time.Minute),
	}
}

// Caches exposes the internal caches for periodic cleanup.
func (s *DraftService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.items, s.peeked}
}

// Items returns the item master list.
func (s *DraftService) Items(ctx context.Context) ([]core.Item, error) {
	if items, ok := s.items.Get(itemsCacheKey); ok {
		return append([]core.Item(nil), items...), nil
	}
	items, err := s.catalog.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	s.items.Set(itemsCacheKey, items)
	return append([]core.Item(nil), items...), nil
}

// Open makes date the active date. A persisted record is loaded as-is; when
// none is usable an empty record is created carrying the favorites of the
// previously active record.
func (s *DraftService) Open(ctx context.Context, date core.DateKey) (core.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(ctx, date); err != nil {
		return core.DailyRecord{}, err
	}
	return s.active.Clone(), nil
}

// Current returns a copy of the active record.
func (s *DraftService) Current() core.DailyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Clone()
}

// Peek reads the record for date without switching the active date.
func (s *DraftService) Peek(ctx context.Context, date core.DateKey) (core.DailyRecord, error) {
	if _, err := core.ParseDateKey(date.String()); err != nil {
		return core.DailyRecord{}, err
	}
	s.mu.Lock()
	if s.opened && s.active.Date == date {
		rec := s.active.Clone()
		s.mu.Unlock()
		return rec, nil
	}
	s.mu.Unlock()

	if rec, ok := s.peeked.Get(date); ok {
		return rec.Clone(), nil
	}
	known, err := s.knownIDs(ctx)
	if err != nil {
		return core.DailyRecord{}, err
	}
	rec, _, err := s.load(ctx, date, known)
	if err != nil {
		return core.DailyRecord{}, err
	}
	s.peeked.Set(date, rec)
	return rec.Clone(), nil
}

// List opens date and returns the filtered, ordered rows with totals.
func (s *DraftService) List(ctx context.Context, date core.DateKey, opts core.ListOptions) (Page, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return Page{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(ctx, date); err != nil {
		return Page{}, err
	}
	return Page{
		Date:         s.active.Date,
		Rows:         core.ListItems(items, s.active, opts),
		Totals:       s.active.Totals(),
		TouchedCount: len(s.active.Touched()),
		ItemCount:    len(items),
	}, nil
}

// Row returns the row of a single item for date, opening the date.
func (s *DraftService) Row(ctx context.Context, date core.DateKey, itemID string) (core.ItemRow, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return core.ItemRow{}, err
	}
	idx := slices.IndexFunc(items, func(it core.Item) bool { return it.ID == itemID })
	if idx < 0 {
		return core.ItemRow{}, fmt.Errorf("%w: %s", core.ErrUnknownItem, itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(ctx, date); err != nil {
		return core.ItemRow{}, err
	}
	return core.ItemRow{
		Item:     items[idx],
		Sale:     s.active.Sale(itemID),
		Loss:     s.active.Loss(itemID),
		Favorite: s.active.IsFavorite(itemID),
		Touched:  s.active.Touched()[itemID],
	}, nil
}

func (s *DraftService) UpdateSale(ctx context.Context, date core.DateKey, itemID string, p core.SalePatch) (core.SaleLine, error) {
	if err := s.checkItem(ctx, itemID); err != nil {
		return core.SaleLine{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(ctx, date); err != nil {
		return core.SaleLine{}, err
	}
	next := s.active.Clone()
	line := next.ApplySale(itemID, p)
	if err := s.commitLocked(ctx, next); err != nil {
		return core.SaleLine{}, err
	}
	return line, nil
}

func (s *DraftService) UpdateLoss(ctx context.Context, date core.DateKey, itemID string, p core.LossPatch) (core.LossLine, error) {
	if err := s.checkItem(ctx, itemID); err != nil {
		return core.LossLine{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(ctx, date); err != nil {
		return core.LossLine{}, err
	}
	next := s.active.Clone()
	line := next.ApplyLoss(itemID, p)
	if err := s.commitLocked(ctx, next); err != nil {
		return core.LossLine{}, err
	}
	return line, nil
}

func (s *DraftService) ToggleFavorite(ctx context.Context, date core.DateKey, itemID string) (bool, error) {
	if err := s.checkItem(ctx, itemID); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(ctx, date); err != nil {
		return false, err
	}
	next := s.active.Clone()
	fav := next.ToggleFavorite(itemID)
	if err := s.commitLocked(ctx, next); err != nil {
		return false, err
	}
	return fav, nil
}

// SubmitStep persists the record of date and announces the completed step.
// It returns the step the operator moves to.
func (s *DraftService) SubmitStep(ctx context.Context, date core.DateKey, step core.Step) (core.Step, error) {
	s.mu.Lock()
	if err := s.openLocked(ctx, date); err != nil {
		s.mu.Unlock()
		return step, err
	}
	if err := s.commitLocked(ctx, s.active.Clone()); err != nil {
		s.mu.Unlock()
		return step, err
	}
	s.mu.Unlock()

	if s.publisher == nil {
		slog.WarnContext(ctx, "No publisher configured, skipping submit message", "date", date, "step", step)
		return step.Next(), nil
	}
	if err := s.publisher.PublishRecordSubmitted(ctx, date, step); err != nil {
		// The record is saved locally; the worker picks it up on its schedule.
		slog.ErrorContext(ctx, "Failed to publish submit message", "date", date, "step", step, "error", err)
	}
	return step.Next(), nil
}

// RecordedDates lists the dates with a persisted record, newest first.
func (s *DraftService) RecordedDates(ctx context.Context, limit int) ([]core.DateKey, error) {
	dates, err := s.records.ListRecordKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recorded dates: %w", err)
	}
	out := make([]core.DateKey, 0, len(dates))
	for i := len(dates) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, dates[i])
	}
	return out, nil
}

func (s *DraftService) openLocked(ctx context.Context, date core.DateKey) error {
	if _, err := core.ParseDateKey(date.String()); err != nil {
		return err
	}
	if s.opened && s.active.Date == date {
		return nil
	}

	known, err := s.knownIDs(ctx)
	if err != nil {
		return err
	}
	rec, found, err := s.load(ctx, date, known)
	if err != nil {
		return err
	}
	if !found && s.opened {
		rec = rec.WithFavorites(s.active)
	}

	slog.DebugContext(ctx, "Active date switched", "from", s.active.Date, "to", date, "persisted", found)
	s.active = rec
	s.opened = true
	return nil
}

// load returns the persisted record for date. Missing and malformed data both
// yield an empty record with found=false.
func (s *DraftService) load(ctx context.Context, date core.DateKey, known map[string]bool) (core.DailyRecord, bool, error) {
	payload, found, err := s.records.LoadRecord(ctx, core.StorageKey(date))
	if err != nil {
		return core.DailyRecord{}, false, fmt.Errorf("load record %s: %w", date, err)
	}
	if !found {
		return core.NewDailyRecord(date), false, nil
	}
	rec, err := core.DecodeRecord(date, payload, known)
	if err != nil {
		slog.WarnContext(ctx, "Discarding malformed record", "date", date, "error", err)
		return core.NewDailyRecord(date), false, nil
	}
	return rec, true, nil
}

func (s *DraftService) commitLocked(ctx context.Context, next core.DailyRecord) error {
	payload, err := core.EncodeRecord(next)
	if err != nil {
		return err
	}
	if err := s.records.SaveRecord(ctx, core.StorageKey(next.Date), payload); err != nil {
		return fmt.Errorf("save record %s: %w", next.Date, err)
	}
	s.active = next
	s.peeked.Delete(next.Date)
	return nil
}

func (s *DraftService) knownIDs(ctx context.Context) (map[string]bool, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}
	return core.ItemIDs(items), nil
}

func (s *DraftService) checkItem(ctx context.Context, itemID string) error {
	if itemID == "" {
		return core.ErrEmptyItemID
	}
	known, err := s.knownIDs(ctx)
	if err != nil {
		return err
	}
	if !known[itemID] {
		return fmt.Errorf("%w: %s", core.ErrUnknownItem, itemID)
	}
	return nil
}

// IsNotFound reports whether err means the addressed item does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, core.ErrUnknownItem) || errors.Is(err, core.ErrEmptyItemID)
}
