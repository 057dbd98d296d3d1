package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"enoteca/internal/core"
	"enoteca/internal/store/memory"
)

type fakePublisher struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakePublisher) PublishRecordSubmitted(_ context.Context, date core.DateKey, step core.Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, date.String()+"/"+step.String())
	return f.err
}

type failingStore struct {
	*memory.Store
	saveErr error
}

func (f *failingStore) SaveRecord(ctx context.Context, key string, payload []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Store.SaveRecord(ctx, key, payload)
}

var testItems = []core.Item{
	{ID: "barolo", Name: "Barolo"},
	{ID: "chianti", Name: "Chianti Classico"},
	{ID: "etna", Name: "Etna Rosso"},
}

func intp(n int) *int { return &n }

func catp(c core.LossCategory) *core.LossCategory { return &c }

func newService(t *testing.T) (*DraftService, *memory.Store, *fakePublisher) {
	t.Helper()
	st := memory.New(testItems)
	pub := &fakePublisher{}
	return NewDraftService(st, st, pub), st, pub
}

func TestUpdateSalePersistsAndClamps(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newService(t)

	line, err := svc.UpdateSale(ctx, "2026-10-14", "barolo", core.SalePatch{Bottles: intp(2000), Glasses: intp(-1)})
	if err != nil {
		t.Fatalf("update sale: %v", err)
	}
	if line.Bottles != core.MaxQuantity || line.Glasses != 0 {
		t.Fatalf("unexpected line: %+v", line)
	}

	payload, found, _ := st.LoadRecord(ctx, core.StorageKey("2026-10-14"))
	if !found {
		t.Fatalf("record not persisted")
	}
	rec, err := core.DecodeRecord("2026-10-14", payload, nil)
	if err != nil || rec.Sales["barolo"].Bottles != core.MaxQuantity {
		t.Fatalf("persisted record mismatch: %+v err=%v", rec, err)
	}
	if svc.Current().Date != "2026-10-14" {
		t.Fatalf("active date not switched")
	}
}

func TestUnknownItemAndInvalidDate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	if _, err := svc.UpdateSale(ctx, "2026-10-14", "ghost", core.SalePatch{Bottles: intp(1)}); !errors.Is(err, core.ErrUnknownItem) || !IsNotFound(err) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
	if _, err := svc.ToggleFavorite(ctx, "2026-10-14", ""); !IsNotFound(err) {
		t.Fatalf("expected not found for empty id, got %v", err)
	}
	if _, err := svc.Open(ctx, "14/10/2026"); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestSwitchDateAndBackRestoresRecord(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, _ = svc.UpdateSale(ctx, "2026-10-14", "barolo", core.SalePatch{Bottles: intp(3), Glasses: intp(1)})
	_, _ = svc.UpdateLoss(ctx, "2026-10-14", "chianti", core.LossPatch{Category: catp(core.LossBroken), BrokenBottles: intp(1)})
	saved := svc.Current()

	if _, err := svc.UpdateSale(ctx, "2026-10-15", "etna", core.SalePatch{Glasses: intp(6)}); err != nil {
		t.Fatalf("update other date: %v", err)
	}
	back, err := svc.Open(ctx, "2026-10-14")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !reflect.DeepEqual(saved, back) {
		t.Fatalf("record changed across date switch:\n%+v\n%+v", saved, back)
	}
}

func TestFavoritesCarryForwardOnlyToNewDates(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	if _, err := svc.ToggleFavorite(ctx, "2026-10-13", "etna"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	// 2026-10-12 has its own persisted favorites.
	_, _ = svc.ToggleFavorite(ctx, "2026-10-12", "barolo")

	rec, _ := svc.Open(ctx, "2026-10-13")
	if !reflect.DeepEqual(rec.Favorites, map[string]bool{"etna": true}) {
		t.Fatalf("persisted favorites not restored: %v", rec.Favorites)
	}

	rec, _ = svc.Open(ctx, "2026-10-14")
	if !reflect.DeepEqual(rec.Favorites, map[string]bool{"etna": true}) {
		t.Fatalf("favorites not carried to new date: %v", rec.Favorites)
	}
	if len(rec.Sales) != 0 || len(rec.Losses) != 0 {
		t.Fatalf("new date should start empty: %+v", rec)
	}
}

func TestMalformedRecordFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newService(t)
	_ = st.SaveRecord(ctx, core.StorageKey("2026-10-14"), []byte("{not json"))

	rec, err := svc.Open(ctx, "2026-10-14")
	if err != nil {
		t.Fatalf("open malformed: %v", err)
	}
	if rec.Date != "2026-10-14" || len(rec.Sales)+len(rec.Losses)+len(rec.Favorites) != 0 {
		t.Fatalf("expected empty record, got %+v", rec)
	}
}

func TestToggleFavoriteTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, _ = svc.ToggleFavorite(ctx, "2026-10-14", "chianti")
	before := svc.Current()

	on, _ := svc.ToggleFavorite(ctx, "2026-10-14", "barolo")
	off, _ := svc.ToggleFavorite(ctx, "2026-10-14", "barolo")
	if !on || off {
		t.Fatalf("unexpected toggle results: %v %v", on, off)
	}
	if !reflect.DeepEqual(before, svc.Current()) {
		t.Fatalf("double toggle changed the record")
	}
}

func TestFailedSaveLeavesActiveRecordUntouched(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{Store: memory.New(testItems)}
	svc := NewDraftService(st, st, nil)
	_, _ = svc.Open(ctx, "2026-10-14")

	st.saveErr = errors.New("disk full")
	if _, err := svc.UpdateSale(ctx, "2026-10-14", "barolo", core.SalePatch{Bottles: intp(1)}); err == nil {
		t.Fatalf("expected save error")
	}
	if len(svc.Current().Sales) != 0 {
		t.Fatalf("failed save must not change the active record")
	}
}

func TestListFiltersAndTotals(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, _ = svc.UpdateSale(ctx, "2026-10-14", "etna", core.SalePatch{Bottles: intp(2), Glasses: intp(3)})
	_, _ = svc.UpdateSale(ctx, "2026-10-14", "barolo", core.SalePatch{Glasses: intp(4)})
	_, _ = svc.ToggleFavorite(ctx, "2026-10-14", "chianti")

	page, err := svc.List(ctx, "2026-10-14", core.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.ItemCount != 3 || page.TouchedCount != 2 {
		t.Fatalf("unexpected counts: %+v", page)
	}
	if page.Totals != (core.Totals{Bottles: 2, Glasses: 7}) {
		t.Fatalf("unexpected totals: %+v", page.Totals)
	}
	if page.Rows[0].Item.ID != "chianti" {
		t.Fatalf("favorite should lead: %v", page.Rows[0].Item.ID)
	}

	page, _ = svc.List(ctx, "2026-10-14", core.ListOptions{TouchedOnly: true})
	if len(page.Rows) != 2 || page.Rows[0].Item.ID != "barolo" || page.Rows[1].Item.ID != "etna" {
		t.Fatalf("unexpected touched rows: %+v", page.Rows)
	}
}

func TestSubmitStepPublishes(t *testing.T) {
	ctx := context.Background()
	svc, st, pub := newService(t)

	next, err := svc.SubmitStep(ctx, "2026-10-14", core.StepSales)
	if err != nil || next != core.StepLoss {
		t.Fatalf("submit sales: next=%v err=%v", next, err)
	}
	if _, found, _ := st.LoadRecord(ctx, core.StorageKey("2026-10-14")); !found {
		t.Fatalf("submit should persist the record")
	}

	pub.err = errors.New("broker down")
	next, err = svc.SubmitStep(ctx, "2026-10-14", core.StepLoss)
	if err != nil || next != core.StepSales {
		t.Fatalf("publish failure must not fail submit: next=%v err=%v", next, err)
	}
	want := []string{"2026-10-14/sales", "2026-10-14/loss"}
	if !reflect.DeepEqual(pub.calls, want) {
		t.Fatalf("calls = %v, want %v", pub.calls, want)
	}
}

func TestPeekDoesNotSwitchActiveDate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, _ = svc.UpdateSale(ctx, "2026-10-13", "barolo", core.SalePatch{Bottles: intp(1)})
	_, _ = svc.Open(ctx, "2026-10-14")

	rec, err := svc.Peek(ctx, "2026-10-13")
	if err != nil || rec.Sales["barolo"].Bottles != 1 {
		t.Fatalf("peek: %+v err=%v", rec, err)
	}
	if svc.Current().Date != "2026-10-14" {
		t.Fatalf("peek switched the active date")
	}

	dates, _ := svc.RecordedDates(ctx, 5)
	if len(dates) != 1 || dates[0] != "2026-10-13" {
		t.Fatalf("unexpected recorded dates: %v", dates)
	}
}

func TestRowReflectsActiveRecord(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, _ = svc.UpdateSale(ctx, "2026-10-14", "etna", core.SalePatch{Glasses: intp(2)})
	_, _ = svc.ToggleFavorite(ctx, "2026-10-14", "etna")

	row, err := svc.Row(ctx, "2026-10-14", "etna")
	if err != nil {
		t.Fatalf("row: %v", err)
	}
	if row.Item.Name != "Etna Rosso" || row.Sale.Glasses != 2 || !row.Favorite || !row.Touched {
		t.Fatalf("unexpected row: %+v", row)
	}
	if _, err := svc.Row(ctx, "2026-10-14", "ghost"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
