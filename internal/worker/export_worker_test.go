package worker

import (
	"context"
	"errors"
	"testing"

	"enoteca/internal/amqp"
	"enoteca/internal/core"
	sheetsmem "enoteca/internal/sheets/memory"
	"enoteca/internal/store/memory"
)

type failingExporter struct{ calls int }

func (f *failingExporter) ExportRecord(context.Context, core.DailyRecord, []core.Item) (string, error) {
	f.calls++
	return "", errors.New("quota exceeded")
}

var items = []core.Item{{ID: "W001", Name: "Amarone"}, {ID: "W002", Name: "Barolo"}}

func saveRecord(t *testing.T, st *memory.Store, rec core.DailyRecord) {
	t.Helper()
	payload, err := core.EncodeRecord(rec)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SaveRecord(context.Background(), core.StorageKey(rec.Date), payload); err != nil {
		t.Fatal(err)
	}
}

func TestExportDateWritesTouchedRowsOnce(t *testing.T) {
	ctx := context.Background()
	st := memory.New(items)
	exp := sheetsmem.New()
	w := NewExportWorker(st, st, exp)

	rec := core.NewDailyRecord("2026-10-14")
	two := 2
	rec.ApplySale("W002", core.SalePatch{Bottles: &two})
	saveRecord(t, st, rec)

	wrote, err := w.ExportDate(ctx, "2026-10-14")
	if err != nil || !wrote {
		t.Fatalf("first export: wrote=%v err=%v", wrote, err)
	}
	wrote, err = w.ExportDate(ctx, "2026-10-14")
	if err != nil || wrote {
		t.Fatalf("unchanged record should not be exported again: wrote=%v err=%v", wrote, err)
	}
	if rows := exp.Rows(); len(rows) != 1 || rows[0][2] != "Barolo" {
		t.Fatalf("unexpected rows: %v", rows)
	}

	rec.ApplySale("W001", core.SalePatch{Glasses: &two})
	saveRecord(t, st, rec)
	if wrote, _ := w.ExportDate(ctx, "2026-10-14"); !wrote {
		t.Fatal("changed record should be exported")
	}
}

func TestExportDateMissingOrMalformed(t *testing.T) {
	ctx := context.Background()
	st := memory.New(items)
	exp := sheetsmem.New()
	w := NewExportWorker(st, st, exp)

	if wrote, err := w.ExportDate(ctx, "2026-10-14"); err != nil || wrote {
		t.Fatalf("missing record: wrote=%v err=%v", wrote, err)
	}

	_ = st.SaveRecord(ctx, core.StorageKey("2026-10-15"), []byte("garbage"))
	if wrote, err := w.ExportDate(ctx, "2026-10-15"); err != nil || wrote {
		t.Fatalf("malformed record: wrote=%v err=%v", wrote, err)
	}
	if len(exp.Rows()) != 0 {
		t.Fatal("nothing should be exported")
	}
}

func TestExportErrorIsRetried(t *testing.T) {
	ctx := context.Background()
	st := memory.New(items)
	exp := &failingExporter{}
	w := NewExportWorker(st, st, exp)

	rec := core.NewDailyRecord("2026-10-14")
	rec.ToggleFavorite("W001")
	broken := core.LossBroken
	rec.ApplyLoss("W001", core.LossPatch{Category: &broken})
	saveRecord(t, st, rec)

	msg := amqp.NewRecordSubmittedMessage("2026-10-14", core.StepLoss)
	if err := w.HandleRecordSubmitted(ctx, msg); err == nil {
		t.Fatal("expected export error to surface for requeue")
	}
	_ = w.HandleRecordSubmitted(ctx, msg)
	if exp.calls != 2 {
		t.Fatalf("failed export must not be remembered, calls=%d", exp.calls)
	}
}

func TestSalesSubmissionDoesNotExport(t *testing.T) {
	ctx := context.Background()
	st := memory.New(items)
	exp := &failingExporter{}
	w := NewExportWorker(st, st, exp)

	if err := w.HandleRecordSubmitted(ctx, amqp.NewRecordSubmittedMessage("2026-10-14", core.StepSales)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.calls != 0 {
		t.Fatal("sales step must not trigger an export")
	}
}
