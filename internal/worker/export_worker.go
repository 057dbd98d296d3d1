package worker

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"enoteca/internal/amqp"
	"enoteca/internal/core"
	"enoteca/internal/sheets"
	"enoteca/internal/store"
)

// ExportWorker copies completed daily records from the record store to the
// external register.
type ExportWorker struct {
	records  store.RecordStore
	catalog  store.ItemCatalog
	exporter sheets.RecordExporter

	mu sync.Mutex
	// last exported payload per date; an unchanged record is not appended twice
	exported map[core.DateKey][]byte
}

func NewExportWorker(records store.RecordStore, catalog store.ItemCatalog, exporter sheets.RecordExporter) *ExportWorker {
	return &ExportWorker{
		records:  records,
		catalog:  catalog,
		exporter: exporter,
		exported: make(map[core.DateKey][]byte),
	}
}

// HandleRecordSubmitted processes a record submitted message from AMQP. Only
// the loss step completes a day; a sales submission is acknowledged as is.
func (w *ExportWorker) HandleRecordSubmitted(ctx context.Context, msg *amqp.RecordSubmittedMessage) error {
	slog.InfoContext(ctx, "Processing record submitted message",
		"date", msg.Date,
		"step", msg.Step,
		"timestamp", msg.Timestamp)

	if msg.Step != core.StepLoss {
		return nil
	}
	_, err := w.ExportDate(ctx, msg.Date)
	return err
}

// ExportToday exports the current day. It backs up lost AMQP messages.
func (w *ExportWorker) ExportToday(ctx context.Context) error {
	_, err := w.ExportDate(ctx, core.Today())
	return err
}

// ExportDate exports the persisted record of date. It reports whether any
// rows were written.
func (w *ExportWorker) ExportDate(ctx context.Context, date core.DateKey) (bool, error) {
	payload, found, err := w.records.LoadRecord(ctx, core.StorageKey(date))
	if err != nil {
		return false, fmt.Errorf("load record %s: %w", date, err)
	}
	if !found {
		slog.InfoContext(ctx, "No record to export", "date", date)
		return false, nil
	}

	w.mu.Lock()
	same := bytes.Equal(w.exported[date], payload)
	w.mu.Unlock()
	if same {
		slog.InfoContext(ctx, "Record unchanged since last export", "date", date)
		return false, nil
	}

	items, err := w.catalog.ListItems(ctx)
	if err != nil {
		return false, fmt.Errorf("list items: %w", err)
	}
	rec, err := core.DecodeRecord(date, payload, core.ItemIDs(items))
	if err != nil {
		// Nothing usable to export; retrying will not fix the payload.
		slog.WarnContext(ctx, "Skipping malformed record", "date", date, "error", err)
		return false, nil
	}

	ref, err := w.exporter.ExportRecord(ctx, rec, items)
	if err != nil {
		return false, fmt.Errorf("export record %s: %w", date, err)
	}

	w.mu.Lock()
	w.exported[date] = append([]byte(nil), payload...)
	w.mu.Unlock()

	slog.InfoContext(ctx, "Record exported", "date", date, "range", ref, "touched", len(rec.Touched()))
	return ref != "", nil
}
