package memory

import (
	"context"
	"fmt"
	"sync"

	"enoteca/internal/core"
	ports "enoteca/internal/sheets"
	"enoteca/internal/sheets/google"
)

// Exporter keeps exported rows in memory. It stands in for the spreadsheet
// when no GOOGLE_SPREADSHEET_ID is configured.
type Exporter struct {
	mu   sync.Mutex
	rows [][]interface{}
}

var _ ports.RecordExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// ExportRecord appends the rows google.BuildRows produces and returns a
// synthetic range reference.
func (e *Exporter) ExportRecord(_ context.Context, rec core.DailyRecord, items []core.Item) (string, error) {
	rows := google.BuildRows(rec, items)
	if len(rows) == 0 {
		return "", nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	start := len(e.rows) + 1
	e.rows = append(e.rows, rows...)
	return fmt.Sprintf("mem:%d-%d", start, len(e.rows)), nil
}

// Rows returns a copy of every exported row.
func (e *Exporter) Rows() [][]interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]interface{}, len(e.rows))
	for i, r := range e.rows {
		out[i] = append([]interface{}(nil), r...)
	}
	return out
}
