package sheets

import (
	"context"

	"enoteca/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordExporter appends the touched lines of a daily record to an
	// external register and returns a reference to the written range.
	RecordExporter interface {
		ExportRecord(ctx context.Context, rec core.DailyRecord, items []core.Item) (rowRef string, err error)
	}
)
