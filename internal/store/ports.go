package store

import (
	"context"

	"enoteca/internal/core"
)

// Ports for record persistence and the item master list.
type (
	// RecordStore persists one serialized DailyRecord per storage key.
	RecordStore interface {
		LoadRecord(ctx context.Context, key string) (payload []byte, found bool, err error)
		SaveRecord(ctx context.Context, key string, payload []byte) error
		// ListRecordKeys returns the dates that have a persisted record, oldest first.
		ListRecordKeys(ctx context.Context) ([]core.DateKey, error)
	}

	ItemCatalog interface {
		ListItems(ctx context.Context) ([]core.Item, error)
	}
)
