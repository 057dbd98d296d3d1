package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"enoteca/internal/core"
	"enoteca/internal/store"
)

var (
	_ store.RecordStore = (*SQLiteRepository)(nil)
	_ store.ItemCatalog = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db *sqlx.DB
}

type recordRow struct {
	StorageKey string `db:"storage_key"`
	RecordDate string `db:"record_date"`
	Payload    string `db:"payload"`
}

type itemRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer keeps SQLite free of SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// LoadRecord implements store.RecordStore
func (r *SQLiteRepository) LoadRecord(ctx context.Context, key string) ([]byte, bool, error) {
	var payload string
	err := r.db.GetContext(ctx, &payload, `SELECT payload FROM daily_records WHERE storage_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load record %s: %w", key, err)
	}
	return []byte(payload), true, nil
}

// SaveRecord implements store.RecordStore
func (r *SQLiteRepository) SaveRecord(ctx context.Context, key string, payload []byte) error {
	row := recordRow{StorageKey: key, Payload: string(payload)}
	if d, ok := core.DateFromStorageKey(key); ok {
		row.RecordDate = d.String()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO daily_records (storage_key, record_date, payload)
		VALUES (:storage_key, :record_date, :payload)
		ON CONFLICT(storage_key) DO UPDATE SET
			payload = excluded.payload,
			record_date = excluded.record_date,
			updated_at = CURRENT_TIMESTAMP`, row)
	if err != nil {
		return fmt.Errorf("save record %s: %w", key, err)
	}

	slog.DebugContext(ctx, "Record saved to SQLite", "storage_key", key, "bytes", len(payload))
	return nil
}

// ListRecordKeys implements store.RecordStore
func (r *SQLiteRepository) ListRecordKeys(ctx context.Context) ([]core.DateKey, error) {
	var dates []string
	err := r.db.SelectContext(ctx, &dates, `
		SELECT record_date FROM daily_records
		WHERE record_date != ''
		ORDER BY record_date`)
	if err != nil {
		return nil, fmt.Errorf("list record keys: %w", err)
	}
	out := make([]core.DateKey, 0, len(dates))
	for _, d := range dates {
		out = append(out, core.DateKey(d))
	}
	return out, nil
}

// ListItems implements store.ItemCatalog
func (r *SQLiteRepository) ListItems(ctx context.Context) ([]core.Item, error) {
	var rows []itemRow
	err := r.db.SelectContext(ctx, &rows, `SELECT id, name FROM items WHERE active = 1 ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items := make([]core.Item, len(rows))
	for i, row := range rows {
		items[i] = core.Item{ID: row.ID, Name: row.Name}
	}
	return items, nil
}
