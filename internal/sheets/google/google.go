package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"enoteca/internal/core"
	ports "enoteca/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultSheetName = "Registro"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base name without year (e.g. "Registro"); the record year is prefixed.
	sheetBase string
}

var _ ports.RecordExporter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Registro").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if base == "" {
		base = defaultSheetName
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetBase: base}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// SheetName returns the register sheet used for records of the given year.
func (c *Client) SheetName(year int) string {
	return yearPrefixedName(c.sheetBase, year)
}

// ExportRecord appends one row per touched item. A record with nothing
// touched writes nothing and returns an empty reference.
func (c *Client) ExportRecord(ctx context.Context, rec core.DailyRecord, items []core.Item) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if rec.Date.Time().IsZero() {
		return "", fmt.Errorf("export record: %w", core.ErrInvalidDate)
	}

	rows := BuildRows(rec, items)
	if len(rows) == 0 {
		slog.InfoContext(ctx, "Nothing to export", "date", rec.Date)
		return "", nil
	}

	sheet := c.SheetName(rec.Date.Time().Year())
	rng := fmt.Sprintf("'%s'!A:H", sheet)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Exported record", "date", rec.Date, "rows", len(rows), "range", ref)
	return ref, nil
}
