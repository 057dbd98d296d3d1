package core

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type (
	// ListOptions selects which items the entry page shows.
	ListOptions struct {
		TouchedOnly   bool
		FavoritesOnly bool
		Query         string
	}

	// ItemRow is an item joined with its lines for one date.
	ItemRow struct {
		Item     Item
		Sale     SaleLine
		Loss     LossLine
		Favorite bool
		Touched  bool
	}
)

// ListItems filters and orders items for display: favorites first, then by
// name, then by id. Search is a case-insensitive substring match on id or name.
func ListItems(items []Item, r DailyRecord, opts ListOptions) []ItemRow {
	// Casers and collators keep internal state; build them per call.
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(opts.Query))
	touched := r.Touched()

	rows := make([]ItemRow, 0, len(items))
	for _, it := range items {
		row := ItemRow{
			Item:     it,
			Sale:     r.Sale(it.ID),
			Loss:     r.Loss(it.ID),
			Favorite: r.IsFavorite(it.ID),
			Touched:  touched[it.ID],
		}
		if opts.TouchedOnly && !row.Touched {
			continue
		}
		if opts.FavoritesOnly && !row.Favorite {
			continue
		}
		if query != "" &&
			!strings.Contains(fold.String(it.ID), query) &&
			!strings.Contains(fold.String(it.Name), query) {
			continue
		}
		rows = append(rows, row)
	}

	coll := collate.New(language.Italian, collate.IgnoreCase, collate.IgnoreDiacritics)
	slices.SortStableFunc(rows, func(a, b ItemRow) int {
		if a.Favorite != b.Favorite {
			if a.Favorite {
				return -1
			}
			return 1
		}
		if c := coll.CompareString(a.Item.Name, b.Item.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Item.ID, b.Item.ID)
	})
	return rows
}
