package google

import (
	"fmt"
	"strconv"
	"strings"

	"enoteca/internal/core"
)

// BuildRows converts the touched lines of rec into sheet rows, one per item,
// in catalog order. Lines for ids absent from items are skipped. Free text is
// passed through sheetText since rows are appended as USER_ENTERED.
func BuildRows(rec core.DailyRecord, items []core.Item) [][]interface{} {
	touched := rec.Touched()
	if len(touched) == 0 {
		return nil
	}

	names := make(map[string]string, len(items))
	order := make([]string, 0, len(touched))
	for _, it := range items {
		names[it.ID] = it.Name
		if touched[it.ID] {
			order = append(order, it.ID)
		}
	}

	rows := make([][]interface{}, 0, len(order))
	for _, id := range order {
		sale := rec.Sale(id)
		loss := rec.Loss(id)
		rows = append(rows, []interface{}{
			rec.Date.String(),
			id,
			sheetText(names[id]),
			sale.Bottles,
			sale.Glasses,
			loss.Category.String(),
			loss.BrokenBottles,
			sheetText(loss.Note),
		})
	}
	return rows
}

// sheetText keeps user text from being parsed as a formula by prefixing the
// characters Sheets treats as formula starters with an apostrophe.
func sheetText(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
