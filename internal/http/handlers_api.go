package http

import (
	"net/http"
	"slices"
	"strings"

	"enoteca/internal/core"
	applog "enoteca/internal/log"
)

type (
	apiItem struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	apiTotals struct {
		Bottles       int `json:"bottles"`
		Glasses       int `json:"glasses"`
		BrokenBottles int `json:"brokenBottles"`
	}

	apiRecord struct {
		Date      string          `json:"date"`
		Sales     []core.SaleLine `json:"sales"`
		Losses    []core.LossLine `json:"losses"`
		Favorites []string        `json:"favorites"`
		Touched   []string        `json:"touched"`
		Totals    apiTotals       `json:"totals"`
	}
)

// handleAPIRecord returns a stored record without changing the active date.
func (s *Server) handleAPIRecord(w http.ResponseWriter, r *http.Request) {
	date, err := core.ParseDateKey(r.PathValue("date"))
	if err != nil {
		s.writeError(w, r, applog.OpOpen, err)
		return
	}
	rec, err := s.drafts.Peek(r.Context(), date)
	if err != nil {
		s.writeError(w, r, applog.OpOpen, err)
		return
	}
	writeJSON(w, http.StatusOK, newAPIRecord(rec))
}

func (s *Server) handleAPIItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.drafts.Items(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpOpen, err)
		return
	}
	out := make([]apiItem, 0, len(items))
	for _, it := range items {
		out = append(out, apiItem{ID: it.ID, Name: it.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func newAPIRecord(rec core.DailyRecord) apiRecord {
	totals := rec.Totals()
	out := apiRecord{
		Date:      rec.Date.String(),
		Sales:     make([]core.SaleLine, 0, len(rec.Sales)),
		Losses:    make([]core.LossLine, 0, len(rec.Losses)),
		Favorites: sortedKeys(rec.Favorites),
		Touched:   sortedKeys(rec.Touched()),
		Totals: apiTotals{
			Bottles:       totals.Bottles,
			Glasses:       totals.Glasses,
			BrokenBottles: totals.BrokenBottles,
		},
	}
	for _, l := range rec.Sales {
		out.Sales = append(out.Sales, l)
	}
	for _, l := range rec.Losses {
		out.Losses = append(out.Losses, l)
	}
	slices.SortFunc(out.Sales, func(a, b core.SaleLine) int { return strings.Compare(a.ItemID, b.ItemID) })
	slices.SortFunc(out.Losses, func(a, b core.LossLine) int { return strings.Compare(a.ItemID, b.ItemID) })
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k, ok := range m {
		if ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
