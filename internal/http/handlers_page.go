package http

import (
	"net/http"

	"enoteca/internal/core"
	applog "enoteca/internal/log"
)

const recentDatesShown = 7

// handleIndex renders the full entry page for the requested date and step.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := ParseDateParam(q.Get("date"))
	if err != nil {
		s.writeError(w, r, applog.OpOpen, err)
		return
	}
	step := core.ParseStep(q.Get("step"))
	opts := ParseListOptions(q)

	page, err := s.drafts.List(r.Context(), date, opts)
	if err != nil {
		s.writeError(w, r, applog.OpOpen, err)
		return
	}
	recent, err := s.drafts.RecordedDates(r.Context(), recentDatesShown)
	if err != nil {
		// The page is usable without the history strip.
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Listing recorded dates failed", applog.FieldError, err)
		recent = nil
	}
	s.render(w, r, "index.html", newPageView(page, step, opts, recent), nil)
}

// handleItems renders the item list partial used by the filter form.
func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := ParseDateParam(q.Get("date"))
	if err != nil {
		s.writeError(w, r, applog.OpOpen, err)
		return
	}
	page, err := s.drafts.List(r.Context(), date, ParseListOptions(q))
	if err != nil {
		s.writeError(w, r, applog.OpOpen, err)
		return
	}
	s.render(w, r, "item_list", newListView(page, core.ParseStep(q.Get("step"))), nil)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	date, err := ParseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, r, applog.OpOpen, err)
		return
	}
	page, err := s.drafts.List(r.Context(), date, core.ListOptions{})
	if err != nil {
		s.writeError(w, r, applog.OpOpen, err)
		return
	}
	s.render(w, r, "totals", newTotalsView(page), nil)
}
