package http

import (
	"net/http"

	"enoteca/internal/core"
	applog "enoteca/internal/log"
)

// parseMutation reads the path date and the request body of a record mutation.
func (s *Server) parseMutation(w http.ResponseWriter, r *http.Request, op string) (core.DateKey, *RequestBodyParser, bool) {
	date, err := core.ParseDateKey(r.PathValue("date"))
	if err != nil {
		s.writeError(w, r, op, err)
		return "", nil, false
	}
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Richiesta non valida").Write(w)
		return "", nil, false
	}
	return date, parser, true
}

func (s *Server) handleSale(w http.ResponseWriter, r *http.Request) {
	date, body, ok := s.parseMutation(w, r, applog.OpSale)
	if !ok {
		return
	}
	itemID := r.PathValue("item")
	line, err := s.drafts.UpdateSale(r.Context(), date, itemID, ParseSalePatch(body.Values()))
	if err != nil {
		s.writeError(w, r, applog.OpSale, err)
		return
	}
	s.mutations.LogMutation(r.Context(), applog.OpSale, date.String(), itemID,
		"bottles", line.Bottles, "glasses", line.Glasses)
	if body.IsJSON() {
		writeJSON(w, http.StatusOK, line)
		return
	}
	s.respondRow(w, r, date, itemID, core.StepSales)
}

func (s *Server) handleLoss(w http.ResponseWriter, r *http.Request) {
	date, body, ok := s.parseMutation(w, r, applog.OpLoss)
	if !ok {
		return
	}
	itemID := r.PathValue("item")
	line, err := s.drafts.UpdateLoss(r.Context(), date, itemID, ParseLossPatch(body.Values()))
	if err != nil {
		s.writeError(w, r, applog.OpLoss, err)
		return
	}
	s.mutations.LogMutation(r.Context(), applog.OpLoss, date.String(), itemID,
		"category", line.Category, "broken", line.BrokenBottles)
	if body.IsJSON() {
		writeJSON(w, http.StatusOK, line)
		return
	}
	s.respondRow(w, r, date, itemID, core.StepLoss)
}

func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	date, body, ok := s.parseMutation(w, r, applog.OpFavorite)
	if !ok {
		return
	}
	itemID := r.PathValue("item")
	fav, err := s.drafts.ToggleFavorite(r.Context(), date, itemID)
	if err != nil {
		s.writeError(w, r, applog.OpFavorite, err)
		return
	}
	s.mutations.LogMutation(r.Context(), applog.OpFavorite, date.String(), itemID, "favorite", fav)
	if body.IsJSON() {
		writeJSON(w, http.StatusOK, map[string]any{"itemId": itemID, "favorite": fav})
		return
	}
	s.respondRow(w, r, date, itemID, core.ParseStep(body.Values().Get("step")))
}

// respondRow answers htmx with the re-rendered row and plain forms with a redirect.
func (s *Server) respondRow(w http.ResponseWriter, r *http.Request, date core.DateKey, itemID string, step core.Step) {
	if !isHTMX(r) {
		http.Redirect(w, r, pageURL(date, step, core.ListOptions{}), http.StatusSeeOther)
		return
	}
	row, err := s.drafts.Row(r.Context(), date, itemID)
	if err != nil {
		s.writeError(w, r, applog.OpRender, err)
		return
	}
	b := NewHTMXResponse().TriggerRecordUpdated(date.String(), itemID)
	s.render(w, r, "item_row", newRowView(date, step, row), b)
}

func (s *Server) handleSubmitStep(w http.ResponseWriter, r *http.Request) {
	date, body, ok := s.parseMutation(w, r, applog.OpSubmit)
	if !ok {
		return
	}
	raw := r.PathValue("step")
	step := core.ParseStep(raw)
	if step.String() != raw {
		s.logger.WarnContext(r.Context(), "Rejected unknown step", applog.FieldStep, raw)
		BadRequestError("Passo non valido").Write(w)
		return
	}

	next, err := s.drafts.SubmitStep(r.Context(), date, step)
	if err != nil {
		s.writeError(w, r, applog.OpSubmit, err)
		return
	}
	s.mutations.LogMutation(r.Context(), applog.OpSubmit, date.String(), "", applog.FieldStep, step)

	target := pageURL(date, next, core.ListOptions{})
	switch {
	case body.IsJSON():
		writeJSON(w, http.StatusOK, map[string]string{
			"date": date.String(), "step": step.String(), "next": next.String(), "location": target,
		})
	case isHTMX(r):
		NewHTMXResponse().
			Redirect(target).
			TriggerSuccessNotification(submitMessage(step)).
			Write(w)
	default:
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func submitMessage(step core.Step) string {
	if step == core.StepLoss {
		return "Perdite salvate"
	}
	return "Vendite salvate"
}
