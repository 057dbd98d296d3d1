// Package http provides the HTTP server and handler implementations.
//
// This file implements parsing of entry forms and list filters. Mutation
// bodies may be form-encoded (HTMX) or JSON (API clients).

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"enoteca/internal/core"
)

const (
	maxQueryRunes = 100
	maxNoteRunes  = 200
	maxBodyBytes  = 64 << 10
)

// ParseDateParam returns today for a blank value and validates anything else.
func ParseDateParam(raw string) (core.DateKey, error) {
	if strings.TrimSpace(raw) == "" {
		return core.Today(), nil
	}
	return core.ParseDateKey(raw)
}

// ParseListOptions reads the q, touched and favorites filters.
func ParseListOptions(q url.Values) core.ListOptions {
	return core.ListOptions{
		TouchedOnly:   isTruthy(q.Get("touched")),
		FavoritesOnly: isTruthy(q.Get("favorites")),
		Query:         truncateRunes(sanitizeInput(q.Get("q")), maxQueryRunes),
	}
}

// ParseSalePatch builds a patch from the bottles and glasses fields present
// in form. Absent fields stay untouched; garbage becomes zero.
func ParseSalePatch(form url.Values) core.SalePatch {
	var p core.SalePatch
	if form.Has("bottles") {
		p.Bottles = quantityPtr(form.Get("bottles"))
	}
	if form.Has("glasses") {
		p.Glasses = quantityPtr(form.Get("glasses"))
	}
	return p
}

// ParseLossPatch builds a patch from the category, broken and note fields.
func ParseLossPatch(form url.Values) core.LossPatch {
	var p core.LossPatch
	if form.Has("category") {
		c := core.ParseLossCategory(form.Get("category"))
		p.Category = &c
	}
	if form.Has("broken") {
		p.BrokenBottles = quantityPtr(form.Get("broken"))
	}
	if form.Has("note") {
		note := truncateRunes(sanitizeInput(form.Get("note")), maxNoteRunes)
		p.Note = &note
	}
	return p
}

func quantityPtr(s string) *int {
	n := core.ParseQuantity(s)
	return &n
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	values      url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse parses the body as a JSON object or as form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	p.values = url.Values{}
	if len(p.body) == 0 {
		return nil
	}

	if p.IsJSON() {
		var data map[string]interface{}
		if err := json.Unmarshal(p.body, &data); err != nil {
			p.err = err
			return err
		}
		for k, v := range data {
			if s, ok := stringValue(v); ok {
				p.values.Set(k, s)
			}
		}
		return nil
	}

	p.values, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Values returns the parsed fields; JSON numbers and booleans are rendered as strings.
func (p *RequestBodyParser) Values() url.Values {
	if p.values == nil {
		return url.Values{}
	}
	return p.values
}

func (p *RequestBodyParser) IsJSON() bool {
	if strings.HasPrefix(strings.ToLower(p.contentType), "application/json") {
		return true
	}
	trimmed := strings.TrimSpace(string(p.body))
	return strings.HasPrefix(trimmed, "{")
}

func stringValue(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}
