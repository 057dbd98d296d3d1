package http

import (
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"enoteca/internal/core"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// pageURL links the entry page for date and step, keeping the filters.
func pageURL(date core.DateKey, step core.Step, opts core.ListOptions) string {
	q := url.Values{}
	q.Set("date", date.String())
	q.Set("step", step.String())
	if opts.Query != "" {
		q.Set("q", opts.Query)
	}
	if opts.TouchedOnly {
		q.Set("touched", "1")
	}
	if opts.FavoritesOnly {
		q.Set("favorites", "1")
	}
	return "/?" + q.Encode()
}
