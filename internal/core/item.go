package core

import (
	"errors"
	"strings"
	"time"
)

// DateKeyLayout is the calendar date format used as record key.
const DateKeyLayout = "2006-01-02"

type (
	// Item is a tracked product (wine). The list is static at runtime.
	Item struct {
		ID   string
		Name string
	}

	// DateKey identifies a calendar date in the local time zone.
	DateKey string
)

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrUnknownItem = errors.New("unknown item")
	ErrEmptyItemID = errors.New("empty item id")
)

// ParseDateKey validates a YYYY-MM-DD string.
func ParseDateKey(s string) (DateKey, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(DateKeyLayout, s, time.Local)
	if err != nil {
		return "", ErrInvalidDate
	}
	return DateKeyFor(t), nil
}

// DateKeyFor returns the local calendar date of t.
func DateKeyFor(t time.Time) DateKey {
	return DateKey(t.In(time.Local).Format(DateKeyLayout))
}

// Today returns the current local date.
func Today() DateKey {
	return DateKeyFor(time.Now())
}

func (d DateKey) String() string {
	return string(d)
}

// Time returns local midnight of the date.
func (d DateKey) Time() time.Time {
	t, err := time.ParseInLocation(DateKeyLayout, string(d), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays shifts the date by n calendar days.
func (d DateKey) AddDays(n int) DateKey {
	t := d.Time()
	if t.IsZero() {
		return d
	}
	return DateKeyFor(t.AddDate(0, 0, n))
}

func (d DateKey) IsZero() bool {
	return d == ""
}

// Validate checks that the item has an id and a display name.
func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return ErrEmptyItemID
	}
	if strings.TrimSpace(i.Name) == "" {
		return errors.New("empty item name")
	}
	return nil
}

// ItemIDs returns the set of ids in items.
func ItemIDs(items []Item) map[string]bool {
	ids := make(map[string]bool, len(items))
	for _, it := range items {
		ids[it.ID] = true
	}
	return ids
}
