package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StorageKeyPrefix namespaces persisted drafts.
const StorageKeyPrefix = "enoteca:draft:"

var ErrMalformedRecord = errors.New("malformed record")

// StorageKey is the key a record for date is persisted under.
func StorageKey(date DateKey) string {
	return StorageKeyPrefix + string(date)
}

// DateFromStorageKey reverses StorageKey.
func DateFromStorageKey(key string) (DateKey, bool) {
	if !strings.HasPrefix(key, StorageKeyPrefix) {
		return "", false
	}
	d, err := ParseDateKey(strings.TrimPrefix(key, StorageKeyPrefix))
	if err != nil {
		return "", false
	}
	return d, true
}

// EncodeRecord serializes r for persistence.
func EncodeRecord(r DailyRecord) ([]byte, error) {
	r.ensureMaps()
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode record %s: %w", r.Date, err)
	}
	return data, nil
}

// DecodeRecord parses a persisted record for date. The result is normalized:
// maps are never nil, quantities are re-clamped, line ids follow their map key,
// the date is forced to date and, when known is non-nil, ids outside known are
// dropped.
func DecodeRecord(date DateKey, data []byte, known map[string]bool) (DailyRecord, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return NewDailyRecord(date), ErrMalformedRecord
	}
	var raw DailyRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewDailyRecord(date), fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	keep := func(id string) bool {
		if strings.TrimSpace(id) == "" {
			return false
		}
		return known == nil || known[id]
	}

	out := NewDailyRecord(date)
	for id, l := range raw.Sales {
		if !keep(id) {
			continue
		}
		out.Sales[id] = SaleLine{
			ItemID:  id,
			Bottles: ClampQuantity(l.Bottles),
			Glasses: ClampQuantity(l.Glasses),
		}
	}
	for id, l := range raw.Losses {
		if !keep(id) {
			continue
		}
		cat := ParseLossCategory(string(l.Category))
		broken := ClampQuantity(l.BrokenBottles)
		if cat != LossBroken {
			broken = 0
		}
		out.Losses[id] = LossLine{
			ItemID:        id,
			Category:      cat,
			BrokenBottles: broken,
			Note:          strings.TrimSpace(l.Note),
		}
	}
	for id, fav := range raw.Favorites {
		if fav && keep(id) {
			out.Favorites[id] = true
		}
	}
	return out, nil
}
