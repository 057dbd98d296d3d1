package core

import "strings"

const (
	LossNone             LossCategory = "none"
	LossRemainingDiscard LossCategory = "remaining_discard"
	LossBroken           LossCategory = "broken"
)

type (
	LossCategory string

	SaleLine struct {
		ItemID  string `json:"itemId"`
		Bottles int    `json:"bottles"`
		Glasses int    `json:"glasses"`
	}

	LossLine struct {
		ItemID        string       `json:"itemId"`
		Category      LossCategory `json:"category"`
		BrokenBottles int          `json:"brokenBottles"`
		Note          string       `json:"note,omitempty"`
	}

	// SalePatch is a partial update; nil fields are left untouched.
	SalePatch struct {
		Bottles *int
		Glasses *int
	}

	LossPatch struct {
		Category      *LossCategory
		BrokenBottles *int
		Note          *string
	}

	// DailyRecord holds the sales and losses of one calendar date.
	DailyRecord struct {
		Date      DateKey             `json:"date"`
		Sales     map[string]SaleLine `json:"sales"`
		Losses    map[string]LossLine `json:"losses"`
		Favorites map[string]bool     `json:"favorites"`
	}

	Totals struct {
		Bottles       int
		Glasses       int
		BrokenBottles int
	}
)

// LossCategories lists the categories in display order.
func LossCategories() []LossCategory {
	return []LossCategory{LossNone, LossRemainingDiscard, LossBroken}
}

// ParseLossCategory maps user input to a category, defaulting to LossNone.
func ParseLossCategory(s string) LossCategory {
	switch c := LossCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case LossRemainingDiscard, LossBroken:
		return c
	default:
		return LossNone
	}
}

func (c LossCategory) String() string {
	return string(c)
}

// Label is the Italian display label used by the entry page.
func (c LossCategory) Label() string {
	switch c {
	case LossRemainingDiscard:
		return "Resto buttato"
	case LossBroken:
		return "Bottiglia rotta"
	default:
		return "Nessuna"
	}
}

func (l SaleLine) IsZero() bool {
	return l.Bottles == 0 && l.Glasses == 0
}

// HasLoss reports whether the line records an actual loss.
func (l LossLine) HasLoss() bool {
	return l.Category != "" && l.Category != LossNone
}

// NewDailyRecord returns an empty record for date.
func NewDailyRecord(date DateKey) DailyRecord {
	return DailyRecord{
		Date:      date,
		Sales:     make(map[string]SaleLine),
		Losses:    make(map[string]LossLine),
		Favorites: make(map[string]bool),
	}
}

// Clone returns a deep copy of r.
func (r DailyRecord) Clone() DailyRecord {
	out := NewDailyRecord(r.Date)
	for k, v := range r.Sales {
		out.Sales[k] = v
	}
	for k, v := range r.Losses {
		out.Losses[k] = v
	}
	for k, v := range r.Favorites {
		if v {
			out.Favorites[k] = true
		}
	}
	return out
}

func (r *DailyRecord) ensureMaps() {
	if r.Sales == nil {
		r.Sales = make(map[string]SaleLine)
	}
	if r.Losses == nil {
		r.Losses = make(map[string]LossLine)
	}
	if r.Favorites == nil {
		r.Favorites = make(map[string]bool)
	}
}

// Sale returns the sale line for itemID, zero-valued if absent.
func (r DailyRecord) Sale(itemID string) SaleLine {
	if l, ok := r.Sales[itemID]; ok {
		return l
	}
	return SaleLine{ItemID: itemID}
}

// Loss returns the loss line for itemID, LossNone if absent.
func (r DailyRecord) Loss(itemID string) LossLine {
	if l, ok := r.Losses[itemID]; ok {
		return l
	}
	return LossLine{ItemID: itemID, Category: LossNone}
}

// ApplySale merges p into the sale line of itemID and returns the result.
func (r *DailyRecord) ApplySale(itemID string, p SalePatch) SaleLine {
	r.ensureMaps()
	line := r.Sale(itemID)
	if p.Bottles != nil {
		line.Bottles = *p.Bottles
	}
	if p.Glasses != nil {
		line.Glasses = *p.Glasses
	}
	line.Bottles = ClampQuantity(line.Bottles)
	line.Glasses = ClampQuantity(line.Glasses)
	r.Sales[itemID] = line
	return line
}

// ApplyLoss merges p into the loss line of itemID. The broken count only
// survives while the category is LossBroken.
func (r *DailyRecord) ApplyLoss(itemID string, p LossPatch) LossLine {
	r.ensureMaps()
	line := r.Loss(itemID)
	if p.Category != nil {
		line.Category = ParseLossCategory(string(*p.Category))
	}
	if p.BrokenBottles != nil {
		line.BrokenBottles = *p.BrokenBottles
	}
	if p.Note != nil {
		line.Note = strings.TrimSpace(*p.Note)
	}
	if line.Category != LossBroken {
		line.BrokenBottles = 0
	}
	line.BrokenBottles = ClampQuantity(line.BrokenBottles)
	r.Losses[itemID] = line
	return line
}

// ToggleFavorite flips the favorite flag of itemID and returns the new state.
func (r *DailyRecord) ToggleFavorite(itemID string) bool {
	r.ensureMaps()
	if r.Favorites[itemID] {
		delete(r.Favorites, itemID)
		return false
	}
	r.Favorites[itemID] = true
	return true
}

func (r DailyRecord) IsFavorite(itemID string) bool {
	return r.Favorites[itemID]
}

// Touched returns the ids with any sale quantity or any recorded loss.
func (r DailyRecord) Touched() map[string]bool {
	out := make(map[string]bool)
	for id, l := range r.Sales {
		if !l.IsZero() {
			out[id] = true
		}
	}
	for id, l := range r.Losses {
		if l.HasLoss() {
			out[id] = true
		}
	}
	return out
}

// Totals sums the sale lines (and broken bottles) of the record.
func (r DailyRecord) Totals() Totals {
	var t Totals
	for _, l := range r.Sales {
		t.Bottles += l.Bottles
		t.Glasses += l.Glasses
	}
	for _, l := range r.Losses {
		t.BrokenBottles += l.BrokenBottles
	}
	return t
}

// WithFavorites returns a copy of r carrying the favorites of other.
func (r DailyRecord) WithFavorites(other DailyRecord) DailyRecord {
	out := r.Clone()
	for id, fav := range other.Favorites {
		if fav {
			out.Favorites[id] = true
		}
	}
	return out
}
