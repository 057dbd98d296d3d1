package core

import "testing"

var demoItems = []Item{
	{ID: "VR-AMA", Name: "Amarone della Valpolicella"},
	{ID: "PI-BAR", Name: "Barolo"},
	{ID: "TO-CHI", Name: "chianti classico"},
	{ID: "SI-ETN", Name: "Etna Rosso"},
	{ID: "FR-CHA", Name: "Champagne Brut"},
}

func ids(rows []ItemRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Item.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListItemsSortsFavoritesThenName(t *testing.T) {
	r := NewDailyRecord("2026-10-14")
	r.ToggleFavorite("SI-ETN")
	r.ToggleFavorite("PI-BAR")

	got := ids(ListItems(demoItems, r, ListOptions{}))
	want := []string{"PI-BAR", "SI-ETN", "VR-AMA", "FR-CHA", "TO-CHI"}
	if !equalIDs(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestListItemsTouchedOnly(t *testing.T) {
	r := NewDailyRecord("2026-10-14")
	r.ApplySale("PI-BAR", SalePatch{Glasses: intp(1)})
	r.ApplySale("VR-AMA", SalePatch{Bottles: intp(0)})
	r.ApplyLoss("TO-CHI", LossPatch{Category: catp(LossBroken), BrokenBottles: intp(1)})
	r.ApplyLoss("SI-ETN", LossPatch{Category: catp(LossNone)})

	rows := ListItems(demoItems, r, ListOptions{TouchedOnly: true})
	got := ids(rows)
	want := []string{"PI-BAR", "TO-CHI"}
	if !equalIDs(got, want) {
		t.Fatalf("touched = %v, want %v", got, want)
	}
	touched := r.Touched()
	if len(rows) != len(touched) {
		t.Fatalf("touched filter size %d, touched set size %d", len(rows), len(touched))
	}
	for _, row := range rows {
		if !row.Touched || !touched[row.Item.ID] {
			t.Fatalf("row %s not touched", row.Item.ID)
		}
	}
}

func TestListItemsFavoritesOnly(t *testing.T) {
	r := NewDailyRecord("2026-10-14")
	r.ToggleFavorite("FR-CHA")
	got := ids(ListItems(demoItems, r, ListOptions{FavoritesOnly: true}))
	if !equalIDs(got, []string{"FR-CHA"}) {
		t.Fatalf("favorites = %v", got)
	}
}

func TestListItemsSearch(t *testing.T) {
	r := NewDailyRecord("2026-10-14")
	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"VR-AMA", "PI-BAR", "FR-CHA", "TO-CHI", "SI-ETN"}},
		{"barolo", []string{"PI-BAR"}},
		{"BAROLO", []string{"PI-BAR"}},
		{"chi", []string{"TO-CHI"}},
		{"CHIANTI", []string{"TO-CHI"}},
		{"to-", []string{"TO-CHI"}},
		{"  etn ", []string{"SI-ETN"}},
		{"cha", []string{"FR-CHA"}},
		{"zzz", []string{}},
	}
	for _, tc := range cases {
		got := ids(ListItems(demoItems, r, ListOptions{Query: tc.query}))
		if !equalIDs(got, tc.want) {
			t.Fatalf("query %q = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestListItemsCombinedFilters(t *testing.T) {
	r := NewDailyRecord("2026-10-14")
	r.ToggleFavorite("PI-BAR")
	r.ToggleFavorite("VR-AMA")
	r.ApplySale("PI-BAR", SalePatch{Bottles: intp(1)})

	got := ids(ListItems(demoItems, r, ListOptions{TouchedOnly: true, FavoritesOnly: true, Query: "bar"}))
	if !equalIDs(got, []string{"PI-BAR"}) {
		t.Fatalf("combined = %v", got)
	}
}
