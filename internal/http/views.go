package http

import (
	"enoteca/internal/core"
	"enoteca/internal/services"
)

type (
	pageView struct {
		Date          string
		Today         string
		PrevURL       string
		NextURL       string
		TodayURL      string
		SalesURL      string
		LossURL       string
		Step          string
		IsLoss        bool
		IsToday       bool
		Query         string
		TouchedOnly   bool
		FavoritesOnly bool
		List          listView
		Totals        totalsView
		Recent        []recentView
	}

	listView struct {
		Date         string
		Step         string
		IsLoss       bool
		Rows         []rowView
		TouchedCount int
		ItemCount    int
		Shown        int
	}

	rowView struct {
		Date       string
		Step       string
		IsLoss     bool
		ID         string
		Name       string
		Bottles    int
		Glasses    int
		Broken     int
		Category   string
		IsBroken   bool
		Note       string
		Favorite   bool
		Touched    bool
		Categories []categoryOption
	}

	categoryOption struct {
		Value    string
		Label    string
		Selected bool
	}

	totalsView struct {
		Date    string
		Bottles int
		Glasses int
		Broken  int
		Touched int
		Items   int
	}

	recentView struct {
		Date    string
		URL     string
		Current bool
	}
)

func newPageView(page services.Page, step core.Step, opts core.ListOptions, recent []core.DateKey) pageView {
	today := core.Today()
	v := pageView{
		Date:          page.Date.String(),
		Today:         today.String(),
		PrevURL:       pageURL(page.Date.AddDays(-1), step, opts),
		NextURL:       pageURL(page.Date.AddDays(1), step, opts),
		TodayURL:      pageURL(today, step, opts),
		SalesURL:      pageURL(page.Date, core.StepSales, opts),
		LossURL:       pageURL(page.Date, core.StepLoss, opts),
		Step:          step.String(),
		IsLoss:        step == core.StepLoss,
		IsToday:       page.Date == today,
		Query:         opts.Query,
		TouchedOnly:   opts.TouchedOnly,
		FavoritesOnly: opts.FavoritesOnly,
		List:          newListView(page, step),
		Totals:        newTotalsView(page),
	}
	for _, d := range recent {
		v.Recent = append(v.Recent, recentView{
			Date:    d.String(),
			URL:     pageURL(d, step, opts),
			Current: d == page.Date,
		})
	}
	return v
}

func newListView(page services.Page, step core.Step) listView {
	v := listView{
		Date:         page.Date.String(),
		Step:         step.String(),
		IsLoss:       step == core.StepLoss,
		TouchedCount: page.TouchedCount,
		ItemCount:    page.ItemCount,
		Shown:        len(page.Rows),
	}
	for _, row := range page.Rows {
		v.Rows = append(v.Rows, newRowView(page.Date, step, row))
	}
	return v
}

func newRowView(date core.DateKey, step core.Step, row core.ItemRow) rowView {
	category := row.Loss.Category
	if category == "" {
		category = core.LossNone
	}
	v := rowView{
		Date:     date.String(),
		Step:     step.String(),
		IsLoss:   step == core.StepLoss,
		ID:       row.Item.ID,
		Name:     row.Item.Name,
		Bottles:  row.Sale.Bottles,
		Glasses:  row.Sale.Glasses,
		Broken:   row.Loss.BrokenBottles,
		Category: category.String(),
		IsBroken: category == core.LossBroken,
		Note:     row.Loss.Note,
		Favorite: row.Favorite,
		Touched:  row.Touched,
	}
	for _, c := range core.LossCategories() {
		v.Categories = append(v.Categories, categoryOption{
			Value:    c.String(),
			Label:    c.Label(),
			Selected: c == category,
		})
	}
	return v
}

func newTotalsView(page services.Page) totalsView {
	return totalsView{
		Date:    page.Date.String(),
		Bottles: page.Totals.Bottles,
		Glasses: page.Totals.Glasses,
		Broken:  page.Totals.BrokenBottles,
		Touched: page.TouchedCount,
		Items:   page.ItemCount,
	}
}
