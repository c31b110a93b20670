package view

import (
	"reflect"
	"testing"

	"github.com/five82/potluck/internal/cache"
	"github.com/five82/potluck/internal/guest"
)

func names(records []guest.Guest) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestFilter_MatchesDish(t *testing.T) {
	records := []guest.Guest{
		{ID: "1", Name: "Dara", Dish: "Strawberry mochi"},
		{ID: "2", Name: "Kiri", Dish: "Salad"},
	}

	got := Filter(records, "mochi", nil)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("Filter(mochi) = %v, want only Dara", names(got))
	}
}

func TestFilter_Fields(t *testing.T) {
	records := []guest.Guest{
		{ID: "1", Name: "Dara", Dish: "Mochi", Categories: []guest.Category{guest.CategoryDessert, guest.CategoryDrink}, RSVP: guest.RSVPYes},
		{ID: "2", Name: "Kiri", Dish: "Salad", Categories: []guest.Category{guest.CategorySide}, RSVP: guest.RSVPMaybe},
		{ID: "3", Name: "Mo", Dish: "Lemonade", Categories: []guest.Category{guest.CategoryDrink}, RSVP: guest.RSVPNo},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Dara", "Kiri", "Mo"}},
		{"   ", []string{"Dara", "Kiri", "Mo"}},
		{"KIRI", []string{"Kiri"}},
		{"  salad ", []string{"Kiri"}},
		{"drink", []string{"Dara", "Mo"}},
		{"dessert drink", []string{"Dara"}},
		{"maybe", []string{"Kiri"}},
		{"no", []string{"Mo"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := names(Filter(records, tt.query, nil)); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFilter_SortsByNameThenID(t *testing.T) {
	records := []guest.Guest{
		{ID: "b", Name: "zoe"},
		{ID: "c", Name: "Émile"},
		{ID: "z", Name: "Ana"},
		{ID: "a", Name: "Ana"},
		{ID: "d", Name: "bo"},
	}

	got := Filter(records, "", NewCollator("en"))
	var order []guest.ID
	for _, g := range got {
		order = append(order, g.ID)
	}
	want := []guest.ID{"a", "z", "d", "c", "b"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestFilter_DoesNotAliasInput(t *testing.T) {
	records := []guest.Guest{{ID: "1", Name: "Dara", Categories: []guest.Category{guest.CategoryMain}}}
	got := Filter(records, "", nil)
	got[0].Categories[0] = guest.CategoryOther
	if records[0].Categories[0] != guest.CategoryMain {
		t.Fatalf("Filter result shares category slice with input")
	}
}

func TestCountCategories(t *testing.T) {
	records := []guest.Guest{
		{ID: "1", Categories: []guest.Category{guest.CategoryStarter, guest.CategoryDrink}},
	}

	got := CountCategories(records)
	want := map[guest.Category]int{
		guest.CategoryStarter: 1,
		guest.CategoryMain:    0,
		guest.CategorySide:    0,
		guest.CategoryDessert: 0,
		guest.CategoryDrink:   1,
		guest.CategoryOther:   0,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CountCategories = %v, want %v", got, want)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name   string
		counts RSVPCounts
		want   Percentages
	}{
		{"empty", RSVPCounts{}, Percentages{}},
		{"all yes", RSVPCounts{Yes: 4}, Percentages{Yes: 100}},
		{"thirds", RSVPCounts{Yes: 1, Maybe: 1, No: 1}, Percentages{Yes: 33, Maybe: 34, No: 33}},
		{"rounding", RSVPCounts{Yes: 2, Maybe: 1, No: 4}, Percentages{Yes: 29, Maybe: 14, No: 57}},
		{"half", RSVPCounts{Yes: 1, No: 1}, Percentages{Yes: 50, No: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.counts); got != tt.want {
				t.Fatalf("Percent(%+v) = %+v, want %+v", tt.counts, got, tt.want)
			}
		})
	}
}

func TestPercent_SumsTo100(t *testing.T) {
	for yes := 0; yes <= 12; yes++ {
		for maybe := 0; maybe <= 12; maybe++ {
			for no := 0; no <= 12; no++ {
				c := RSVPCounts{Yes: yes, Maybe: maybe, No: no}
				p := Percent(c)
				sum := p.Yes + p.Maybe + p.No
				if c.Total() == 0 {
					if p != (Percentages{}) {
						t.Fatalf("Percent(%+v) = %+v, want zeros", c, p)
					}
					continue
				}
				if sum != 100 {
					t.Fatalf("Percent(%+v) = %+v, sums to %d", c, p, sum)
				}
			}
		}
	}
}

func TestBuild_CountsIgnoreQuery(t *testing.T) {
	records := []guest.Guest{
		{ID: "1", Name: "Dara", Dish: "Mochi", RSVP: guest.RSVPYes, Categories: []guest.Category{guest.CategoryDessert}},
		{ID: "2", Name: "Kiri", Dish: "Salad", RSVP: guest.RSVPNo},
	}

	v := Build(records, " mochi ", nil)
	if v.Query != "mochi" {
		t.Fatalf("Query = %q, want mochi", v.Query)
	}
	if len(v.Filtered) != 1 || v.Total != 2 {
		t.Fatalf("Filtered = %d, Total = %d; want 1 and 2", len(v.Filtered), v.Total)
	}
	if v.RSVP != (RSVPCounts{Yes: 1, No: 1}) {
		t.Fatalf("RSVP = %+v, want yes=1 no=1", v.RSVP)
	}
	if v.Percent != (Percentages{Yes: 50, No: 50}) {
		t.Fatalf("Percent = %+v, want 50/0/50", v.Percent)
	}
	if v.Categories[guest.CategoryDessert] != 1 {
		t.Fatalf("dessert count = %d, want 1", v.Categories[guest.CategoryDessert])
	}
}

func TestMemo_RebuildsOnVersionOrQueryChange(t *testing.T) {
	m := NewMemo("en")
	snap := cache.Snapshot{Version: 1, Records: []guest.Guest{{ID: "1", Name: "Dara"}}}

	first := m.View(snap, "")
	if len(first.Filtered) != 1 {
		t.Fatalf("Filtered = %d, want 1", len(first.Filtered))
	}

	// Same version: records are assumed unchanged.
	stale := cache.Snapshot{Version: 1}
	if got := m.View(stale, ""); len(got.Filtered) != 1 {
		t.Fatalf("View rebuilt for unchanged version")
	}

	if got := m.View(cache.Snapshot{Version: 2}, ""); len(got.Filtered) != 0 {
		t.Fatalf("View not rebuilt for new version")
	}
	if got := m.View(snap, "zzz"); len(got.Filtered) != 0 {
		t.Fatalf("View not rebuilt for new query")
	}
}
