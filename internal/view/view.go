// Package view derives the guest list and RSVP statistics shown to the user.
// Everything here is a pure function of the records passed in.
package view

import (
	"math"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/five82/potluck/internal/guest"
)

// RSVPCounts tallies guests per RSVP value.
type RSVPCounts struct {
	Yes   int
	Maybe int
	No    int
}

// Total returns the number of guests counted.
func (c RSVPCounts) Total() int { return c.Yes + c.Maybe + c.No }

// Percentages is the RSVP split in whole percent. When any guest is counted
// the three values sum to 100.
type Percentages struct {
	Yes   int
	Maybe int
	No    int
}

// View is everything the list screen renders for one cache state and query.
type View struct {
	Query      string
	Filtered   []guest.Guest
	RSVP       RSVPCounts
	Categories map[guest.Category]int // every category present, zero when unused
	Percent    Percentages
	Total      int
}

// NewCollator returns a collator for locale, falling back to English when the
// tag does not parse.
func NewCollator(locale string) *collate.Collator {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	return collate.New(tag)
}

// Build computes the view of records for query. Counts cover every record;
// only Filtered honours the query. coll orders names and is not safe for
// concurrent use; nil uses English.
func Build(records []guest.Guest, query string, coll *collate.Collator) View {
	counts := CountRSVP(records)
	return View{
		Query:      strings.TrimSpace(query),
		Filtered:   Filter(records, query, coll),
		RSVP:       counts,
		Categories: CountCategories(records),
		Percent:    Percent(counts),
		Total:      len(records),
	}
}

// Filter returns records sorted by name, keeping those whose name, dish,
// categories or RSVP contain query. Matching is case-insensitive; a blank
// query keeps everything. Equal names are ordered by id.
func Filter(records []guest.Guest, query string, coll *collate.Collator) []guest.Guest {
	if coll == nil {
		coll = collate.New(language.English)
	}
	q := fold(strings.TrimSpace(query))

	out := make([]guest.Guest, 0, len(records))
	for _, g := range records {
		if q == "" || matches(g, q) {
			out = append(out, g.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b guest.Guest) int {
		if c := coll.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}

func matches(g guest.Guest, q string) bool {
	cats := make([]string, len(g.Categories))
	for i, c := range g.Categories {
		cats[i] = string(c)
	}
	for _, field := range []string{g.Name, g.Dish, strings.Join(cats, " "), string(g.RSVP)} {
		if strings.Contains(fold(field), q) {
			return true
		}
	}
	return false
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// CountRSVP tallies records by RSVP. Unknown values are not counted.
func CountRSVP(records []guest.Guest) RSVPCounts {
	var c RSVPCounts
	for _, g := range records {
		switch g.RSVP {
		case guest.RSVPYes:
			c.Yes++
		case guest.RSVPMaybe:
			c.Maybe++
		case guest.RSVPNo:
			c.No++
		}
	}
	return c
}

// CountCategories adds one to each category a record is tagged with.
func CountCategories(records []guest.Guest) map[guest.Category]int {
	out := make(map[guest.Category]int, len(guest.Categories))
	for _, c := range guest.Categories {
		out[c] = 0
	}
	for _, g := range records {
		for _, c := range g.Categories {
			if _, known := out[c]; known {
				out[c]++
			}
		}
	}
	return out
}

// Percent splits c into whole percentages. Yes and no are rounded; maybe
// takes the remainder so the three always add up to 100.
func Percent(c RSVPCounts) Percentages {
	total := c.Total()
	if total == 0 {
		return Percentages{}
	}
	yes := int(math.Round(100 * float64(c.Yes) / float64(total)))
	no := int(math.Round(100 * float64(c.No) / float64(total)))
	return Percentages{Yes: yes, No: no, Maybe: 100 - yes - no}
}
