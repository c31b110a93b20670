// Package guest defines the shared attendee record and the typed inputs used
// to create and modify it.
package guest

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ID identifies a guest. Store-assigned ids are opaque; ids minted locally for
// not-yet-confirmed inserts carry the temporary prefix.
type ID string

const temporaryPrefix = "tmp_"

// NewTemporaryID returns a unique client-side placeholder id.
func NewTemporaryID() ID {
	return ID(temporaryPrefix + uuid.NewString())
}

// IsTemporary reports whether the id was minted locally.
func (id ID) IsTemporary() bool {
	return strings.HasPrefix(string(id), temporaryPrefix)
}

// Category tags the kind of dish a guest brings.
type Category string

const (
	CategoryStarter Category = "starter"
	CategoryMain    Category = "main"
	CategorySide    Category = "side"
	CategoryDessert Category = "dessert"
	CategoryDrink   Category = "drink"
	CategoryOther   Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryStarter,
	CategoryMain,
	CategorySide,
	CategoryDessert,
	CategoryDrink,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Title returns the display label, e.g. "Dessert".
func (c Category) Title() string {
	return cases.Title(language.English).String(string(c))
}

// RSVP is a guest's attendance answer.
type RSVP string

const (
	RSVPYes   RSVP = "yes"
	RSVPMaybe RSVP = "maybe"
	RSVPNo    RSVP = "no"
)

// RSVPs lists every answer in display order.
var RSVPs = []RSVP{RSVPYes, RSVPMaybe, RSVPNo}

// Valid reports whether r is a known answer.
func (r RSVP) Valid() bool {
	return slices.Contains(RSVPs, r)
}

var (
	ErrNameRequired    = errors.New("name is required")
	ErrDishRequired    = errors.New("dish is required")
	ErrNameTaken       = errors.New("name already taken")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownRSVP     = errors.New("unknown rsvp")
)

// Guest is one attendee and the dish they contribute.
type Guest struct {
	ID         ID         `json:"id"`
	Name       string     `json:"name"`
	Dish       string     `json:"dish"`
	Categories []Category `json:"categories"`
	RSVP       RSVP       `json:"rsvp"`
	Notes      *string    `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Clone returns a deep copy so callers can mutate the result freely.
func (g Guest) Clone() Guest {
	dup := g
	dup.Categories = slices.Clone(g.Categories)
	if g.Notes != nil {
		notes := *g.Notes
		dup.Notes = &notes
	}
	return dup
}

// HasCategory reports whether the guest is tagged with c.
func (g Guest) HasCategory(c Category) bool {
	return slices.Contains(g.Categories, c)
}

// NotesText returns the notes or "" when absent.
func (g Guest) NotesText() string {
	if g.Notes == nil {
		return ""
	}
	return *g.Notes
}

// NameKey is the comparison key for name uniqueness: trimmed and case-folded.
// A Caser is stateful, so each call builds its own.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// NameTaken reports whether any guest other than except already uses name.
func NameTaken(guests []Guest, name string, except ID) bool {
	key := NameKey(name)
	if key == "" {
		return false
	}
	for _, g := range guests {
		if g.ID == except {
			continue
		}
		if NameKey(g.Name) == key {
			return true
		}
	}
	return false
}

func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeCategories(in []Category) []Category {
	out := make([]Category, 0, len(in))
	for _, c := range in {
		c = Category(strings.ToLower(strings.TrimSpace(string(c))))
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func validateCategories(cats []Category) error {
	for _, c := range cats {
		if !c.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
	}
	return nil
}
