package ui

import (
	"testing"

	"github.com/five82/potluck/internal/guest"
)

func TestBuildPatch(t *testing.T) {
	notes := "bring ice"
	orig := guest.Guest{
		ID:         "g1",
		Name:       "Ana",
		Dish:       "Soup",
		Categories: []guest.Category{guest.CategoryStarter, guest.CategoryMain},
		RSVP:       guest.RSVPYes,
		Notes:      &notes,
	}
	same := formValues{
		name:       "Ana",
		dish:       "Soup",
		notes:      "bring ice",
		categories: []guest.Category{guest.CategoryMain, guest.CategoryStarter},
		rsvp:       guest.RSVPYes,
	}

	t.Run("unchanged", func(t *testing.T) {
		if p := buildPatch(orig, same); !p.IsEmpty() {
			t.Fatalf("buildPatch = %+v, want empty", p)
		}
	})

	t.Run("whitespace only", func(t *testing.T) {
		v := same
		v.name = "  Ana "
		v.notes = "bring ice\n"
		if p := buildPatch(orig, v); !p.IsEmpty() {
			t.Fatalf("buildPatch = %+v, want empty", p)
		}
	})

	t.Run("rsvp", func(t *testing.T) {
		v := same
		v.rsvp = guest.RSVPMaybe
		p := buildPatch(orig, v)
		if p.RSVP == nil || *p.RSVP != guest.RSVPMaybe {
			t.Fatalf("RSVP = %v, want maybe", p.RSVP)
		}
		if p.Name != nil || p.Categories != nil {
			t.Fatalf("patch = %+v, want only rsvp", p)
		}
	})

	t.Run("categories", func(t *testing.T) {
		v := same
		v.categories = []guest.Category{guest.CategoryStarter}
		p := buildPatch(orig, v)
		if p.Categories == nil || len(*p.Categories) != 1 || (*p.Categories)[0] != guest.CategoryStarter {
			t.Fatalf("Categories = %v, want [starter]", p.Categories)
		}
	})

	t.Run("clear notes", func(t *testing.T) {
		v := same
		v.notes = "   "
		p := buildPatch(orig, v)
		if !p.ClearNotes || p.Notes != nil {
			t.Fatalf("patch = %+v, want ClearNotes", p)
		}
	})
}

func TestGuestFormPrefill(t *testing.T) {
	g := guest.Guest{
		ID:         "g1",
		Name:       "Ana",
		Dish:       "Soup",
		Categories: []guest.Category{guest.CategoryDrink},
		RSVP:       guest.RSVPNo,
	}
	f, _ := newGuestForm(&g)
	if !f.editing() {
		t.Fatalf("editing() = false, want true")
	}
	v := f.values()
	if v.name != "Ana" || v.dish != "Soup" || v.notes != "" || v.rsvp != guest.RSVPNo {
		t.Fatalf("values = %+v", v)
	}
	if len(v.categories) != 1 || v.categories[0] != guest.CategoryDrink {
		t.Fatalf("categories = %v, want [drink]", v.categories)
	}

	g.Name = "Changed"
	if f.original.Name != "Ana" {
		t.Fatalf("form aliases the edited guest")
	}
}

func TestGuestFormCycles(t *testing.T) {
	f, _ := newGuestForm(nil)
	if f.rsvp != guest.RSVPYes {
		t.Fatalf("default rsvp = %q, want yes", f.rsvp)
	}
	f.cycleRSVP(-1)
	if f.rsvp != guest.RSVPNo {
		t.Fatalf("rsvp after back = %q, want no", f.rsvp)
	}
	f.moveCategory(-1)
	f.toggleCategory()
	if v := f.values(); len(v.categories) != 1 || v.categories[0] != guest.CategoryOther {
		t.Fatalf("categories = %v, want [other]", v.categories)
	}
}
