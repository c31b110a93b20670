package guest

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNewTemporaryID(t *testing.T) {
	a, b := NewTemporaryID(), NewTemporaryID()
	if a == b {
		t.Fatalf("NewTemporaryID returned duplicate %q", a)
	}
	if !a.IsTemporary() {
		t.Fatalf("IsTemporary(%q) = false, want true", a)
	}
	if ID("4f1c").IsTemporary() {
		t.Fatalf("IsTemporary on store id = true, want false")
	}
}

func TestDraft_NormalizeAndValidate(t *testing.T) {
	blank := "   "
	notes := "  vegan  "
	tests := []struct {
		name    string
		draft   Draft
		wantErr error
		check   func(t *testing.T, d Draft)
	}{
		{
			name:  "trims and defaults",
			draft: Draft{Name: " Dara ", Dish: " Strawberry mochi ", Notes: &notes},
			check: func(t *testing.T, d Draft) {
				if d.Name != "Dara" || d.Dish != "Strawberry mochi" {
					t.Fatalf("draft = %#v, want trimmed name and dish", d)
				}
				if d.RSVP != RSVPYes {
					t.Fatalf("RSVP = %q, want yes", d.RSVP)
				}
				if d.Notes == nil || *d.Notes != "vegan" {
					t.Fatalf("Notes = %v, want vegan", d.Notes)
				}
			},
		},
		{
			name:  "blank notes become absent",
			draft: Draft{Name: "Kiri", Dish: "Salad", Notes: &blank},
			check: func(t *testing.T, d Draft) {
				if d.Notes != nil {
					t.Fatalf("Notes = %q, want nil", *d.Notes)
				}
			},
		},
		{
			name:  "duplicate categories collapse",
			draft: Draft{Name: "Kiri", Dish: "Salad", Categories: []Category{"side", "Starter", "side"}},
			check: func(t *testing.T, d Draft) {
				want := []Category{CategorySide, CategoryStarter}
				if !reflect.DeepEqual(d.Categories, want) {
					t.Fatalf("Categories = %v, want %v", d.Categories, want)
				}
			},
		},
		{name: "empty name", draft: Draft{Name: "  ", Dish: "Salad"}, wantErr: ErrNameRequired},
		{name: "empty dish", draft: Draft{Name: "Kiri", Dish: ""}, wantErr: ErrDishRequired},
		{name: "unknown category", draft: Draft{Name: "Kiri", Dish: "Salad", Categories: []Category{"soup"}}, wantErr: ErrUnknownCategory},
		{name: "unknown rsvp", draft: Draft{Name: "Kiri", Dish: "Salad", RSVP: "perhaps"}, wantErr: ErrUnknownRSVP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.draft.Normalize()
			err := d.Validate()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			tt.check(t, d)
		})
	}
}

func TestNameTaken_CaseInsensitiveTrimmed(t *testing.T) {
	guests := []Guest{{ID: "a", Name: "Dara"}, {ID: "b", Name: "Kiri"}}

	if !NameTaken(guests, "  dARA ", "") {
		t.Fatalf("NameTaken(dARA) = false, want true")
	}
	if NameTaken(guests, "Dara", "a") {
		t.Fatalf("NameTaken should ignore the excepted record")
	}
	if NameTaken(guests, "Mo", "") {
		t.Fatalf("NameTaken(Mo) = true, want false")
	}
}

func TestPatch_ApplyLeavesOriginalUntouched(t *testing.T) {
	notes := "bring ice"
	orig := Guest{ID: "a", Name: "Dara", Dish: "Mochi", Categories: []Category{CategoryDessert}, RSVP: RSVPYes, Notes: &notes}

	got := Patch{}.WithRSVP(RSVPNo).WithCategories(CategoryDrink).WithNotes("").Apply(orig)

	if got.RSVP != RSVPNo || got.Notes != nil || !reflect.DeepEqual(got.Categories, []Category{CategoryDrink}) {
		t.Fatalf("Apply = %#v, want rsvp=no, drink, no notes", got)
	}
	if orig.RSVP != RSVPYes || orig.Notes == nil || orig.Categories[0] != CategoryDessert {
		t.Fatalf("original mutated: %#v", orig)
	}
}

func TestPatch_ValidateRejectsBlankName(t *testing.T) {
	p := Patch{}.WithName("   ").Normalize()
	if err := p.Validate(); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("Validate() = %v, want ErrNameRequired", err)
	}
}

func TestPatch_JSONSendsOnlySetFields(t *testing.T) {
	p := Patch{}.WithRSVP(RSVPMaybe).WithNotes("")
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"notes":null,"rsvp":"maybe"}` {
		t.Fatalf("Marshal = %s, want rsvp and null notes only", data)
	}

	var back Patch
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.RSVP == nil || *back.RSVP != RSVPMaybe || !back.ClearNotes || back.Name != nil {
		t.Fatalf("Unmarshal = %#v, want rsvp=maybe and ClearNotes", back)
	}
}

func TestPatch_UnmarshalRejectsUnknownField(t *testing.T) {
	var p Patch
	if err := json.Unmarshal([]byte(`{"id":"x"}`), &p); err == nil {
		t.Fatalf("Unmarshal returned nil error for id field")
	}
}

func TestDraft_GuestCopiesSlices(t *testing.T) {
	d := Draft{Name: "Dara", Dish: "Mochi", Categories: []Category{CategoryDessert}, RSVP: RSVPYes}
	g := d.Guest("tmp_1", time.Unix(10, 0))
	d.Categories[0] = CategoryMain
	if g.Categories[0] != CategoryDessert {
		t.Fatalf("Guest shares categories with draft")
	}
}

func TestCategory_Title(t *testing.T) {
	if got := CategoryDessert.Title(); got != "Dessert" {
		t.Fatalf("Title() = %q, want Dessert", got)
	}
}
