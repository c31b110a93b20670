package guest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Draft is the payload for a new guest. The store assigns id and created_at.
type Draft struct {
	Name       string     `json:"name"`
	Dish       string     `json:"dish"`
	Categories []Category `json:"categories"`
	RSVP       RSVP       `json:"rsvp"`
	Notes      *string    `json:"notes"`
}

// Normalize trims text fields, drops blank notes, removes duplicate
// categories and defaults an empty RSVP to yes.
func (d Draft) Normalize() Draft {
	out := Draft{
		Name:       strings.TrimSpace(d.Name),
		Dish:       strings.TrimSpace(d.Dish),
		Categories: normalizeCategories(d.Categories),
		RSVP:       RSVP(strings.ToLower(strings.TrimSpace(string(d.RSVP)))),
		Notes:      normalizeNotes(d.Notes),
	}
	if out.RSVP == "" {
		out.RSVP = RSVPYes
	}
	return out
}

// Validate checks a normalized draft. It does not check name uniqueness,
// which depends on the current record set.
func (d Draft) Validate() error {
	if d.Name == "" {
		return ErrNameRequired
	}
	if d.Dish == "" {
		return ErrDishRequired
	}
	if err := validateCategories(d.Categories); err != nil {
		return err
	}
	if !d.RSVP.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRSVP, d.RSVP)
	}
	return nil
}

// Guest materializes the draft as a record.
func (d Draft) Guest(id ID, createdAt time.Time) Guest {
	g := Guest{
		ID:         id,
		Name:       d.Name,
		Dish:       d.Dish,
		Categories: d.Categories,
		RSVP:       d.RSVP,
		Notes:      d.Notes,
		CreatedAt:  createdAt,
	}
	return g.Clone()
}

// Patch lists the fields of a guest an update may change. Nil fields are left
// untouched. ClearNotes removes the notes and takes precedence over Notes.
type Patch struct {
	Name       *string
	Dish       *string
	Categories *[]Category
	RSVP       *RSVP
	Notes      *string
	ClearNotes bool
}

// WithName returns a copy of p that renames the guest.
func (p Patch) WithName(name string) Patch {
	p.Name = &name
	return p
}

// WithDish returns a copy of p that changes the dish.
func (p Patch) WithDish(dish string) Patch {
	p.Dish = &dish
	return p
}

// WithCategories returns a copy of p that replaces the category set.
func (p Patch) WithCategories(cats ...Category) Patch {
	dup := append([]Category(nil), cats...)
	p.Categories = &dup
	return p
}

// WithRSVP returns a copy of p that changes the answer.
func (p Patch) WithRSVP(r RSVP) Patch {
	p.RSVP = &r
	return p
}

// WithNotes returns a copy of p that sets the notes; blank notes clear them.
func (p Patch) WithNotes(notes string) Patch {
	if strings.TrimSpace(notes) == "" {
		p.Notes = nil
		p.ClearNotes = true
		return p
	}
	p.Notes = &notes
	p.ClearNotes = false
	return p
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Dish == nil && p.Categories == nil && p.RSVP == nil && p.Notes == nil && !p.ClearNotes
}

// Normalize applies the same trimming rules as Draft.Normalize to set fields.
func (p Patch) Normalize() Patch {
	out := Patch{ClearNotes: p.ClearNotes}
	if p.Name != nil {
		v := strings.TrimSpace(*p.Name)
		out.Name = &v
	}
	if p.Dish != nil {
		v := strings.TrimSpace(*p.Dish)
		out.Dish = &v
	}
	if p.Categories != nil {
		v := normalizeCategories(*p.Categories)
		out.Categories = &v
	}
	if p.RSVP != nil {
		v := RSVP(strings.ToLower(strings.TrimSpace(string(*p.RSVP))))
		out.RSVP = &v
	}
	if p.Notes != nil && !p.ClearNotes {
		out.Notes = normalizeNotes(p.Notes)
		if out.Notes == nil {
			out.ClearNotes = true
		}
	}
	return out
}

// Validate checks a normalized patch.
func (p Patch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return ErrNameRequired
	}
	if p.Dish != nil && *p.Dish == "" {
		return ErrDishRequired
	}
	if p.Categories != nil {
		if err := validateCategories(*p.Categories); err != nil {
			return err
		}
	}
	if p.RSVP != nil && !p.RSVP.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRSVP, *p.RSVP)
	}
	return nil
}

// Apply returns g with the patch applied. g is not modified.
func (p Patch) Apply(g Guest) Guest {
	out := g.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Dish != nil {
		out.Dish = *p.Dish
	}
	if p.Categories != nil {
		out.Categories = append([]Category(nil), (*p.Categories)...)
	}
	if p.RSVP != nil {
		out.RSVP = *p.RSVP
	}
	switch {
	case p.ClearNotes:
		out.Notes = nil
	case p.Notes != nil:
		notes := *p.Notes
		out.Notes = &notes
	}
	return out
}

// MarshalJSON emits only the fields the patch sets. Cleared notes are sent
// as an explicit null.
func (p Patch) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, 5)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Dish != nil {
		fields["dish"] = *p.Dish
	}
	if p.Categories != nil {
		cats := *p.Categories
		if cats == nil {
			cats = []Category{}
		}
		fields["categories"] = cats
	}
	if p.RSVP != nil {
		fields["rsvp"] = *p.RSVP
	}
	switch {
	case p.ClearNotes:
		fields["notes"] = nil
	case p.Notes != nil:
		fields["notes"] = *p.Notes
	}
	return json.Marshal(fields)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Patch{}
	for key, value := range raw {
		var err error
		switch key {
		case "name":
			err = decodeInto(value, &p.Name)
		case "dish":
			err = decodeInto(value, &p.Dish)
		case "categories":
			var cats []Category
			if err = json.Unmarshal(value, &cats); err == nil {
				p.Categories = &cats
			}
		case "rsvp":
			err = decodeInto(value, &p.RSVP)
		case "notes":
			if string(value) == "null" {
				p.ClearNotes = true
				continue
			}
			err = decodeInto(value, &p.Notes)
		default:
			return fmt.Errorf("unknown patch field %q", key)
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
	}
	return nil
}

func decodeInto[T any](value json.RawMessage, dest **T) error {
	var v T
	if err := json.Unmarshal(value, &v); err != nil {
		return err
	}
	*dest = &v
	return nil
}
