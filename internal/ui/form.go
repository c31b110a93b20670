package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/potluck/internal/guest"
)

type formField int

const (
	fieldName formField = iota
	fieldDish
	fieldNotes
	fieldCategories
	fieldRSVP
	fieldCount
)

// guestForm edits a new or existing guest.
type guestForm struct {
	original  *guest.Guest // nil when adding
	inputs    [3]textinput.Model
	cats      map[guest.Category]bool
	catCursor int
	rsvp      guest.RSVP
	focus     formField
	err       string
}

// formValues is what the form currently holds, untrimmed.
type formValues struct {
	name       string
	dish       string
	notes      string
	categories []guest.Category
	rsvp       guest.RSVP
}

func newGuestForm(g *guest.Guest) (guestForm, tea.Cmd) {
	f := guestForm{
		cats: make(map[guest.Category]bool),
		rsvp: guest.RSVPYes,
	}
	placeholders := [3]string{"Name", "Dish", "Notes (optional)"}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 120
		in.Width = 40
		f.inputs[i] = in
	}
	if g != nil {
		orig := g.Clone()
		f.original = &orig
		f.inputs[fieldName].SetValue(g.Name)
		f.inputs[fieldDish].SetValue(g.Dish)
		f.inputs[fieldNotes].SetValue(g.NotesText())
		for _, c := range g.Categories {
			f.cats[c] = true
		}
		if g.RSVP.Valid() {
			f.rsvp = g.RSVP
		}
	}
	cmd := f.setFocus(fieldName)
	return f, cmd
}

func (f *guestForm) editing() bool {
	return f.original != nil
}

func (f *guestForm) setFocus(field formField) tea.Cmd {
	f.focus = field
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	if field < fieldCategories {
		return f.inputs[field].Focus()
	}
	return nil
}

func (f *guestForm) toggleCategory() {
	c := guest.Categories[f.catCursor]
	f.cats[c] = !f.cats[c]
}

func (f *guestForm) moveCategory(delta int) {
	n := len(guest.Categories)
	f.catCursor = (f.catCursor + delta + n) % n
}

func (f *guestForm) cycleRSVP(delta int) {
	i := slices.Index(guest.RSVPs, f.rsvp)
	n := len(guest.RSVPs)
	f.rsvp = guest.RSVPs[(i+delta+n)%n]
}

func (f *guestForm) values() formValues {
	v := formValues{
		name:  f.inputs[fieldName].Value(),
		dish:  f.inputs[fieldDish].Value(),
		notes: f.inputs[fieldNotes].Value(),
		rsvp:  f.rsvp,
	}
	for _, c := range guest.Categories {
		if f.cats[c] {
			v.categories = append(v.categories, c)
		}
	}
	return v
}

func (v formValues) draft() guest.Draft {
	notes := v.notes
	return guest.Draft{
		Name:       v.name,
		Dish:       v.dish,
		Categories: v.categories,
		RSVP:       v.rsvp,
		Notes:      &notes,
	}
}

// buildPatch returns a patch holding only the fields that differ from orig.
func buildPatch(orig guest.Guest, v formValues) guest.Patch {
	var p guest.Patch
	if name := strings.TrimSpace(v.name); name != orig.Name {
		p = p.WithName(name)
	}
	if dish := strings.TrimSpace(v.dish); dish != orig.Dish {
		p = p.WithDish(dish)
	}
	if !sameCategories(orig.Categories, v.categories) {
		p = p.WithCategories(v.categories...)
	}
	if v.rsvp != orig.RSVP {
		p = p.WithRSVP(v.rsvp)
	}
	if notes := strings.TrimSpace(v.notes); notes != orig.NotesText() {
		p = p.WithNotes(notes)
	}
	return p
}

func sameCategories(a, b []guest.Category) bool {
	if len(a) != len(b) {
		return false
	}
	for _, c := range a {
		if !slices.Contains(b, c) {
			return false
		}
	}
	return true
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.setStatus("Cancelled", false)
		return m, nil
	case "tab", "down":
		cmd := m.form.setFocus((m.form.focus + 1) % fieldCount)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.form.setFocus((m.form.focus + fieldCount - 1) % fieldCount)
		return m, cmd
	case "enter", "ctrl+s":
		return m.submitForm()
	}

	switch m.form.focus {
	case fieldCategories:
		switch msg.String() {
		case "left", "h":
			m.form.moveCategory(-1)
		case "right", "l":
			m.form.moveCategory(1)
		case " ", "space", "x":
			m.form.toggleCategory()
		}
		return m, nil
	case fieldRSVP:
		switch msg.String() {
		case "left", "h":
			m.form.cycleRSVP(-1)
		case "right", "l", " ", "space":
			m.form.cycleRSVP(1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	i := m.form.focus
	m.form.inputs[i], cmd = m.form.inputs[i].Update(msg)
	m.form.err = ""
	return m, cmd
}

// submitForm checks the form against the current snapshot and hands it to
// the engine. The engine validates again; this only gives earlier feedback.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	v := m.form.values()

	if !m.form.editing() {
		d := v.draft().Normalize()
		if err := d.Validate(); err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		if guest.NameTaken(m.snapshot.Records, d.Name, "") {
			m.form.err = guest.ErrNameTaken.Error()
			return m, nil
		}
		m.mode = modeList
		m.setStatus("Adding "+d.Name+"...", false)
		return m, createCmd(m.ctx, m.engine, d)
	}

	orig := *m.form.original
	p := buildPatch(orig, v).Normalize()
	if err := p.Validate(); err != nil {
		m.form.err = err.Error()
		return m, nil
	}
	if p.Name != nil && guest.NameTaken(m.snapshot.Records, *p.Name, orig.ID) {
		m.form.err = guest.ErrNameTaken.Error()
		return m, nil
	}
	m.mode = modeList
	if p.IsEmpty() {
		m.setStatus("No changes", false)
		return m, nil
	}
	m.setStatus("Saving "+orig.Name+"...", false)
	return m, updateCmd(m.ctx, m.engine, orig, p)
}

// renderForm renders the add/edit form.
func (m Model) renderForm() string {
	styles := m.theme.Styles()
	f := m.form

	title := "Add guest"
	if f.editing() {
		title = "Edit " + f.original.Name
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("\n\n")

	labels := [3]string{"Name", "Dish", "Notes"}
	for i, in := range f.inputs {
		b.WriteString(m.formLabel(labels[i], formField(i) == f.focus))
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	b.WriteString(m.formLabel("Categories", f.focus == fieldCategories))
	chips := make([]string, 0, len(guest.Categories))
	for i, c := range guest.Categories {
		mark := "[ ]"
		if f.cats[c] {
			mark = "[x]"
		}
		style := styles.MutedText
		if f.cats[c] {
			style = styles.Text
		}
		if f.focus == fieldCategories && i == f.catCursor {
			style = styles.Selected
		}
		chips = append(chips, style.Render(mark+" "+c.Title()))
	}
	b.WriteString(strings.Join(chips, "  "))
	b.WriteString("\n")

	b.WriteString(m.formLabel("RSVP", f.focus == fieldRSVP))
	for _, r := range guest.RSVPs {
		style := styles.FaintText
		if r == f.rsvp {
			style = styles.Text.Foreground(colorOf(m.theme.RSVPColor(r))).Bold(true)
		}
		b.WriteString(style.Render(string(r)))
		b.WriteString("  ")
	}
	b.WriteString("\n\n")

	if f.err != "" {
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("tab next field · space toggle · ←/→ choose · enter save · esc cancel"))
	return styles.Panel.Width(max(m.width, 1)).Render(b.String())
}

func (m Model) formLabel(label string, focused bool) string {
	styles := m.theme.Styles()
	style := styles.MutedText
	prefix := "  "
	if focused {
		style = styles.AccentText.Bold(true)
		prefix = "› "
	}
	return style.Render(padRight(prefix+label, 14))
}
