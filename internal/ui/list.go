package ui

import (
	"fmt"
	"strings"

	"github.com/five82/potluck/internal/guest"
	"github.com/five82/potluck/internal/view"
)

// column widths; notes take what is left
const (
	colMarker = 2
	colName   = 20
	colDish   = 22
	colCats   = 24
	colRSVP   = 7
)

// renderStats renders the per-category counts.
func (m Model) renderStats(v view.View) string {
	styles := m.theme.Styles()
	parts := make([]string, 0, len(guest.Categories))
	for _, c := range guest.Categories {
		n := v.Categories[c]
		style := styles.FaintText
		if n > 0 {
			style = styles.Text
		}
		parts = append(parts, styles.MutedText.Render(c.Title())+" "+style.Render(fmt.Sprintf("%d", n)))
	}
	return styles.Panel.Width(max(m.width, 1)).Render(strings.Join(parts, "   "))
}

// renderList renders the column titles and up to height guest rows, scrolled
// so the selection stays visible.
func (m Model) renderList(v view.View, height int) string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.MutedText.Bold(true).Render(m.formatRow("", "NAME", "DISH", "CATEGORIES", "RSVP", "NOTES")))

	rows := v.Filtered
	if len(rows) == 0 {
		b.WriteString("\n")
		msg := "No guests yet. Press a to add one."
		if v.Query != "" {
			msg = fmt.Sprintf("No guests match %q.", v.Query)
		}
		if m.snapshot.IsOffline() && !m.snapshot.Loaded {
			msg = "Waiting for the guest list..."
		}
		b.WriteString(styles.FaintText.Render(msg))
		return b.String()
	}

	start := 0
	if m.selected >= height {
		start = m.selected - height + 1
	}
	end := min(len(rows), start+height)

	for i := start; i < end; i++ {
		g := rows[i]
		b.WriteString("\n")
		b.WriteString(m.renderRow(g, i == m.selected))
	}
	return b.String()
}

func (m Model) renderRow(g guest.Guest, selected bool) string {
	styles := m.theme.Styles()

	marker := ""
	if g.ID.IsTemporary() || (m.engine != nil && m.engine.IsPending(g.ID)) {
		marker = "…"
	}
	line := m.formatRow(marker, g.Name, g.Dish, categoryLabels(g.Categories), string(g.RSVP), g.NotesText())

	if selected {
		return styles.Selected.Width(max(m.width, 1)).Render(line)
	}
	if marker != "" {
		return styles.MutedText.Render(line)
	}
	// RSVP column gets its own color.
	head := colMarker + colName + colDish + colCats
	runes := []rune(line)
	if len(runes) < head+colRSVP {
		return styles.Text.Render(line)
	}
	rsvp := styles.Text.Foreground(colorOf(m.theme.RSVPColor(g.RSVP)))
	return styles.Text.Render(string(runes[:head])) +
		rsvp.Render(string(runes[head:head+colRSVP])) +
		styles.Text.Render(string(runes[head+colRSVP:]))
}

func (m Model) formatRow(marker, name, dish, cats, rsvp, notes string) string {
	notesWidth := max(0, m.width-colMarker-colName-colDish-colCats-colRSVP)
	return padRight(marker, colMarker) +
		padRight(name, colName) +
		padRight(dish, colDish) +
		padRight(cats, colCats) +
		padRight(rsvp, colRSVP) +
		truncate(notes, notesWidth)
}

func categoryLabels(cats []guest.Category) string {
	labels := make([]string, 0, len(cats))
	for _, c := range cats {
		labels = append(labels, c.Title())
	}
	return strings.Join(labels, ", ")
}
