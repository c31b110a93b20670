package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/potluck/internal/guest"
	"github.com/five82/potluck/internal/view"
)

// renderMain renders header, command bar, body and status line.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	if m.mode == modeForm {
		b.WriteString(m.renderForm())
		return b.String()
	}

	if m.showLogs {
		b.WriteString(m.renderLogs())
		b.WriteString("\n")
		b.WriteString(m.renderStatusLine())
		return b.String()
	}

	v := m.currentView()
	b.WriteString(m.renderStats(v))
	b.WriteString("\n")
	b.WriteString(m.renderList(v, m.listHeight()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	return b.String()
}

// listHeight is the number of guest rows that fit between the bars.
func (m Model) listHeight() int {
	// header, command bar, stats, column titles, status line
	return max(1, m.height-5)
}

// renderHeader renders the top bar: sync state, totals and RSVP split.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{bg.Render("potluck", styles.Logo)}

	snap := m.snapshot
	switch {
	case snap.IsOffline():
		parts = append(parts,
			bg.Render("● "+classifyConnectionError(snap.LastError), styles.DangerText),
			bg.Render("Retrying...", styles.WarningText.Bold(true)))
	case !snap.Loaded:
		parts = append(parts, bg.Render("Connecting...", styles.WarningText.Bold(true)))
	default:
		parts = append(parts, bg.Render("● LIVE", styles.SuccessText))
	}

	if snap.Loaded {
		v := m.currentView()
		parts = append(parts,
			bg.Render("Guests:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", v.Total), styles.Text))
		parts = append(parts, m.renderRSVPSplit(v, styles, bg))
	}

	if m.pending > 0 {
		parts = append(parts,
			bg.Render("Saving:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", m.pending), styles.WarningText))
	}

	if ts := formatTimestamp(snap.LastUpdated, time.Now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

func (m Model) renderRSVPSplit(v view.View, styles Styles, bg BgStyle) string {
	counts := map[guest.RSVP]int{
		guest.RSVPYes:   v.RSVP.Yes,
		guest.RSVPMaybe: v.RSVP.Maybe,
		guest.RSVPNo:    v.RSVP.No,
	}
	pct := map[guest.RSVP]int{
		guest.RSVPYes:   v.Percent.Yes,
		guest.RSVPMaybe: v.Percent.Maybe,
		guest.RSVPNo:    v.Percent.No,
	}
	segs := make([]string, 0, len(guest.RSVPs))
	for _, r := range guest.RSVPs {
		style := styles.Text.Foreground(colorOf(m.theme.RSVPColor(r)))
		segs = append(segs, bg.Render(fmt.Sprintf("%s %d (%d%%)", r, counts[r], pct[r]), style))
	}
	return bg.Join(segs, "  ")
}

// formatTimestamp formats the last successful refresh relative to now.
func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	out := t.Format("15:04:05")
	switch since := now.Sub(t); {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}

// renderCommandBar renders the key hints for the current mode.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.mode {
	case modeSearch:
		commands = []cmd{{"enter", "Keep filter"}, {"esc", "Clear"}}
	case modeForm:
		commands = []cmd{{"tab", "Next"}, {"space", "Toggle"}, {"enter", "Save"}, {"esc", "Cancel"}}
	case modeConfirm:
		commands = []cmd{{"y", "Remove"}, {"any", "Cancel"}}
	default:
		commands = []cmd{
			{"a", "Add"},
			{"e", "Edit"},
			{"d", "Remove"},
			{"/", "Search"},
			{"r", "Refresh"},
			{"L", "Activity"},
			{"j/k", "Navigate"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.mode == modeList && m.query != "" {
		segments = append(segments, bg.Render("/"+truncate(m.query, 18), styles.AccentText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// renderStatusLine shows the search box, the remove prompt or the last
// status message.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	line := lipgloss.NewStyle().Width(m.width)

	switch {
	case m.mode == modeSearch:
		return line.Render(m.search.View())
	case m.mode == modeConfirm:
		return line.Render(styles.WarningText.Bold(true).Render(
			fmt.Sprintf("Remove %s? (y/N)", m.confirm.Name)))
	case m.status == "":
		return line.Render("")
	case m.statusIsErr:
		return line.Render(styles.DangerText.Render(m.status))
	default:
		return line.Render(styles.MutedText.Render(m.status))
	}
}
