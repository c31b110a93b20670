package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title    string
	bindings []key.Binding
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	groups := m.keys.helpGroups()
	sections := []helpSection{
		{title: "Navigation", bindings: groups[0]},
		{title: "Guests", bindings: groups[1]},
		{title: "General", bindings: groups[2]},
		{title: "Form", bindings: formHelp()},
	}

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	for i, s := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(s.title))
		b.WriteString("\n")
		for _, kb := range s.bindings {
			h := kb.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("Press any key to close"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		styles.Panel.Padding(1, 2).Render(b.String()))
}

func formHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "Next field")),
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "Toggle category")),
		key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "Choose category or RSVP")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "Save")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "Cancel")),
	}
}
