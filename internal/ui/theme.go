package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/potluck/internal/guest"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	Background string
	Surface    string
	SurfaceAlt string

	SelectionBg   string
	SelectionText string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	RSVPColors map[guest.RSVP]string
}

// Styles contains pre-built Lipgloss styles for a theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style
	Panel    lipgloss.Style
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		SuccessText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		WarningText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		DangerText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
		Panel: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SurfaceAlt)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
	}
}

// RSVPColor returns the color for an answer, or Muted when unknown.
func (t Theme) RSVPColor(r guest.RSVP) string {
	if c, ok := t.RSVPColors[guest.RSVP(strings.ToLower(strings.TrimSpace(string(r))))]; ok {
		return c
	}
	return t.Muted
}

var themes = map[string]Theme{
	"Dracula": draculaTheme(),
	"Slate":   slateTheme(),
	"Nord":    nordTheme(),
}

var themeOrder = []string{"Dracula", "Slate", "Nord"}

// GetTheme returns a theme by name, defaulting to Dracula.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return draculaTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func draculaTheme() Theme {
	// https://draculatheme.com/spec
	return Theme{
		Name:          "Dracula",
		Background:    "#191A21",
		Surface:       "#282A36",
		SurfaceAlt:    "#21222C",
		SelectionBg:   "#44475A",
		SelectionText: "#F8F8F2",
		Text:          "#F8F8F2",
		Muted:         "#6272A4",
		Faint:         "#44475A",
		Accent:        "#BD93F9",
		Success:       "#50FA7B",
		Warning:       "#FFB86C",
		Danger:        "#FF5555",
		Info:          "#8BE9FD",
		RSVPColors: map[guest.RSVP]string{
			guest.RSVPYes:   "#50FA7B",
			guest.RSVPMaybe: "#F1FA8C",
			guest.RSVPNo:    "#FF5555",
		},
	}
}

func slateTheme() Theme {
	// Tailwind slate/sky
	return Theme{
		Name:          "Slate",
		Background:    "#020617",
		Surface:       "#0f172a",
		SurfaceAlt:    "#1e293b",
		SelectionBg:   "#0284c7",
		SelectionText: "#f8fafc",
		Text:          "#f1f5f9",
		Muted:         "#94a3b8",
		Faint:         "#64748b",
		Accent:        "#38bdf8",
		Success:       "#22c55e",
		Warning:       "#f59e0b",
		Danger:        "#ef4444",
		Info:          "#06b6d4",
		RSVPColors: map[guest.RSVP]string{
			guest.RSVPYes:   "#22c55e",
			guest.RSVPMaybe: "#eab308",
			guest.RSVPNo:    "#dc2626",
		},
	}
}

func nordTheme() Theme {
	// https://www.nordtheme.com/docs/colors-and-palettes
	return Theme{
		Name:          "Nord",
		Background:    "#242933",
		Surface:       "#2E3440",
		SurfaceAlt:    "#3B4252",
		SelectionBg:   "#4C566A",
		SelectionText: "#ECEFF4",
		Text:          "#ECEFF4",
		Muted:         "#7B88A1",
		Faint:         "#4C566A",
		Accent:        "#88C0D0",
		Success:       "#A3BE8C",
		Warning:       "#EBCB8B",
		Danger:        "#BF616A",
		Info:          "#81A1C1",
		RSVPColors: map[guest.RSVP]string{
			guest.RSVPYes:   "#A3BE8C",
			guest.RSVPMaybe: "#EBCB8B",
			guest.RSVPNo:    "#BF616A",
		},
	}
}

// WithBackground returns a copy of s whose text styles paint bg behind them.
func (s Styles) WithBackground(bg string) Styles {
	c := lipgloss.Color(bg)
	s.Text = s.Text.Background(c)
	s.MutedText = s.MutedText.Background(c)
	s.FaintText = s.FaintText.Background(c)
	s.AccentText = s.AccentText.Background(c)
	s.SuccessText = s.SuccessText.Background(c)
	s.WarningText = s.WarningText.Background(c)
	s.DangerText = s.DangerText.Background(c)
	s.Logo = s.Logo.Background(c)
	return s
}
