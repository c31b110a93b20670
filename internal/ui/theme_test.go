package ui

import (
	"testing"

	"github.com/five82/potluck/internal/guest"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Dracula" || names[1] != "Slate" || names[2] != "Nord" {
		t.Fatalf("ThemeNames() = %v, want [Dracula Slate Nord]", names)
	}
}

func TestNextTheme(t *testing.T) {
	cases := map[string]string{
		"Dracula": "Slate",
		"Slate":   "Nord",
		"Nord":    "Dracula",
		"Unknown": "Dracula",
	}
	for in, want := range cases {
		if got := NextTheme(in); got != want {
			t.Fatalf("NextTheme(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestGetThemeFallback(t *testing.T) {
	if got := GetTheme("Nord").Name; got != "Nord" {
		t.Fatalf("GetTheme(Nord).Name = %q, want Nord", got)
	}
	if got := GetTheme("Unknown").Name; got != "Dracula" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Dracula (fallback)", got)
	}
}

func TestRSVPColor(t *testing.T) {
	th := GetTheme("Dracula")
	if got := th.RSVPColor(" YES "); got != th.RSVPColors[guest.RSVPYes] {
		t.Fatalf("RSVPColor = %q, want %q", got, th.RSVPColors[guest.RSVPYes])
	}
	if got := th.RSVPColor("later"); got != th.Muted {
		t.Fatalf("RSVPColor unknown = %q, want %q", got, th.Muted)
	}
}
