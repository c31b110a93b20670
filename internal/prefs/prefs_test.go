package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if p := Load(""); p != Default() {
		t.Fatalf("Load = %+v, want %+v", p, Default())
	}
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "potluck")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	body := "theme = \"Slate\"\nquery = \"  mochi \"\n"
	if err := os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load("")
	if p.Theme != "Slate" || p.Query != "mochi" {
		t.Fatalf("Load = %+v, want Slate/mochi", p)
	}
}

func TestSave_RoundTripsAndCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	want := Prefs{Theme: "Nord", Query: "dessert"}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if got := Load(path); got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
}

func TestLoad_DegradesToDefaults(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty theme", "theme = \"\"\n"},
		{"invalid toml", "not valid toml {{{\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prefs.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if p := Load(path); p.Theme != defaultTheme {
				t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
			}
		})
	}
}
