// Package prefs persists per-user display preferences in
// ~/.config/potluck/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds what the TUI restores on the next start.
type Prefs struct {
	Theme string `toml:"theme"`
	Query string `toml:"query"` // last search, restored into the filter box
}

const (
	defaultPrefsPath = "~/.config/potluck/prefs.toml"
	defaultTheme     = "Dracula"
)

// Default returns the preferences used when none are saved.
func Default() Prefs {
	return Prefs{Theme: defaultTheme}
}

// Load reads preferences from path, or the default location when empty.
// Any problem reading the file yields defaults.
func Load(path string) Prefs {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default()
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		return Default()
	}

	var p Prefs
	if err := toml.Unmarshal(bytes, &p); err != nil {
		return Default()
	}

	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.Query = strings.TrimSpace(p.Query)
	return p
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
