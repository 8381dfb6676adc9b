// Package prefs persists parley's UI preferences in ~/.config/parley/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds cosmetic settings the TUI changes at runtime. Anything needed
// to reach the server lives in config.Config instead.
type Prefs struct {
	Theme string `toml:"theme"`
	// CompactChats renders the chat list one line per chat instead of two.
	CompactChats bool `toml:"compact_chats,omitempty"`
}

const (
	prefsLocation = "~/.config/parley/prefs.toml"
	defaultTheme  = "Whatsapp"
)

// DefaultPath returns the unexpanded default location.
func DefaultPath() string {
	return prefsLocation
}

func defaults() Prefs {
	return Prefs{Theme: defaultTheme}
}

// Load reads preferences from path, or the default location when path is
// blank. A missing file is not an error. An unreadable or malformed one
// returns the defaults along with the error so the caller can warn and go on.
func Load(path string) (Prefs, error) {
	file, err := locate(path)
	if err != nil {
		return defaults(), err
	}

	raw, err := os.ReadFile(file)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return defaults(), nil
	case err != nil:
		return defaults(), fmt.Errorf("read prefs: %w", err)
	}

	p := defaults()
	if err := toml.Unmarshal(raw, &p); err != nil {
		return defaults(), fmt.Errorf("parse prefs %s: %w", file, err)
	}
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	return p, nil
}

// Save writes p to path, creating the parent directory first.
func Save(path string, p Prefs) error {
	file, err := locate(path)
	if err != nil {
		return err
	}

	encoded, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	if err := os.WriteFile(file, encoded, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// locate turns path into an absolute file name, expanding a leading ~.
func locate(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = prefsLocation
	}
	if rest, ok := strings.CutPrefix(path, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("prefs path: %w", err)
		}
		path = filepath.Join(home, rest)
	}
	return filepath.Abs(path)
}
