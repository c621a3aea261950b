// Package prefs keeps the display toggles (theme and mute) across runs.
//
// Prefs are a separate file from the config because the display rewrites
// them whenever a toggle changes. A damaged prefs file never stops startup:
// Load hands back defaults together with the reason the file was ignored.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/battlewatch/internal/config"
)

// Prefs is what the display persists.
type Prefs struct {
	Theme string `toml:"theme"`
	Muted bool   `toml:"muted"`
}

const (
	defaultPrefsPath = "~/.config/battlewatch/prefs.toml"
	defaultTheme     = "Nightfox"
)

// ErrIgnored wraps the reason an existing prefs file was not used.
var ErrIgnored = errors.New("prefs file ignored")

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the prefs used when no file exists.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme}
}

// Load reads prefs from path, or the default path when empty. The returned
// Prefs are always usable. A missing file is not an error; an unreadable or
// malformed one returns defaults and an error wrapping ErrIgnored.
func Load(path string) (Prefs, error) {
	resolved, err := config.ExpandPath(orDefault(path))
	if err != nil {
		return Defaults(), fmt.Errorf("%w: %v", ErrIgnored, err)
	}

	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return Defaults(), nil
	case err != nil:
		return Defaults(), fmt.Errorf("%w: %v", ErrIgnored, err)
	}

	p := Defaults()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Defaults(), fmt.Errorf("%w: %s: %v", ErrIgnored, resolved, err)
	}
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	return p, nil
}

// Save writes p to path, or the default path when empty. The file is
// replaced in one rename so a crash mid-write leaves the old prefs intact.
func Save(path string, p Prefs) error {
	resolved, err := config.ExpandPath(orDefault(path))
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func orDefault(path string) string {
	if strings.TrimSpace(path) == "" {
		return defaultPrefsPath
	}
	return path
}
