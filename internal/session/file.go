// Package session implements a browser host backed by a YAML session file.
// It is what the CLI renders and watches, and it records applied styles so
// they can be written out as a stylesheet.
package session

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/tabtint/internal/browser"
	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/theme"
)

// File is the on-disk session format.
type File struct {
	CurrentTheme string      `yaml:"current_theme"`
	SystemThemes []ThemeSpec `yaml:"system_themes,omitempty"`
	UserThemes   []ThemeSpec `yaml:"user_themes,omitempty"`
	Tabs         []TabSpec   `yaml:"tabs"`
	Groups       []GroupSpec `yaml:"groups,omitempty"`
}

// ThemeSpec describes a theme with hex colours. Unset fields take the
// built-in dark theme's values.
type ThemeSpec struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name,omitempty"`
	Accent          string   `yaml:"accent,omitempty"`
	Background      string   `yaml:"background,omitempty"`
	Foreground      string   `yaml:"foreground,omitempty"`
	AccentFromPage  *bool    `yaml:"accent_from_page,omitempty"`
	TransparentTabs bool     `yaml:"transparent_tabs,omitempty"`
	SaturationLimit *float64 `yaml:"saturation_limit,omitempty"`
	AccentOnWindow  bool     `yaml:"accent_on_window,omitempty"`
}

// TabSpec describes one open tab.
type TabSpec struct {
	ID         int    `yaml:"id"`
	URL        string `yaml:"url"`
	Favicon    string `yaml:"favicon,omitempty"`
	Active     bool   `yaml:"active,omitempty"`
	ThemeColor string `yaml:"theme_color,omitempty"`

	// ExtData is raw extension JSON. When empty, Group and GroupActive are
	// encoded into it.
	ExtData     string `yaml:"ext_data,omitempty"`
	Group       string `yaml:"group,omitempty"`
	GroupActive bool   `yaml:"group_active,omitempty"`

	// Hidden tabs are members of a group view and get no view of their own.
	Hidden bool `yaml:"hidden,omitempty"`
}

// GroupSpec describes a stacked-tab view.
type GroupSpec struct {
	ID     string `yaml:"id"`
	Active bool   `yaml:"active,omitempty"`

	// Favicon defaults to the favicon of the group's resolved tab.
	Favicon string `yaml:"favicon,omitempty"`

	// Tabs lists member tab ids. When empty, tabs naming this group are members.
	Tabs []int `yaml:"tabs,omitempty"`
}

// ReadFile parses a session file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 - User-specified session path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return Parse(data)
}

// Parse parses session YAML.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}

	seen := make(map[int]bool, len(f.Tabs))
	for _, t := range f.Tabs {
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate tab id %d", t.ID)
		}
		seen[t.ID] = true
	}
	for _, g := range f.Groups {
		if g.ID == "" {
			return nil, fmt.Errorf("group without id")
		}
	}
	return &f, nil
}

// Theme converts the spec into a theme snapshot.
func (s ThemeSpec) Theme() (theme.Theme, error) {
	t := theme.DefaultDark()
	t.ID = s.ID
	t.Name = s.Name
	if t.Name == "" {
		t.Name = s.ID
	}

	for _, field := range []struct {
		name string
		hex  string
		dst  *colour.Color
	}{
		{"accent", s.Accent, &t.Accent},
		{"background", s.Background, &t.Background},
		{"foreground", s.Foreground, &t.Foreground},
	} {
		if field.hex == "" {
			continue
		}
		c, err := colour.ParseHex(field.hex)
		if err != nil {
			return theme.Theme{}, fmt.Errorf("theme %q %s: %w", s.ID, field.name, err)
		}
		*field.dst = c
	}

	if s.AccentFromPage != nil {
		t.AccentFromPage = *s.AccentFromPage
	}
	if s.SaturationLimit != nil {
		t.SaturationLimit = *s.SaturationLimit
	}
	t.TransparentTabs = s.TransparentTabs
	t.AccentOnWindow = s.AccentOnWindow
	return t, nil
}

// Tab converts the spec into the host's tab record.
func (s TabSpec) Tab() (browser.Tab, error) {
	ext := s.ExtData
	if ext == "" && s.Group != "" {
		data, err := json.Marshal(browser.Membership{Group: s.Group, GroupActive: s.GroupActive})
		if err != nil {
			return browser.Tab{}, fmt.Errorf("tab %d: failed to encode membership: %w", s.ID, err)
		}
		ext = string(data)
	}
	return browser.Tab{
		ID:         s.ID,
		URL:        s.URL,
		ThemeColor: s.ThemeColor,
		ExtData:    ext,
	}, nil
}

func convertThemes(specs []ThemeSpec) ([]theme.Theme, error) {
	themes := make([]theme.Theme, 0, len(specs))
	for _, s := range specs {
		t, err := s.Theme()
		if err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	return themes, nil
}
