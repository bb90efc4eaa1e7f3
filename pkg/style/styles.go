// Package style holds the terminal styles used by ksmm's console output.
//
// Styles are declared in the embedded styles.yaml by semantic name
// (Header, Success, Error, Path, ...) and built into lipgloss styles at
// init. Unknown names render text unchanged.
package style

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef is an adaptive color in styles.yaml
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is a style in styles.yaml
type StyleDef struct {
	Bold        bool   `yaml:"bold,omitempty"`
	Italic      bool   `yaml:"italic,omitempty"`
	Foreground  string `yaml:"foreground,omitempty"`
	PaddingLeft int    `yaml:"paddingLeft,omitempty"`
}

// Config is the parsed styles file
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

//go:embed styles.yaml
var embeddedStyles []byte

var registry = map[string]lipgloss.Style{}

func init() {
	// a broken embedded file leaves every style rendering plain text
	_ = LoadStylesFromData(embeddedStyles)
}

// LoadStylesFromData replaces the registry with the styles in data. On a
// parse error the registry is left as it was.
func LoadStylesFromData(data []byte) error {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse styles data: %w", err)
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	loaded := make(map[string]lipgloss.Style, len(cfg.Styles))
	for name, def := range cfg.Styles {
		loaded[name] = buildStyle(def, colors)
	}
	registry = loaded
	return nil
}

func buildStyle(def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	s := lipgloss.NewStyle()
	if def.Bold {
		s = s.Bold(true)
	}
	if def.Italic {
		s = s.Italic(true)
	}
	if color, ok := colors[def.Foreground]; ok {
		s = s.Foreground(color)
	}
	if def.PaddingLeft > 0 {
		s = s.PaddingLeft(def.PaddingLeft)
	}
	return s
}

// Get returns the named style
func Get(name string) (lipgloss.Style, bool) {
	s, ok := registry[name]
	return s, ok
}

// Render applies the named style to text
func Render(name, text string) string {
	s, ok := registry[name]
	if !ok {
		return text
	}
	return s.Render(text)
}
