// Package aliases loads the synonym tables that feed attribute value mappings.
package aliases

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTables []byte

// Tables maps canonical values to the tokens users may type for them.
type Tables struct {
	Units        map[int][]string    `yaml:"units"`
	Characters   map[int][]string    `yaml:"characters"`
	Attributes   map[string][]string `yaml:"attributes"`
	EventTypes   map[string][]string `yaml:"event_types"`
	GachaTypes   map[string][]string `yaml:"gacha_types"`
	Difficulties map[int][]string    `yaml:"difficulties"`
}

// Default returns the tables compiled into the binary.
func Default() (*Tables, error) {
	return Parse(defaultTables)
}

// Load reads tables from path, or the compiled-in defaults when path is empty.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias tables: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML alias tables.
func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode alias tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate rejects a token that names two different canonical values of one table.
func (t *Tables) Validate() error {
	checks := []struct {
		name    string
		mapping func() (map[string]any, error)
	}{
		{"units", func() (map[string]any, error) { return invert(t.Units) }},
		{"characters", func() (map[string]any, error) { return invert(t.Characters) }},
		{"attributes", func() (map[string]any, error) { return invert(t.Attributes) }},
		{"event_types", func() (map[string]any, error) { return invert(t.EventTypes) }},
		{"gacha_types", func() (map[string]any, error) { return invert(t.GachaTypes) }},
		{"difficulties", func() (map[string]any, error) { return invert(t.Difficulties) }},
	}
	for _, c := range checks {
		if _, err := c.mapping(); err != nil {
			return fmt.Errorf("alias table %s: %w", c.name, err)
		}
	}
	return nil
}

func (t *Tables) UnitMapping() map[string]any       { return mustInvert(t.Units) }
func (t *Tables) CharacterMapping() map[string]any  { return mustInvert(t.Characters) }
func (t *Tables) AttributeMapping() map[string]any  { return mustInvert(t.Attributes) }
func (t *Tables) EventTypeMapping() map[string]any  { return mustInvert(t.EventTypes) }
func (t *Tables) GachaTypeMapping() map[string]any  { return mustInvert(t.GachaTypes) }
func (t *Tables) DifficultyMapping() map[string]any { return mustInvert(t.Difficulties) }

// UnitName returns the first alias of a unit, used as its display name.
func (t *Tables) UnitName(id int) string {
	return first(t.Units, id, strconv.Itoa(id))
}

// CharacterName returns the first alias of a character.
func (t *Tables) CharacterName(id int) string {
	return first(t.Characters, id, strconv.Itoa(id))
}

// DifficultyName returns the first alias of a chart difficulty.
func (t *Tables) DifficultyName(id int) string {
	return first(t.Difficulties, id, strconv.Itoa(id))
}

// DifficultyKeywords lists every difficulty token in a stable order.
func (t *Tables) DifficultyKeywords() []string {
	keys := make([]string, 0, len(t.Difficulties))
	for token := range mustInvert(t.Difficulties) {
		keys = append(keys, token)
	}
	sort.Strings(keys)
	return keys
}

func first[K comparable](m map[K][]string, key K, fallback string) string {
	if names := m[key]; len(names) > 0 {
		return names[0]
	}
	return fallback
}

func mustInvert[K comparable](m map[K][]string) map[string]any {
	out, _ := invert(m)
	return out
}

// invert turns canonical -> tokens into token -> canonical. The canonical key itself is a
// valid token for string tables.
func invert[K comparable](m map[K][]string) (map[string]any, error) {
	out := make(map[string]any)
	add := func(token string, canonical K) error {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			return nil
		}
		if existing, ok := out[token]; ok && existing != any(canonical) {
			return fmt.Errorf("token %q maps to both %v and %v", token, existing, canonical)
		}
		out[token] = canonical
		return nil
	}
	for canonical, tokens := range m {
		if s, ok := any(canonical).(string); ok {
			if err := add(s, canonical); err != nil {
				return nil, err
			}
		}
		for _, token := range tokens {
			if err := add(token, canonical); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
