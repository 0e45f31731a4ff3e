package category

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultTable []byte

type fileEntry struct {
	Name  string   `yaml:"name"`
	Match []string `yaml:"match"`
}

type fileFormat struct {
	Categories []fileEntry `yaml:"categories"`
}

// Entry is one canonical category and the raw strings that imply it.
type Entry struct {
	Name  string
	match map[string]struct{}
}

// Matches reports whether raw implies this category.
func (e Entry) Matches(raw string) bool {
	_, ok := e.match[raw]
	return ok
}

// Table is an ordered, immutable category table.
type Table struct {
	entries []Entry
}

// Names returns the canonical names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of canonical categories.
func (t *Table) Len() int { return len(t.entries) }

// Default returns the embedded table.
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// Load reads a table from path, or returns the embedded table when path is empty.
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category table %s: %w", path, err)
	}
	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse category table %s: %w", path, err)
	}
	return table, nil
}

// Parse decodes a YAML table. Entries repeating a name are merged into the
// first entry with that name, keeping its position.
func Parse(data []byte) (*Table, error) {
	var raw fileFormat
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw.Categories) == 0 {
		return nil, fmt.Errorf("category table has no entries")
	}

	table := &Table{}
	index := make(map[string]int, len(raw.Categories))
	for i, item := range raw.Categories {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("categories[%d]: name is required", i)
		}
		pos, ok := index[name]
		if !ok {
			pos = len(table.entries)
			index[name] = pos
			table.entries = append(table.entries, Entry{Name: name, match: make(map[string]struct{})})
		}
		for _, m := range item.Match {
			if m = strings.TrimSpace(m); m != "" {
				table.entries[pos].match[m] = struct{}{}
			}
		}
	}
	return table, nil
}
