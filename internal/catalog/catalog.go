// Package catalog serves the curriculum texts learners can practise on.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/stemsi/bincan-backend/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var embeddedContent []byte

// ErrUnknownCategory is returned by Get for categories missing from the catalog.
var ErrUnknownCategory = errors.New("unknown category")

type yamlCatalog struct {
	Version    int                              `yaml:"version"`
	Categories map[model.Category]model.Content `yaml:"categories"`
}

// Catalog is an immutable set of curriculum texts keyed by category.
type Catalog struct {
	entries map[model.Category]model.Content
}

// Default parses the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(embeddedContent)
}

// Load reads the catalog from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML catalog data. Every entry must belong to a known
// category and carry non-empty content.
func Parse(data []byte) (*Catalog, error) {
	var raw yamlCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(raw.Categories) == 0 {
		return nil, errors.New("parse catalog: no categories")
	}

	entries := make(map[model.Category]model.Content, len(raw.Categories))
	for cat, c := range raw.Categories {
		if !cat.Valid() {
			return nil, fmt.Errorf("parse catalog: %w %q", ErrUnknownCategory, cat)
		}
		if c.Content == "" {
			return nil, fmt.Errorf("parse catalog: category %q has no content", cat)
		}
		c.Category = cat
		entries[cat] = c
	}
	return &Catalog{entries: entries}, nil
}

// Get returns the entry for cat.
func (c *Catalog) Get(cat model.Category) (model.Content, error) {
	e, ok := c.entries[cat]
	if !ok {
		return model.Content{}, ErrUnknownCategory
	}
	return e, nil
}

// All returns every entry in model.Categories order.
func (c *Catalog) All() []model.Content {
	out := make([]model.Content, 0, len(c.entries))
	for _, cat := range model.Categories {
		if e, ok := c.entries[cat]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Map returns the entries keyed by category.
func (c *Catalog) Map() map[model.Category]model.Content {
	out := make(map[model.Category]model.Content, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}
