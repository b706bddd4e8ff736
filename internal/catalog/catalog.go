// Package catalog lists the calculators the site offers, grouped by category.
//
// The catalog is read from an embedded YAML file once at startup and never
// changes afterwards. Entries without a kind are shown as "coming soon" and
// have no calculator page.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Entry is a single calculator listing.
type Entry struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Kind        string `yaml:"kind,omitempty" json:"kind,omitempty"`
	Featured    bool   `yaml:"featured,omitempty" json:"featured,omitempty"`
}

// Available reports whether the entry is backed by a calculator.
func (e Entry) Available() bool {
	return e.Kind != ""
}

// Category groups related calculators.
type Category struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Calculators []Entry `yaml:"calculators" json:"calculators"`
}

// Catalog is the validated, read-only set of categories.
type Catalog struct {
	categories []Category
	byID       map[string]Entry
	featured   []Entry
}

type document struct {
	Categories []Category `yaml:"categories"`
}

// Load parses the embedded catalog. When kinds is non-empty every entry kind
// must be one of them.
func Load(kinds ...string) (*Catalog, error) {
	return Parse(embedded, kinds...)
}

// Parse decodes and validates a catalog document. Unknown YAML fields are
// rejected so typos surface at startup.
func Parse(data []byte, kinds ...string) (*Catalog, error) {
	var doc document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := validate(doc, kinds); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	c := &Catalog{
		categories: doc.Categories,
		byID:       make(map[string]Entry),
	}
	for _, cat := range doc.Categories {
		for _, e := range cat.Calculators {
			if _, seen := c.byID[e.ID]; seen {
				continue
			}
			c.byID[e.ID] = e
			if e.Featured {
				c.featured = append(c.featured, e)
			}
		}
	}
	return c, nil
}

func validate(doc document, kinds []string) error {
	if len(doc.Categories) == 0 {
		return errors.New("at least one category is required")
	}
	known := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		known[k] = true
	}

	var problems []string
	categoryIDs := make(map[string]bool)
	entries := make(map[string]Entry)
	for i, cat := range doc.Categories {
		switch {
		case cat.ID == "":
			problems = append(problems, fmt.Sprintf("categories[%d]: id is required", i))
		case categoryIDs[cat.ID]:
			problems = append(problems, fmt.Sprintf("categories[%d]: duplicate id %q", i, cat.ID))
		}
		categoryIDs[cat.ID] = true
		if cat.Name == "" {
			problems = append(problems, fmt.Sprintf("category %q: name is required", cat.ID))
		}

		for j, e := range cat.Calculators {
			where := fmt.Sprintf("category %q calculators[%d]", cat.ID, j)
			if e.ID == "" || strings.ContainsAny(e.ID, "/ ") {
				problems = append(problems, fmt.Sprintf("%s: id %q must be a non-empty path segment", where, e.ID))
			}
			if e.Name == "" {
				problems = append(problems, fmt.Sprintf("%s: name is required", where))
			}
			if e.Kind != "" && len(known) > 0 && !known[e.Kind] {
				problems = append(problems, fmt.Sprintf("%s: unknown kind %q", where, e.Kind))
			}
			if prev, ok := entries[e.ID]; ok && prev.Kind != e.Kind {
				problems = append(problems, fmt.Sprintf("%s: id %q listed again with kind %q, first listed as %q", where, e.ID, e.Kind, prev.Kind))
			}
			if _, ok := entries[e.ID]; !ok {
				entries[e.ID] = e
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Categories returns the categories in file order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		cat.Calculators = append([]Entry(nil), cat.Calculators...)
		out[i] = cat
	}
	return out
}

// Find returns the first entry listed under id.
func (c *Catalog) Find(id string) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Featured returns the entries highlighted on the home page.
func (c *Catalog) Featured() []Entry {
	return append([]Entry(nil), c.featured...)
}

// Kinds returns the distinct calculator kinds referenced by the catalog.
func (c *Catalog) Kinds() []string {
	seen := make(map[string]bool)
	var kinds []string
	for _, cat := range c.categories {
		for _, e := range cat.Calculators {
			if e.Kind != "" && !seen[e.Kind] {
				seen[e.Kind] = true
				kinds = append(kinds, e.Kind)
			}
		}
	}
	return kinds
}
