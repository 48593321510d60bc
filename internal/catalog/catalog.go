// Package catalog supplies round words by category.
//
// A Catalog is immutable once built and safe for concurrent use.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/scythe504/undercover-backend/internal"
	"github.com/scythe504/undercover-backend/internal/utils"
)

var ErrEmptyCatalog = errors.New("catalog has no words")

type Catalog struct {
	categories []internal.Category
	byID       map[string]int
	defaultID  string
	intn       func(int) int
}

type Option func(*Catalog)

// WithDefault sets the fallback category for unknown ids.
func WithDefault(id string) Option {
	return func(c *Catalog) { c.defaultID = id }
}

func WithIntN(intn func(int) int) Option {
	return func(c *Catalog) { c.intn = intn }
}

// New builds a catalog. Categories without words are dropped. If the requested
// default category is missing the first category becomes the default.
func New(categories []internal.Category, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		byID:      make(map[string]int),
		defaultID: internal.DefaultCategory,
		intn:      rand.IntN,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, cat := range categories {
		words := utils.SanitizeWords(cat.Words)
		if cat.ID == "" || cat.ID == internal.CustomCategory || len(words) == 0 {
			continue
		}
		if pos, ok := c.byID[cat.ID]; ok {
			c.categories[pos].Words = utils.SanitizeWords(append(c.categories[pos].Words, words...))
			continue
		}
		name := cat.Name
		if name == "" {
			name = cat.ID
		}
		c.byID[cat.ID] = len(c.categories)
		c.categories = append(c.categories, internal.Category{ID: cat.ID, Name: name, Words: words})
	}

	if len(c.categories) == 0 {
		return nil, ErrEmptyCatalog
	}
	if _, ok := c.byID[c.defaultID]; !ok {
		c.defaultID = c.categories[0].ID
	}
	return c, nil
}

// PickWord returns a uniformly random word from category, falling back to the
// default category when the id is unknown.
func (c *Catalog) PickWord(category string) string {
	pos, ok := c.byID[category]
	if !ok {
		pos = c.byID[c.defaultID]
	}
	return utils.PickRandom(c.categories[pos].Words, c.intn)
}

func (c *Catalog) Has(category string) bool {
	_, ok := c.byID[category]
	return ok
}

func (c *Catalog) Default() string {
	return c.defaultID
}

// Categories returns copies in catalog order.
func (c *Catalog) Categories() []internal.Category {
	out := make([]internal.Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = internal.Category{ID: cat.ID, Name: cat.Name, Words: slices.Clone(cat.Words)}
	}
	return out
}

// =============================================================================
// SOURCES
// =============================================================================

func FromCSV(path string, opts ...Option) (*Catalog, error) {
	categories, err := utils.ReadCsvFile(path)
	if err != nil {
		return nil, err
	}
	c, err := New(categories, opts...)
	if err != nil {
		return nil, fmt.Errorf("catalog from %s: %w", path, err)
	}
	return c, nil
}

// Source lists stored categories with their words.
type Source interface {
	ListCategories(ctx context.Context) ([]internal.Category, error)
}

// Load reads every category from src once and serves them from memory.
func Load(ctx context.Context, src Source, opts ...Option) (*Catalog, error) {
	categories, err := src.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return New(categories, opts...)
}
