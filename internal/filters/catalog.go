// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package filters

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Gengsu07/edaduckdb/internal/cache"
	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/database/query"
	"github.com/Gengsu07/edaduckdb/internal/logging"
	"github.com/Gengsu07/edaduckdb/internal/models"
	"github.com/Gengsu07/edaduckdb/internal/validation"
)

// DefaultOptionLimit caps the number of distinct values fetched per
// column by Refresh.
const DefaultOptionLimit = 1000

// Field is one filterable column.
type Field struct {
	Name    string
	Type    query.SemanticType
	Options []any
}

// OptionSource supplies distinct values for a column. *database.DB
// implements it.
type OptionSource interface {
	DistinctValues(ctx context.Context, column string, limit int) ([]any, error)
}

// Catalog is the set of columns clients may filter on. It is safe for
// concurrent use; Update swaps the field set atomically.
type Catalog struct {
	mu       sync.RWMutex
	fields   []Field
	index    map[string]int
	prefixes map[string]*cache.PrefixIndex

	lenient     bool
	cache       *cache.Cache
	optionLimit int
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLenientTypes drops columns with an unknown type instead of failing.
func WithLenientTypes() Option {
	return func(c *Catalog) { c.lenient = true }
}

// WithCache caches option lists fetched by Refresh.
func WithCache(ch *cache.Cache) Option {
	return func(c *Catalog) { c.cache = ch }
}

// WithOptionLimit sets how many distinct values Refresh fetches.
func WithOptionLimit(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.optionLimit = n
		}
	}
}

// New builds a catalog from option lists keyed by column and semantic
// type tags keyed by column. Every column in options must have a type.
// Columns with a type but no options are still filterable.
func New(options map[string][]any, types map[string]string, opts ...Option) (*Catalog, error) {
	c := &Catalog{optionLimit: DefaultOptionLimit}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Update(options, types); err != nil {
		return nil, err
	}
	return c, nil
}

// FromConfig builds a catalog from the filters and filters_types
// sections.
func FromConfig(cfg *config.Config, opts ...Option) (*Catalog, error) {
	if cfg.Query.LenientTypes {
		opts = append(opts, WithLenientTypes())
	}
	return New(cfg.Filters, cfg.FilterTypes, opts...)
}

// Update replaces the field set, e.g. after a config reload. On error
// the previous fields are kept.
func (c *Catalog) Update(options map[string][]any, types map[string]string) error {
	fields, err := c.buildFields(options, types)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(fields))
	prefixes := make(map[string]*cache.PrefixIndex)
	for i, f := range fields {
		index[f.Name] = i
		if len(f.Options) > 0 {
			prefixes[f.Name] = cache.NewPrefixIndex(f.Options)
		}
	}

	c.mu.Lock()
	c.fields = fields
	c.index = index
	c.prefixes = prefixes
	c.mu.Unlock()

	if c.cache != nil {
		c.cache.Clear()
	}
	return nil
}

func (c *Catalog) buildFields(options map[string][]any, types map[string]string) ([]Field, error) {
	for column := range options {
		if _, ok := types[column]; !ok {
			return nil, fmt.Errorf("filter %s has options but no type", column)
		}
	}

	fields := make([]Field, 0, len(types))
	for column, tag := range types {
		if !config.IsIdentifier(column) {
			return nil, fmt.Errorf("filter column %q is not a valid identifier", column)
		}
		typ, err := query.ParseSemanticType(tag)
		if err != nil {
			if c.lenient {
				logging.Warn().Str("column", column).Str("type", tag).Msg("Dropping filter with unsupported type")
				continue
			}
			return nil, fmt.Errorf("filter %s: %w", column, err)
		}
		fields = append(fields, Field{
			Name:    column,
			Type:    typ,
			Options: append([]any(nil), options[column]...),
		})
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields, nil
}

// Fields returns a copy of the fields sorted by name.
func (c *Catalog) Fields() []Field {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Field, len(c.fields))
	for i, f := range c.fields {
		f.Options = append([]any(nil), f.Options...)
		out[i] = f
	}
	return out
}

// Field returns the named field.
func (c *Catalog) Field(name string) (Field, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[name]
	if !ok {
		return Field{}, false
	}
	f := c.fields[i]
	f.Options = append([]any(nil), f.Options...)
	return f, true
}

// Len returns the number of fields.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fields)
}

// Refresh fills empty option lists of String fields from src. Lists are
// served from the cache when present. Failures for one column are
// logged and do not stop the others.
func (c *Catalog) Refresh(ctx context.Context, src OptionSource) error {
	var errs []error
	for _, f := range c.Fields() {
		if f.Type != query.String || len(f.Options) > 0 {
			continue
		}

		values, err := c.distinctValues(ctx, src, f.Name)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("column", f.Name).Msg("Failed to load filter options")
			errs = append(errs, err)
			continue
		}
		c.setOptions(f.Name, values)
	}
	return errors.Join(errs...)
}

func (c *Catalog) distinctValues(ctx context.Context, src OptionSource, column string) ([]any, error) {
	key := cache.GenerateKey("filter_options", map[string]any{"column": column, "limit": c.optionLimit})
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			if values, ok := v.([]any); ok {
				return values, nil
			}
		}
	}

	values, err := src.DistinctValues(ctx, column, c.optionLimit)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(key, values)
	}
	return values, nil
}

func (c *Catalog) setOptions(column string, values []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[column]; ok {
		c.fields[i].Options = append([]any(nil), values...)
		c.prefixes[column] = cache.NewPrefixIndex(values)
	}
}

// Suggest returns up to limit known options of column that start with
// prefix, case-insensitively. A field without options yields nil.
func (c *Catalog) Suggest(column, prefix string, limit int) ([]any, error) {
	c.mu.RLock()
	_, ok := c.index[column]
	idx := c.prefixes[column]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, column)
	}
	if idx == nil {
		return nil, nil
	}
	return idx.Match(prefix, limit), nil
}

// Response converts the catalog to the API representation.
func (c *Catalog) Response(table string) models.FiltersResponse {
	fields := c.Fields()
	out := models.FiltersResponse{Table: table, Fields: make([]models.FilterField, len(fields))}
	for i, f := range fields {
		options := f.Options
		if options == nil {
			options = []any{}
		}
		out.Fields[i] = models.FilterField{
			Name:      f.Name,
			Type:      typeName(f.Type),
			Widget:    widget(f.Type),
			Operators: operators(f.Type),
			Options:   options,
		}
	}
	return out
}

func typeName(t query.SemanticType) string {
	switch t {
	case query.String:
		return "String"
	case query.Integer:
		return "Integer"
	case query.Float:
		return "Float"
	case query.Decimal:
		return "Decimal"
	case query.DateTime:
		return "DateTime"
	default:
		return t.String()
	}
}

func widget(t query.SemanticType) string {
	switch {
	case t == query.String:
		return "multiselect"
	case t == query.DateTime:
		return "daterange"
	default:
		return "number"
	}
}

func operators(t query.SemanticType) []string {
	if t == query.String {
		return nil
	}
	return append([]string(nil), validation.ComparisonOperators...)
}
