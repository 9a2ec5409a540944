// Package catalog holds the brand and model catalog with new-car base prices.
// The built-in catalog is embedded; an override file may replace it.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/carwise/internal/domain/vehicle"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Catalog is an immutable brand to model mapping. It is safe for concurrent use.
type Catalog struct {
	brands []string
	models map[string][]string
	// prices is keyed by brand, then lower-case model name.
	prices map[string]map[string]float64
	// canonical maps lower-case brand names to their catalog spelling.
	canonical map[string]string
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(embedded, false)
}

// Load reads an override catalog from path. Files ending in .json are
// decoded as JSON, everything else as YAML.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadCatalog, err)
	}
	return Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

// Parse decodes a catalog document in any of the shapes accepted by Normalize.
func Parse(data []byte, isJSON bool) (*Catalog, error) {
	raw := map[string]any{}
	var err error
	if isJSON {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	c := FromRaw(raw)
	if len(c.brands) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// FromRaw builds a catalog from a decoded payload. Entries that carry
// numeric values contribute base prices.
func FromRaw(raw map[string]any) *Catalog {
	c := &Catalog{
		models:    make(map[string][]string),
		prices:    make(map[string]map[string]float64),
		canonical: make(map[string]string),
	}
	for name, v := range raw {
		brand := vehicle.CanonicalBrand(name)
		if brand == "" {
			continue
		}
		models, prices := normalizeBrand(v)
		if len(models) == 0 {
			continue
		}
		if _, seen := c.models[brand]; !seen {
			c.brands = append(c.brands, brand)
		}
		c.models[brand] = mergeModels(c.models[brand], models)
		if len(prices) > 0 {
			if c.prices[brand] == nil {
				c.prices[brand] = make(map[string]float64, len(prices))
			}
			for m, p := range prices {
				c.prices[brand][strings.ToLower(m)] = p
			}
		}
		c.canonical[strings.ToLower(brand)] = brand
	}
	sort.Strings(c.brands)
	return c
}

// Brands returns the brand names in alphabetical order.
func (c *Catalog) Brands() []string {
	return append([]string(nil), c.brands...)
}

// Models returns the models of brand, or nil when the brand is unknown.
func (c *Catalog) Models(brand string) []string {
	m := c.models[c.Canonical(brand)]
	if m == nil {
		return nil
	}
	return append([]string(nil), m...)
}

// Canonical returns the catalog spelling of brand. Brands missing from the
// catalog are canonicalised by the shared alias table.
func (c *Catalog) Canonical(brand string) string {
	b := vehicle.CanonicalBrand(brand)
	if name, ok := c.canonical[strings.ToLower(b)]; ok {
		return name
	}
	return b
}

// BasePrice returns the base price of (brand, model). Model matching is
// case-insensitive.
func (c *Catalog) BasePrice(brand, model string) (float64, bool) {
	p, ok := c.prices[c.Canonical(brand)][strings.ToLower(strings.TrimSpace(model))]
	return p, ok
}

// Snapshot returns the brand to models mapping served by GET /api/car-data.
func (c *Catalog) Snapshot() map[string][]string {
	out := make(map[string][]string, len(c.models))
	for b, m := range c.models {
		out[b] = append([]string(nil), m...)
	}
	return out
}

// Normalize converts an upstream car-data payload into brand to model list.
// Per brand it accepts an array of model names, an object with a nested
// "models" field, or a flat object keyed by model name. Array order is kept,
// key sets are sorted, blanks and duplicates are dropped.
func Normalize(raw map[string]any) map[string][]string {
	out := make(map[string][]string, len(raw))
	for name, v := range raw {
		brand := strings.TrimSpace(name)
		if brand == "" {
			continue
		}
		models, _ := normalizeBrand(v)
		if len(models) == 0 {
			continue
		}
		out[brand] = mergeModels(out[brand], models)
	}
	return out
}

func normalizeBrand(v any) ([]string, map[string]float64) {
	switch t := v.(type) {
	case []any:
		models := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				models = append(models, s)
			}
		}
		return dedupe(models), nil
	case map[string]any:
		if nested, ok := t["models"]; ok {
			return normalizeBrand(nested)
		}
		keys := make([]string, 0, len(t))
		prices := make(map[string]float64)
		for k, val := range t {
			k = strings.TrimSpace(k)
			keys = append(keys, k)
			if p, ok := toFloat(val); ok && k != "" {
				prices[k] = p
			}
		}
		sort.Strings(keys)
		return dedupe(keys), prices
	default:
		return nil, nil
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func mergeModels(existing, more []string) []string {
	if len(existing) == 0 {
		return more
	}
	return dedupe(append(existing, more...))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
