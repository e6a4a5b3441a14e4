// Package catalog holds the immutable, ordered set of dimensions that
// combinations are generated from.
package catalog

import (
	"strings"

	"github.com/pkg/errors"

	"combitest/internal/domain"
)

var (
	// ErrInvalidCatalog is returned when a catalog fails validation.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrUnknownDimension is returned when a dimension lookup misses.
	ErrUnknownDimension = errors.New("unknown dimension")
)

// Catalog is an immutable, ordered collection of dimensions.
type Catalog struct {
	dims  []domain.Dimension
	index map[string]int
}

// New validates dims and returns a catalog holding copies of them.
// Dimension names must be unique and non-empty and may not contain ':' or
// '|', the separators of combination keys. Each dimension needs at least one
// value, its values must be unique and may not contain '|'.
func New(dims ...domain.Dimension) (*Catalog, error) {
	c := &Catalog{
		dims:  make([]domain.Dimension, 0, len(dims)),
		index: make(map[string]int, len(dims)),
	}
	for i, d := range dims {
		if d.Name == "" {
			return nil, errors.Wrapf(ErrInvalidCatalog, "dimension %d has no name", i)
		}
		if strings.ContainsAny(d.Name, ":|") {
			return nil, errors.Wrapf(ErrInvalidCatalog, "dimension name %q contains ':' or '|'", d.Name)
		}
		if _, dup := c.index[d.Name]; dup {
			return nil, errors.Wrapf(ErrInvalidCatalog, "duplicate dimension %q", d.Name)
		}
		if len(d.Values) == 0 {
			return nil, errors.Wrapf(ErrInvalidCatalog, "dimension %q has no values", d.Name)
		}
		seen := make(map[domain.Value]struct{}, len(d.Values))
		for _, v := range d.Values {
			if strings.Contains(string(v), "|") {
				return nil, errors.Wrapf(ErrInvalidCatalog, "dimension %q value %q contains '|'", d.Name, v)
			}
			if _, dup := seen[v]; dup {
				return nil, errors.Wrapf(ErrInvalidCatalog, "dimension %q repeats value %q", d.Name, v)
			}
			seen[v] = struct{}{}
		}
		c.index[d.Name] = len(c.dims)
		c.dims = append(c.dims, clone(d))
	}
	return c, nil
}

// Len returns the number of dimensions.
func (c *Catalog) Len() int {
	return len(c.dims)
}

// Dimension looks a dimension up by name.
func (c *Catalog) Dimension(name string) (domain.Dimension, error) {
	i, ok := c.index[name]
	if !ok {
		return domain.Dimension{}, errors.Wrapf(ErrUnknownDimension, "%q", name)
	}
	return clone(c.dims[i]), nil
}

// Dimensions returns every dimension in catalog order.
func (c *Catalog) Dimensions() []domain.Dimension {
	out := make([]domain.Dimension, len(c.dims))
	for i, d := range c.dims {
		out[i] = clone(d)
	}
	return out
}

// Names returns the dimension names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.dims))
	for i, d := range c.dims {
		names[i] = d.Name
	}
	return names
}

// Contains reports whether every pair of comb names a dimension and value
// of this catalog.
func (c *Catalog) Contains(comb domain.Combination) bool {
	for _, p := range comb.Pairs() {
		i, ok := c.index[p.Dimension]
		if !ok {
			return false
		}
		found := false
		for _, v := range c.dims[i].Values {
			if v == p.Value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func clone(d domain.Dimension) domain.Dimension {
	d.Values = append([]domain.Value(nil), d.Values...)
	return d
}
