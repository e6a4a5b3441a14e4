package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// Value is an opaque tag identifying one value of a dimension.
type Value string

// Dimension is a named axis of variation with an ordered set of values.
type Dimension struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Values      []Value `json:"values" yaml:"values"`
}

// Pair binds one value to one dimension.
type Pair struct {
	Dimension string `json:"dimension"`
	Value     Value  `json:"value"`
}

// String renders the pair as "dimension:value".
func (p Pair) String() string {
	return p.Dimension + ":" + string(p.Value)
}

// Combination assigns exactly one value to each of a set of distinct
// dimensions. The zero value is the empty combination. Pairs are kept
// sorted by dimension name so equal mappings compare equal.
type Combination struct {
	pairs []Pair
}

// NewCombination builds a combination from a dimension to value mapping.
func NewCombination(values map[string]Value) Combination {
	pairs := make([]Pair, 0, len(values))
	for dim, v := range values {
		pairs = append(pairs, Pair{Dimension: dim, Value: v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Dimension < pairs[j].Dimension })
	return Combination{pairs: pairs}
}

// CombinationOf builds a combination from pairs. A dimension repeated in
// pairs keeps its last value.
func CombinationOf(pairs ...Pair) Combination {
	m := make(map[string]Value, len(pairs))
	for _, p := range pairs {
		m[p.Dimension] = p.Value
	}
	return NewCombination(m)
}

// Len returns the number of dimensions in the combination.
func (c Combination) Len() int {
	return len(c.pairs)
}

// Pairs returns a copy of the pairs, sorted by dimension name.
func (c Combination) Pairs() []Pair {
	out := make([]Pair, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// Dimensions returns the dimension names, sorted.
func (c Combination) Dimensions() []string {
	names := make([]string, len(c.pairs))
	for i, p := range c.pairs {
		names[i] = p.Dimension
	}
	return names
}

// Get returns the value assigned to dimension, if any.
func (c Combination) Get(dimension string) (Value, bool) {
	i := sort.Search(len(c.pairs), func(i int) bool { return c.pairs[i].Dimension >= dimension })
	if i < len(c.pairs) && c.pairs[i].Dimension == dimension {
		return c.pairs[i].Value, true
	}
	return "", false
}

// Has reports whether the combination assigns v to dimension.
func (c Combination) Has(dimension string, v Value) bool {
	got, ok := c.Get(dimension)
	return ok && got == v
}

// Map returns the combination as a fresh dimension to value map.
func (c Combination) Map() map[string]Value {
	m := make(map[string]Value, len(c.pairs))
	for _, p := range c.pairs {
		m[p.Dimension] = p.Value
	}
	return m
}

// Equal reports whether both combinations hold the same mapping.
func (c Combination) Equal(other Combination) bool {
	if len(c.pairs) != len(other.pairs) {
		return false
	}
	for i := range c.pairs {
		if c.pairs[i] != other.pairs[i] {
			return false
		}
	}
	return true
}

// Key returns the canonical "dim:value|dim:value" form, usable as a map key.
func (c Combination) Key() string {
	parts := make([]string, len(c.pairs))
	for i, p := range c.pairs {
		parts[i] = p.String()
	}
	return strings.Join(parts, "|")
}

// String renders the combination for humans, e.g. "Format: json + Verify: on".
func (c Combination) String() string {
	parts := make([]string, len(c.pairs))
	for i, p := range c.pairs {
		parts[i] = p.Dimension + ": " + string(p.Value)
	}
	return strings.Join(parts, " + ")
}

// ParseKey is the inverse of Key.
func ParseKey(key string) (Combination, bool) {
	if key == "" {
		return Combination{}, true
	}
	m := make(map[string]Value)
	for _, part := range strings.Split(key, "|") {
		dim, v, ok := strings.Cut(part, ":")
		if !ok || dim == "" {
			return Combination{}, false
		}
		if _, dup := m[dim]; dup {
			return Combination{}, false
		}
		m[dim] = Value(v)
	}
	return NewCombination(m), true
}

// MarshalJSON encodes the combination as a JSON object of dimension to value.
func (c Combination) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

// UnmarshalJSON decodes a JSON object of dimension to value.
func (c *Combination) UnmarshalJSON(data []byte) error {
	var m map[string]Value
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*c = NewCombination(m)
	return nil
}
