// Package generation enumerates and samples k-way combinations of
// dimension values.
package generation

import (
	"iter"
	"math/bits"
	"math/rand/v2"

	"github.com/pkg/errors"

	"combitest/internal/catalog"
	"combitest/internal/domain"
)

var (
	// ErrEmptyCatalog is returned for a catalog without dimensions.
	ErrEmptyCatalog = errors.New("empty catalog")
	// ErrInvalidRange is returned when the size bounds or value cap are out of range.
	ErrInvalidRange = errors.New("invalid dimension range")
	// ErrInvalidSamples is returned for a non-positive sample size in sampled mode.
	ErrInvalidSamples = errors.New("invalid samples per size")
	// ErrSpaceTooLarge is returned when a per-size count does not fit in 64 bits.
	ErrSpaceTooLarge = errors.New("combination space too large")
)

// Generator produces combinations for one catalog and configuration.
// It holds no mutable state, so one Generator may be iterated any number
// of times, concurrently.
type Generator struct {
	cfg    Config
	names  []string
	values [][]domain.Value // capped, catalog order

	// weights[i][r] is the number of combinations of exactly r dimensions
	// drawn from dimensions i..D-1.
	weights [][]uint64
}

// New validates cfg against cat and precomputes the space sizes.
// All configuration faults surface here, never during iteration.
func New(cat *catalog.Catalog, cfg Config) (*Generator, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	d := cat.Len()
	if cfg.MaxDimensions == 0 {
		cfg.MaxDimensions = d
	}
	if cfg.MinDimensions < 1 || cfg.MinDimensions > d {
		return nil, errors.Wrapf(ErrInvalidRange, "min dimensions %d outside [1, %d]", cfg.MinDimensions, d)
	}
	if cfg.MaxDimensions < 1 || cfg.MaxDimensions > d {
		return nil, errors.Wrapf(ErrInvalidRange, "max dimensions %d outside [1, %d]", cfg.MaxDimensions, d)
	}
	if cfg.MinDimensions > cfg.MaxDimensions {
		return nil, errors.Wrapf(ErrInvalidRange, "min dimensions %d exceeds max %d", cfg.MinDimensions, cfg.MaxDimensions)
	}
	if cfg.MaxValuesPerDimension < 0 {
		return nil, errors.Wrapf(ErrInvalidRange, "negative value cap %d", cfg.MaxValuesPerDimension)
	}
	switch cfg.Mode {
	case ModeExhaustive:
	case ModeSampled:
		if cfg.SamplesPerSize < 1 {
			return nil, errors.Wrapf(ErrInvalidSamples, "%d", cfg.SamplesPerSize)
		}
	default:
		return nil, errors.Errorf("unknown generation mode %v", cfg.Mode)
	}

	g := &Generator{cfg: cfg}
	for _, dim := range cat.Dimensions() {
		vals := dim.Values
		if cfg.MaxValuesPerDimension > 0 && len(vals) > cfg.MaxValuesPerDimension {
			vals = vals[:cfg.MaxValuesPerDimension]
		}
		g.names = append(g.names, dim.Name)
		g.values = append(g.values, vals)
	}
	if err := g.buildWeights(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Generator) buildWeights() error {
	d, maxK := len(g.names), g.cfg.MaxDimensions
	g.weights = make([][]uint64, d+1)
	g.weights[d] = make([]uint64, maxK+1)
	g.weights[d][0] = 1
	for i := d - 1; i >= 0; i-- {
		row := make([]uint64, maxK+1)
		row[0] = 1
		next := g.weights[i+1]
		for r := 1; r <= maxK; r++ {
			hi, with := bits.Mul64(uint64(len(g.values[i])), next[r-1])
			sum, carry := bits.Add64(next[r], with, 0)
			if hi != 0 || carry != 0 {
				return errors.Wrapf(ErrSpaceTooLarge, "size %d", r)
			}
			row[r] = sum
		}
		g.weights[i] = row
	}
	return nil
}

// Config returns the effective configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// Sizes returns the combination sizes in generation order.
func (g *Generator) Sizes() []int {
	sizes := make([]int, 0, g.cfg.MaxDimensions-g.cfg.MinDimensions+1)
	for k := g.cfg.MinDimensions; k <= g.cfg.MaxDimensions; k++ {
		sizes = append(sizes, k)
	}
	return sizes
}

// Count returns the exhaustive number of combinations of size k: the sum
// over all k-subsets of dimensions of the product of their capped value
// counts. Sizes outside the configured range count zero.
func (g *Generator) Count(k int) uint64 {
	if k < g.cfg.MinDimensions || k > g.cfg.MaxDimensions {
		return 0
	}
	return g.weights[0][k]
}

// Total returns how many combinations Combinations yields.
// It saturates at the largest uint64.
func (g *Generator) Total() uint64 {
	var total uint64
	for _, k := range g.Sizes() {
		n := g.Emitted(k)
		sum, carry := bits.Add64(total, n, 0)
		if carry != 0 {
			return ^uint64(0)
		}
		total = sum
	}
	return total
}

// Emitted returns how many combinations of size k Combinations yields.
func (g *Generator) Emitted(k int) uint64 {
	n := g.Count(k)
	if g.cfg.Mode == ModeSampled && uint64(g.cfg.SamplesPerSize) < n {
		return uint64(g.cfg.SamplesPerSize)
	}
	return n
}

// Combinations returns a lazy sequence over the configured space, size by
// size. Iteration may stop at any point; ranging again restarts from the
// beginning and yields the identical sequence.
func (g *Generator) Combinations() iter.Seq[domain.Combination] {
	return func(yield func(domain.Combination) bool) {
		for _, k := range g.Sizes() {
			for rank := range g.ranks(k) {
				if !yield(g.unrank(k, rank)) {
					return
				}
			}
		}
	}
}

// CombinationsOfSize is Combinations restricted to size k.
func (g *Generator) CombinationsOfSize(k int) iter.Seq[domain.Combination] {
	return func(yield func(domain.Combination) bool) {
		if g.Count(k) == 0 {
			return
		}
		for rank := range g.ranks(k) {
			if !yield(g.unrank(k, rank)) {
				return
			}
		}
	}
}

// ranks yields the ranks emitted for size k.
func (g *Generator) ranks(k int) iter.Seq[uint64] {
	n := g.Count(k)
	if g.cfg.Mode == ModeSampled && uint64(g.cfg.SamplesPerSize) < n {
		return sampleRanks(n, uint64(g.cfg.SamplesPerSize), g.cfg.Seed, uint64(k))
	}
	return func(yield func(uint64) bool) {
		for r := uint64(0); r < n; r++ {
			if !yield(r) {
				return
			}
		}
	}
}

// sampleRanks draws m distinct ranks from [0, n) with Floyd's algorithm.
// The stream is keyed by seed and size so every size samples independently.
func sampleRanks(n, m, seed, size uint64) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		rng := rand.New(rand.NewPCG(seed, size))
		chosen := make(map[uint64]struct{}, m)
		for j := n - m; j < n; j++ {
			t := rng.Uint64N(j + 1)
			if _, dup := chosen[t]; dup {
				t = j
			}
			chosen[t] = struct{}{}
			if !yield(t) {
				return
			}
		}
	}
}

// unrank decodes rank within size k. Dimensions are visited in catalog
// order; a dimension is included while the rank falls inside the block of
// combinations that contain it, and its value is the rank's digit in that
// block.
func (g *Generator) unrank(k int, rank uint64) domain.Combination {
	pairs := make([]domain.Pair, 0, k)
	r := k
	for i := 0; r > 0; i++ {
		rest := g.weights[i+1][r-1]
		block := uint64(len(g.values[i])) * rest
		if rank < block {
			pairs = append(pairs, domain.Pair{Dimension: g.names[i], Value: g.values[i][rank/rest]})
			rank %= rest
			r--
			continue
		}
		rank -= block
	}
	return domain.CombinationOf(pairs...)
}

// Groups lists the k-subsets of dimension names in lexicographic catalog
// order. The result has C(D, k) entries.
func (g *Generator) Groups(k int) [][]string {
	d := len(g.names)
	if k < 1 || k > d {
		return nil
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	var groups [][]string
	for {
		group := make([]string, k)
		for i, j := range idx {
			group[i] = g.names[j]
		}
		groups = append(groups, group)

		i := k - 1
		for i >= 0 && idx[i] == d-k+i {
			i--
		}
		if i < 0 {
			return groups
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
