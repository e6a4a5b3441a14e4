package generation

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combitest/internal/catalog"
	"combitest/internal/domain"
)

func newCatalog(t *testing.T, sizes map[string]int, order ...string) *catalog.Catalog {
	t.Helper()
	var dims []domain.Dimension
	for _, name := range order {
		d := domain.Dimension{Name: name}
		for i := 1; i <= sizes[name]; i++ {
			d.Values = append(d.Values, domain.Value(fmt.Sprintf("%s%d", name, i)))
		}
		dims = append(dims, d)
	}
	c, err := catalog.New(dims...)
	require.NoError(t, err)
	return c
}

func abCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		domain.Dimension{Name: "A", Values: []domain.Value{"a1", "a2"}},
		domain.Dimension{Name: "B", Values: []domain.Value{"b1", "b2"}},
	)
	require.NoError(t, err)
	return c
}

func keys(combos []domain.Combination) []string {
	out := make([]string, len(combos))
	for i, c := range combos {
		out[i] = c.Key()
	}
	return out
}

func TestExhaustive_TwoByTwo(t *testing.T) {
	g, err := New(abCatalog(t), Config{MinDimensions: 2, MaxDimensions: 2})
	require.NoError(t, err)

	got := Collect(g.Combinations())
	assert.Equal(t, []string{"A:a1|B:b1", "A:a1|B:b2", "A:a2|B:b1", "A:a2|B:b2"}, keys(got))
	assert.Equal(t, uint64(4), g.Count(2))
	assert.Equal(t, uint64(4), g.Total())
}

// bruteCount sums, over every k-subset of dimension sizes, the product of
// the sizes.
func bruteCount(sizes []int, k int) uint64 {
	var total uint64
	var walk func(start, left int, product uint64)
	walk = func(start, left int, product uint64) {
		if left == 0 {
			total += product
			return
		}
		for i := start; i < len(sizes); i++ {
			walk(i+1, left-1, product*uint64(sizes[i]))
		}
	}
	walk(0, k, 1)
	return total
}

func TestExhaustive_CountsAndUniqueness(t *testing.T) {
	sizes := map[string]int{"A": 2, "B": 3, "C": 1, "D": 4}
	order := []string{"A", "B", "C", "D"}
	cat := newCatalog(t, sizes, order...)

	for minK := 1; minK <= 4; minK++ {
		for maxK := minK; maxK <= 4; maxK++ {
			t.Run(fmt.Sprintf("k=%d..%d", minK, maxK), func(t *testing.T) {
				g, err := New(cat, Config{MinDimensions: minK, MaxDimensions: maxK})
				require.NoError(t, err)

				perSize := make(map[int]uint64)
				seen := make(map[string]bool)
				for c := range g.Combinations() {
					require.GreaterOrEqual(t, c.Len(), minK)
					require.LessOrEqual(t, c.Len(), maxK)
					require.True(t, cat.Contains(c))
					require.False(t, seen[c.Key()], "duplicate %s", c.Key())
					seen[c.Key()] = true
					perSize[c.Len()]++
				}
				for k := minK; k <= maxK; k++ {
					want := bruteCount([]int{2, 3, 1, 4}, k)
					assert.Equal(t, want, g.Count(k), "count k=%d", k)
					assert.Equal(t, want, perSize[k], "emitted k=%d", k)
				}
			})
		}
	}
}

func TestExhaustive_SizesAreOrdered(t *testing.T) {
	g, err := New(abCatalog(t), Config{MinDimensions: 1, MaxDimensions: 2})
	require.NoError(t, err)

	got := keys(Collect(g.Combinations()))
	assert.Equal(t, []string{
		"A:a1", "A:a2", "B:b1", "B:b2",
		"A:a1|B:b1", "A:a1|B:b2", "A:a2|B:b1", "A:a2|B:b2",
	}, got)
}

func TestValueCap(t *testing.T) {
	g, err := New(catalog.Default(), Config{MinDimensions: 2, MaxDimensions: 2, MaxValuesPerDimension: 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(45*4), g.Count(2))

	for c := range g.Combinations() {
		for _, p := range c.Pairs() {
			d, err := catalog.Default().Dimension(p.Dimension)
			require.NoError(t, err)
			assert.Contains(t, d.Values[:2], p.Value)
		}
	}
}

func TestValueCap_Single(t *testing.T) {
	g, err := New(catalog.Default(), Config{MinDimensions: 3, MaxDimensions: 3, MaxValuesPerDimension: 1})
	require.NoError(t, err)
	assert.Equal(t, uint64(120), g.Count(3))
	assert.Len(t, Collect(g.Combinations()), 120)
}

func TestSampled_Deterministic(t *testing.T) {
	cfg := Config{MinDimensions: 2, MaxDimensions: 2, Mode: ModeSampled, SamplesPerSize: 3, Seed: 42}
	g, err := New(abCatalog(t), cfg)
	require.NoError(t, err)

	first := keys(Collect(g.Combinations()))
	require.Len(t, first, 3)
	assert.Len(t, map[string]bool{first[0]: true, first[1]: true, first[2]: true}, 3)
	for _, k := range first {
		assert.Contains(t, []string{"A:a1|B:b1", "A:a1|B:b2", "A:a2|B:b1", "A:a2|B:b2"}, k)
	}

	// Same generator, restarted.
	assert.Equal(t, first, keys(Collect(g.Combinations())))

	// Fresh generator, same configuration.
	g2, err := New(abCatalog(t), cfg)
	require.NoError(t, err)
	assert.Equal(t, first, keys(Collect(g2.Combinations())))
	assert.Equal(t, uint64(3), g.Total())
}

func TestSampled_LargeSpace(t *testing.T) {
	cfg := Config{MinDimensions: 2, MaxDimensions: 4, Mode: ModeSampled, SamplesPerSize: 50, Seed: 7}
	g, err := New(catalog.Default(), cfg)
	require.NoError(t, err)

	perSize := make(map[int]int)
	seen := make(map[string]bool)
	for c := range g.Combinations() {
		require.False(t, seen[c.Key()])
		seen[c.Key()] = true
		perSize[c.Len()]++
	}
	assert.Equal(t, map[int]int{2: 50, 3: 50, 4: 50}, perSize)
}

func TestSampled_ClampsToSpace(t *testing.T) {
	g, err := New(abCatalog(t), Config{MinDimensions: 2, MaxDimensions: 2, Mode: ModeSampled, SamplesPerSize: 10, Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"A:a1|B:b1", "A:a1|B:b2", "A:a2|B:b1", "A:a2|B:b2"}, keys(Collect(g.Combinations())))
	assert.Equal(t, uint64(4), g.Total())
}

func TestEarlyStopAndRestart(t *testing.T) {
	g, err := New(catalog.Default(), Config{MinDimensions: 2, MaxDimensions: 10})
	require.NoError(t, err)

	var firstThree []string
	for c := range g.Combinations() {
		firstThree = append(firstThree, c.Key())
		if len(firstThree) == 3 {
			break
		}
	}
	again := keys(Collect(Limit(g.Combinations(), 3)))
	assert.Equal(t, firstThree, again)
}

func TestNew_Errors(t *testing.T) {
	ab := abCatalog(t)
	empty, err := catalog.New()
	require.NoError(t, err)

	tests := []struct {
		name string
		cat  *catalog.Catalog
		cfg  Config
		want error
	}{
		{name: "empty catalog", cat: empty, cfg: Config{MinDimensions: 1, MaxDimensions: 1}, want: ErrEmptyCatalog},
		{name: "nil catalog", cat: nil, cfg: Config{MinDimensions: 1}, want: ErrEmptyCatalog},
		{name: "min above max", cat: ab, cfg: Config{MinDimensions: 2, MaxDimensions: 1}, want: ErrInvalidRange},
		{name: "min zero", cat: ab, cfg: Config{MinDimensions: 0, MaxDimensions: 1}, want: ErrInvalidRange},
		{name: "max above catalog", cat: ab, cfg: Config{MinDimensions: 1, MaxDimensions: 3}, want: ErrInvalidRange},
		{name: "negative max", cat: ab, cfg: Config{MinDimensions: 1, MaxDimensions: -1}, want: ErrInvalidRange},
		{name: "min above catalog", cat: ab, cfg: Config{MinDimensions: 3}, want: ErrInvalidRange},
		{name: "negative cap", cat: ab, cfg: Config{MinDimensions: 1, MaxValuesPerDimension: -1}, want: ErrInvalidRange},
		{name: "no samples", cat: ab, cfg: Config{MinDimensions: 1, Mode: ModeSampled}, want: ErrInvalidSamples},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cat, tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestNew_DefaultMax(t *testing.T) {
	g, err := New(abCatalog(t), Config{MinDimensions: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, g.Sizes())
	assert.Equal(t, uint64(8), g.Total())
	assert.Zero(t, g.Count(3))
}

func TestNew_SpaceTooLarge(t *testing.T) {
	sizes := make(map[string]int)
	var order []string
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("D%d", i)
		sizes[name] = 100
		order = append(order, name)
	}
	_, err := New(newCatalog(t, sizes, order...), Config{MinDimensions: 1})
	assert.True(t, errors.Is(err, ErrSpaceTooLarge), "got %v", err)
}

func TestGroups(t *testing.T) {
	g, err := New(catalog.Default(), Config{MinDimensions: 2, MaxDimensions: 3})
	require.NoError(t, err)

	assert.Len(t, g.Groups(2), 45)
	assert.Len(t, g.Groups(3), 120)
	assert.Len(t, g.Groups(10), 1)
	assert.Nil(t, g.Groups(11))

	for _, pair := range g.Groups(2) {
		assert.Len(t, pair, 2)
		assert.NotEqual(t, pair[0], pair[1])
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("sampled")
	require.NoError(t, err)
	assert.Equal(t, ModeSampled, m)
	assert.Equal(t, "exhaustive", ModeExhaustive.String())

	_, err = ParseMode("random")
	assert.Error(t, err)
}
