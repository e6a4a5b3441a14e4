package ui

import (
	"fmt"
	"io"
	"iter"
	"sort"
	"strings"

	"github.com/fatih/color"

	"combitest/internal/catalog"
	"combitest/internal/domain"
	"combitest/internal/generation"
)

// Formatter formats generation output for the terminal.
type Formatter struct {
	w io.Writer
}

// NewFormatter creates a new Formatter writing to w
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// PrintSpaceStats prints the size of the configured combination space.
func (f *Formatter) PrintSpaceStats(cat *catalog.Catalog, gen *generation.Generator) {
	cfg := gen.Config()
	cyan := color.New(color.FgCyan)
	white := color.New(color.FgWhite)

	fmt.Fprintln(f.w)
	cyan.Fprintln(f.w, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.w, "║                      Combination Space                        ║")
	cyan.Fprintln(f.w, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.w)

	row := func(label string, value any) {
		fmt.Fprintf(f.w, "│ %-31s │ ", label)
		white.Fprintf(f.w, "%-27v │\n", value)
	}
	sep := func() {
		fmt.Fprintln(f.w, "├─────────────────────────────────┼─────────────────────────────┤")
	}

	fmt.Fprintln(f.w, "┌─────────────────────────────────┬─────────────────────────────┐")
	row("Dimensions", cat.Len())
	sep()
	row("Mode", cfg.Mode)
	if cfg.Mode == generation.ModeSampled {
		sep()
		row("Samples per size", cfg.SamplesPerSize)
		sep()
		row("Seed", cfg.Seed)
	}
	if cfg.MaxValuesPerDimension > 0 {
		sep()
		row("Values per dimension (cap)", cfg.MaxValuesPerDimension)
	}
	for _, k := range gen.Sizes() {
		sep()
		label := fmt.Sprintf("Size %d", k)
		value := fmt.Sprintf("%d of %d", gen.Emitted(k), gen.Count(k))
		row(label, value)
	}
	sep()
	row("Total", gen.Total())
	fmt.Fprintln(f.w, "└─────────────────────────────────┴─────────────────────────────┘")
}

// PrintCombinations prints a numbered listing and returns how many were printed.
func (f *Formatter) PrintCombinations(seq iter.Seq[domain.Combination]) int {
	n := 0
	for c := range seq {
		n++
		color.New(color.FgYellow).Fprintf(f.w, "%6d. ", n)
		fmt.Fprintln(f.w, c)
	}
	return n
}

// PrintKeys prints one canonical key per line, for piping.
func (f *Formatter) PrintKeys(seq iter.Seq[domain.Combination]) int {
	n := 0
	for c := range seq {
		n++
		fmt.Fprintln(f.w, c.Key())
	}
	return n
}

// groupNode collects the combinations that share one dimension group.
type groupNode struct {
	dims   []string
	combos []domain.Combination
}

// PrintCombinationTree prints combinations grouped by size and dimension group.
func (f *Formatter) PrintCombinationTree(seq iter.Seq[domain.Combination]) int {
	bySize := make(map[int]map[string]*groupNode)
	n := 0
	for c := range seq {
		n++
		groups := bySize[c.Len()]
		if groups == nil {
			groups = make(map[string]*groupNode)
			bySize[c.Len()] = groups
		}
		dims := c.Dimensions()
		key := strings.Join(dims, " × ")
		g := groups[key]
		if g == nil {
			g = &groupNode{dims: dims}
			groups[key] = g
		}
		g.combos = append(g.combos, c)
	}

	sizes := make([]int, 0, len(bySize))
	for k := range bySize {
		sizes = append(sizes, k)
	}
	sort.Ints(sizes)

	for _, k := range sizes {
		color.New(color.FgCyan).Fprintf(f.w, "%d-way\n", k)
		groups := bySize[k]
		keys := make([]string, 0, len(groups))
		for key := range groups {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for i, key := range keys {
			lastGroup := i == len(keys)-1
			connector, prefix := "  |_", "  |   "
			if lastGroup {
				connector, prefix = "   |_", "      "
			}
			color.New(color.FgYellow).Fprintf(f.w, "%s%s (%d)\n", connector, key, len(groups[key].combos))
			for _, c := range groups[key].combos {
				values := make([]string, 0, c.Len())
				for _, p := range c.Pairs() {
					values = append(values, string(p.Value))
				}
				fmt.Fprintf(f.w, "%s|_%s\n", prefix, strings.Join(values, ", "))
			}
		}
	}
	return n
}
