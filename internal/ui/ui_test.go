package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combitest/internal/catalog"
	"combitest/internal/domain"
	"combitest/internal/generation"
)

func noColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func smallGenerator(t *testing.T) (*catalog.Catalog, *generation.Generator) {
	t.Helper()
	cat, err := catalog.New(
		domain.Dimension{Name: "A", Values: []domain.Value{"a1", "a2"}},
		domain.Dimension{Name: "B", Values: []domain.Value{"b1", "b2"}},
		domain.Dimension{Name: "C", Values: []domain.Value{"c1"}},
	)
	require.NoError(t, err)
	gen, err := generation.New(cat, generation.Config{MinDimensions: 2, MaxDimensions: 3})
	require.NoError(t, err)
	return cat, gen
}

func TestFormatter_PrintCombinations(t *testing.T) {
	noColor(t)
	_, gen := smallGenerator(t)

	var buf bytes.Buffer
	n := NewFormatter(&buf).PrintCombinations(gen.Combinations())

	assert.Equal(t, int(gen.Total()), n)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, n)
	assert.Equal(t, "     1. A: a1 + B: b1", lines[0])
}

func TestFormatter_PrintKeys(t *testing.T) {
	_, gen := smallGenerator(t)

	var buf bytes.Buffer
	n := NewFormatter(&buf).PrintKeys(generation.Limit(gen.Combinations(), 2))

	assert.Equal(t, 2, n)
	assert.Equal(t, "A:a1|B:b1\nA:a1|B:b2\n", buf.String())
}

func TestFormatter_PrintCombinationTree(t *testing.T) {
	noColor(t)
	_, gen := smallGenerator(t)

	var buf bytes.Buffer
	n := NewFormatter(&buf).PrintCombinationTree(gen.Combinations())
	out := buf.String()

	assert.Equal(t, int(gen.Total()), n)
	assert.Contains(t, out, "2-way\n")
	assert.Contains(t, out, "3-way\n")
	assert.Contains(t, out, "A × B (4)")
	assert.Contains(t, out, "A × B × C (4)")
	assert.Contains(t, out, "|_a1, b1\n")
}

func TestFormatter_PrintSpaceStats(t *testing.T) {
	noColor(t)
	cat, gen := smallGenerator(t)

	var buf bytes.Buffer
	NewFormatter(&buf).PrintSpaceStats(cat, gen)
	out := buf.String()

	assert.Contains(t, out, "Combination Space")
	assert.Contains(t, out, "Size 2")
	assert.Contains(t, out, "8 of 8")
	assert.Contains(t, out, "exhaustive")
}

func TestProgressBar_Record(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressBar(3, &buf)
	for _, s := range []domain.Status{domain.StatusPassed, domain.StatusFailed, domain.StatusPassed} {
		p.Record(domain.TestResult{Status: s})
	}
	p.Finish()

	assert.Equal(t, 2, p.Count(domain.StatusPassed))
	assert.Equal(t, 1, p.Count(domain.StatusFailed))
	assert.Zero(t, p.Count(domain.StatusError))
}

func TestFailureFormatting(t *testing.T) {
	f := domain.Failure{
		Combination: "Format:xml|Verify:on",
		Status:      domain.StatusError,
		Detail:      "panic: [boom]",
		Worker:      2,
	}
	details := formatFailureDetails(f, nil)
	assert.Contains(t, details, "[cyan]Format[white]")
	assert.Contains(t, details, "xml")
	assert.Contains(t, details, tview.Escape("panic: [boom]"))

	assert.Equal(t, "[yellow]1.[white] Format:xml + Verify:on", listItemText(f, 0))
	f.Resolved = true
	assert.True(t, strings.HasPrefix(listItemText(f, 0), "[gray]✓"))

	stats := formatFailureStats(f, 1)
	assert.Contains(t, stats, "ERROR")
	assert.Contains(t, stats, "resolved")

	failures := []domain.Failure{f, {Combination: "A:a1"}}
	assert.Equal(t, 1, countUnresolved(failures))
	assert.Contains(t, headerText(domain.RunMeta{SuiteName: "s"}, failures), "2 failing (1 unresolved)")
}
