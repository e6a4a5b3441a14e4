package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"combitest/internal/domain"
)

const (
	headerWidth = 62
	keyWidth    = 36
)

// TextOptions tunes WriteText.
type TextOptions struct {
	// Details appends every result, not only failures.
	Details bool
}

var (
	headerColor  = color.New(color.FgCyan)
	passColor    = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
	errorColor   = color.New(color.FgMagenta)
	skipColor    = color.New(color.FgYellow)
	neutralColor = color.New(color.FgWhite)
)

func statusColor(s domain.Status) *color.Color {
	switch s {
	case domain.StatusPassed:
		return passColor
	case domain.StatusFailed:
		return failColor
	case domain.StatusError:
		return errorColor
	case domain.StatusSkipped:
		return skipColor
	}
	return neutralColor
}

func label(s domain.Status) string {
	return strings.ToUpper(s.String())
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// WriteText renders the human-readable report of suite to w.
func WriteText(w io.Writer, suite *domain.TestSuite, opts TextOptions) error {
	tw := &textWriter{w: w}
	r := Build(suite)

	tw.header("Combination Test Report")
	tw.summary(r)
	tw.statuses(r)
	tw.valueTable(r)
	if suite != nil {
		tw.failures(suite)
		if opts.Details {
			tw.details(suite)
		}
	}
	return tw.err
}

// Render returns the text report together with its export.
func Render(suite *domain.TestSuite) (string, Export) {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer do not fail.
	_ = WriteText(&buf, suite, TextOptions{})
	return buf.String(), Build(suite).Export()
}

// textWriter keeps the first write error so the sections stay linear.
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(c *color.Color, format string, args ...any) {
	if t.err != nil {
		return
	}
	if c == nil {
		_, t.err = fmt.Fprintf(t.w, format, args...)
		return
	}
	_, t.err = c.Fprintf(t.w, format, args...)
}

func (t *textWriter) header(title string) {
	bar := strings.Repeat("═", headerWidth)
	t.printf(headerColor, "╔%s╗\n", bar)
	t.printf(headerColor, "║ %-*s ║\n", headerWidth-2, title)
	t.printf(headerColor, "╚%s╝\n", bar)
	t.printf(nil, "\n")
}

func (t *textWriter) summary(r Report) {
	t.printf(nil, "%-16s %s\n", "Suite:", r.Suite)
	t.printf(nil, "%-16s %d\n", "Total Tests:", r.Total)
	t.printf(nil, "%-16s %.1f%%\n", "Pass Rate:", r.PassRate*100)
	t.printf(nil, "%-16s %s\n", "Duration:", seconds(r.Duration))
	t.printf(nil, "%-16s %s\n", "Execution Time:", seconds(r.ExecutionTime))
	if r.Truncated {
		t.printf(skipColor, "Run stopped early; results are partial.\n")
	}
	t.printf(nil, "\n")
}

func (t *textWriter) statuses(r Report) {
	if r.Total == 0 {
		return
	}
	t.printf(nil, "Status Breakdown:\n")
	for _, s := range domain.Statuses {
		n := r.Status.Of(s)
		if n == 0 {
			continue
		}
		pct := float64(n) / float64(r.Total) * 100
		t.printf(statusColor(s), "  %-12s : %5d (%5.1f%%)\n", label(s), n, pct)
	}
	t.printf(nil, "\n")
}

func rule(left, mid, right string) string {
	widths := []int{keyWidth + 2, 8, 8, 8, 9}
	parts := make([]string, len(widths))
	for i, n := range widths {
		parts[i] = strings.Repeat("─", n)
	}
	return left + strings.Join(parts, mid) + right + "\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (t *textWriter) valueTable(r Report) {
	if len(r.values) == 0 {
		return
	}
	t.printf(nil, "Dimension Values (by failures):\n")
	t.printf(nil, "%s", rule("┌", "┬", "┐"))
	t.printf(nil, "│ %-*s │ %6s │ %6s │ %6s │ %7s │\n", keyWidth, "Dimension:Value", "Passed", "Failed", "Error", "Skipped")
	t.printf(nil, "%s", rule("├", "┼", "┤"))
	for _, v := range r.values {
		t.printf(nil, "│ %-*s │ ", keyWidth, truncate(v.Key(), keyWidth))
		t.printf(passColor, "%6d", v.Passed)
		t.printf(nil, " │ ")
		t.printf(failColor, "%6d", v.Failed)
		t.printf(nil, " │ ")
		t.printf(errorColor, "%6d", v.Error)
		t.printf(nil, " │ ")
		t.printf(skipColor, "%7d", v.Skipped)
		t.printf(nil, " │\n")
	}
	t.printf(nil, "%s", rule("└", "┴", "┘"))
	t.printf(nil, "\n")
}

func (t *textWriter) failures(suite *domain.TestSuite) {
	failures := domain.Failures(suite)
	if len(failures) == 0 {
		if len(suite.Results) > 0 {
			t.printf(passColor, "✓ No failures or errors!\n")
		}
		return
	}
	t.printf(failColor, "✗ Failures and Errors (%d):\n", len(failures))
	n := 0
	for _, res := range suite.Results {
		if !res.Status.IsFailure() {
			continue
		}
		n++
		t.printf(nil, "  %d. ", n)
		t.printf(statusColor(res.Status), "[%s]", label(res.Status))
		t.printf(nil, " %s\n", res.Combination)
		if res.ErrorDetail != "" {
			t.printf(nil, "       %s\n", res.ErrorDetail)
		}
	}
}

func (t *textWriter) details(suite *domain.TestSuite) {
	if len(suite.Results) == 0 {
		return
	}
	t.printf(nil, "\nDetailed Results:\n")
	for i, res := range suite.Results {
		t.printf(nil, "  %d. ", i+1)
		t.printf(statusColor(res.Status), "[%s]", label(res.Status))
		t.printf(nil, " %s (%s)\n", res.Combination, seconds(res.Duration))
	}
}
