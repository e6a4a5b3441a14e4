package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"combitest/internal/domain"
)

// ProgressBar tracks a run and renders per-status counts.
type ProgressBar struct {
	bar *progressbar.ProgressBar

	mu     sync.Mutex
	counts map[domain.Status]int
}

// NewProgressBar creates a new progress bar on stderr. A negative count
// renders a spinner for runs of unknown length.
func NewProgressBar(count int) *ProgressBar {
	return newProgressBar(count, os.Stderr)
}

func newProgressBar(count int, w io.Writer) *ProgressBar {
	p := &ProgressBar{counts: make(map[domain.Status]int, len(domain.Statuses))}
	p.bar = progressbar.NewOptions(count,
		progressbar.OptionSetDescription(p.description()),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return p
}

// Record counts one result. It has the shape of the executor's OnResult hook.
func (p *ProgressBar) Record(r domain.TestResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[r.Status]++
	_ = p.bar.Add(1)
	p.bar.Describe(p.description())
}

// Count returns how many results with status s were recorded.
func (p *ProgressBar) Count(s domain.Status) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[s]
}

func (p *ProgressBar) description() string {
	return color.CyanString("Running combinations: ") +
		color.GreenString("[passed: %d", p.counts[domain.StatusPassed]) +
		" | " +
		color.RedString("failed: %d", p.counts[domain.StatusFailed]) +
		" | " +
		color.MagentaString("error: %d", p.counts[domain.StatusError]) +
		" | " +
		color.YellowString("skipped: %d]", p.counts[domain.StatusSkipped])
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}
