// Package report aggregates a test suite into summary statistics and
// per-dimension-value breakdowns.
package report

import (
	"sort"
	"time"

	"combitest/internal/domain"
)

// Counts tallies results by status.
type Counts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Error   int `json:"error"`
	Skipped int `json:"skipped"`
}

func (c *Counts) add(s domain.Status) {
	switch s {
	case domain.StatusPassed:
		c.Passed++
	case domain.StatusFailed:
		c.Failed++
	case domain.StatusError:
		c.Error++
	case domain.StatusSkipped:
		c.Skipped++
	}
}

// Total is the number of results counted.
func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Error + c.Skipped
}

// Failures counts FAILED and ERROR results.
func (c Counts) Failures() int {
	return c.Failed + c.Error
}

// PassRate is Passed/Total, or 0 when empty.
func (c Counts) PassRate() float64 {
	if c.Total() == 0 {
		return 0
	}
	return float64(c.Passed) / float64(c.Total())
}

// Of returns the count for one status.
func (c Counts) Of(s domain.Status) int {
	switch s {
	case domain.StatusPassed:
		return c.Passed
	case domain.StatusFailed:
		return c.Failed
	case domain.StatusError:
		return c.Error
	case domain.StatusSkipped:
		return c.Skipped
	}
	return 0
}

// ValueStats is the breakdown for one (dimension, value) pair over every
// combination that contains it.
type ValueStats struct {
	Dimension string
	Value     domain.Value
	Counts
}

// Key renders the pair as "dimension:value".
func (v ValueStats) Key() string {
	return domain.Pair{Dimension: v.Dimension, Value: v.Value}.String()
}

// Report is a read-only view derived from a suite.
type Report struct {
	Suite         string
	Total         int
	Status        Counts
	PassRate      float64
	Duration      time.Duration
	ExecutionTime time.Duration
	Truncated     bool

	values []ValueStats
}

// Build aggregates suite. A nil or empty suite gives a zeroed report.
func Build(suite *domain.TestSuite) Report {
	var r Report
	if suite == nil {
		return r
	}
	r.Suite = suite.Name
	r.Duration = suite.Duration()
	r.ExecutionTime = suite.ExecutionTime()
	r.Truncated = suite.Truncated

	index := make(map[domain.Pair]int)
	for _, res := range suite.Results {
		r.Total++
		r.Status.add(res.Status)
		for _, p := range res.Combination.Pairs() {
			i, ok := index[p]
			if !ok {
				i = len(r.values)
				index[p] = i
				r.values = append(r.values, ValueStats{Dimension: p.Dimension, Value: p.Value})
			}
			r.values[i].add(res.Status)
		}
	}
	r.PassRate = r.Status.PassRate()

	sort.SliceStable(r.values, func(i, j int) bool {
		fi, fj := r.values[i].Failures(), r.values[j].Failures()
		if fi != fj {
			return fi > fj
		}
		return r.values[i].Key() < r.values[j].Key()
	})
	return r
}

// Values returns the per-value stats sorted by descending failure count,
// then by key.
func (r Report) Values() []ValueStats {
	return append([]ValueStats(nil), r.values...)
}

// Value looks up the stats of one pair.
func (r Report) Value(dimension string, v domain.Value) (ValueStats, bool) {
	for _, s := range r.values {
		if s.Dimension == dimension && s.Value == v {
			return s, true
		}
	}
	return ValueStats{}, false
}

// Export is the machine-readable form of a report.
type Export struct {
	Total            int               `json:"total"`
	ByStatus         map[string]int    `json:"by_status"`
	PassRate         float64           `json:"pass_rate"`
	ByDimensionValue map[string]Counts `json:"by_dimension_value"`
}

// Export converts the report to its machine-readable form.
func (r Report) Export() Export {
	e := Export{
		Total:            r.Total,
		ByStatus:         make(map[string]int, len(domain.Statuses)),
		PassRate:         r.PassRate,
		ByDimensionValue: make(map[string]Counts, len(r.values)),
	}
	for _, s := range domain.Statuses {
		e.ByStatus[s.String()] = r.Status.Of(s)
	}
	for _, v := range r.values {
		e.ByDimensionValue[v.Key()] = v.Counts
	}
	return e
}

// Map returns the export as a nested generic mapping.
func (e Export) Map() map[string]any {
	byStatus := make(map[string]any, len(e.ByStatus))
	for k, v := range e.ByStatus {
		byStatus[k] = v
	}
	byValue := make(map[string]any, len(e.ByDimensionValue))
	for k, c := range e.ByDimensionValue {
		byValue[k] = map[string]any{
			"passed":  c.Passed,
			"failed":  c.Failed,
			"error":   c.Error,
			"skipped": c.Skipped,
		}
	}
	return map[string]any{
		"total":              e.Total,
		"by_status":          byStatus,
		"pass_rate":          e.PassRate,
		"by_dimension_value": byValue,
	}
}
