package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combitest/internal/config"
	"combitest/internal/domain"
)

func newStorage(t *testing.T) *JSONStorage {
	t.Helper()
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	return NewJSONStorage(cfg)
}

func sampleSuite() *domain.TestSuite {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &domain.TestSuite{ID: "suite-1", Name: "sample", CreatedAt: start}
	s.Add(domain.TestResult{
		Combination: domain.NewCombination(map[string]domain.Value{"Format": "json", "Verify": "on"}),
		Status:      domain.StatusPassed,
		StartedAt:   start,
		Duration:    10 * time.Millisecond,
		Worker:      1,
	})
	s.Add(domain.TestResult{
		Combination: domain.NewCombination(map[string]domain.Value{"Format": "xml", "Verify": "on"}),
		Status:      domain.StatusError,
		StartedAt:   start,
		Duration:    20 * time.Millisecond,
		ErrorDetail: "timeout",
		Worker:      2,
	})
	s.Submitted = 2
	s.FinishedAt = start.Add(2 * time.Second)
	return s
}

func TestJSONStorage_SaveLoad(t *testing.T) {
	st := newStorage(t)
	suite := sampleSuite()
	require.NoError(t, st.Save(suite, "built-in", 2))

	out, err := st.Load()
	require.NoError(t, err)

	assert.Equal(t, "suite-1", out.Meta.SuiteID)
	assert.Equal(t, "built-in", out.Meta.Catalog)
	assert.Equal(t, 2, out.Meta.Workers)
	assert.InDelta(t, 2.0, out.Meta.DurationSeconds, 1e-9)
	assert.Equal(t, 2, out.Report.Total)
	assert.Equal(t, 1, out.Report.ByStatus["error"])
	assert.Equal(t, 1, out.Report.ByDimensionValue["Format:xml"].Error)

	require.Len(t, out.Results, 2)
	assert.True(t, out.Results[1].Combination.Equal(suite.Results[1].Combination))
	assert.Equal(t, domain.StatusError, out.Results[1].Status)

	require.Len(t, out.Failures, 1)
	assert.Equal(t, "Format:xml|Verify:on", out.Failures[0].Combination)
	assert.Equal(t, "timeout", out.Failures[0].Detail)

	rebuilt := out.Suite()
	assert.Equal(t, suite.Name, rebuilt.Name)
	assert.Equal(t, 2*time.Second, rebuilt.Duration())
	assert.Len(t, rebuilt.Results, 2)
}

func TestJSONStorage_SaveOutputKeepsResolved(t *testing.T) {
	st := newStorage(t)
	require.NoError(t, st.Save(sampleSuite(), "", 1))

	out, err := st.Load()
	require.NoError(t, err)
	out.Failures[0].Resolved = true
	require.NoError(t, st.SaveOutput(out))

	again, err := st.Load()
	require.NoError(t, err)
	assert.True(t, again.Failures[0].Resolved)
}

func TestJSONStorage_LoadMissing(t *testing.T) {
	_, err := newStorage(t).Load()
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestNewOutput_EmptySuite(t *testing.T) {
	out := NewOutput(&domain.TestSuite{Name: "empty"}, "", 1)
	assert.NotNil(t, out.Results)
	assert.NotNil(t, out.Failures)
	assert.Zero(t, out.Report.Total)
}
