package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domaincreates/internal/core/domain"
)

func TestObserveRun_Success(t *testing.T) {
	m := New()
	start := time.Date(2024, 6, 5, 1, 0, 0, 0, time.UTC)

	m.ObserveRun(&domain.RunResult{
		Stage:       domain.StageDone,
		Success:     true,
		Domains:     42,
		StartedAt:   start,
		CompletedAt: start.Add(3 * time.Second),
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LastRunSuccess))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.DomainsExtracted))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RunDuration))
	assert.Equal(t, float64(start.Add(3*time.Second).Unix()), testutil.ToFloat64(m.LastRunTimestamp))
	assert.Equal(t, 0, testutil.CollectAndCount(m.FailedStage))
}

func TestObserveRun_FailureByStage(t *testing.T) {
	m := New()
	now := time.Now()

	m.ObserveRun(&domain.RunResult{Stage: domain.StageFetchFailed, StartedAt: now, CompletedAt: now})

	assert.Equal(t, 0.0, testutil.ToFloat64(m.LastRunSuccess))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailedStage.WithLabelValues("FETCH_FAILED")))

	expected := `
# HELP domaincreates_last_run_failed_stage 1 for the stage the last run failed at, absent after a successful run
# TYPE domaincreates_last_run_failed_stage gauge
domaincreates_last_run_failed_stage{stage="FETCH_FAILED"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "domaincreates_last_run_failed_stage"))
}

func TestObserveRun_FailedStageHoldsOnlyLastRun(t *testing.T) {
	m := New()
	now := time.Now()

	m.ObserveRun(&domain.RunResult{Stage: domain.StageFetchFailed, StartedAt: now, CompletedAt: now})
	m.ObserveRun(&domain.RunResult{Stage: domain.StageExtractFailed, StartedAt: now, CompletedAt: now})
	assert.Equal(t, 1, testutil.CollectAndCount(m.FailedStage))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailedStage.WithLabelValues("EXTRACT_FAILED")))

	m.ObserveRun(&domain.RunResult{Stage: domain.StageDone, Success: true, StartedAt: now, CompletedAt: now})
	assert.Equal(t, 0, testutil.CollectAndCount(m.FailedStage))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	now := time.Now()
	m.ObserveRun(&domain.RunResult{Stage: domain.StageDone, Success: true, Domains: 7, StartedAt: now, CompletedAt: now})

	path := filepath.Join(t.TempDir(), "domaincreates.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "domaincreates_domains_extracted 7")
	assert.Contains(t, string(data), "domaincreates_last_run_success 1")
}
