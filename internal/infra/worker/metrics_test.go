package worker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkerMetrics(reg)

	m.RecordJobRun(JobStarted)
	m.RecordJobRun(JobSkipped)
	m.RecordJobDuration(2.5)
	m.RecordPosts(3)
	m.RecordLastSuccess()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"worker_job_runs_total",
		"worker_job_duration_seconds",
		"worker_job_posts_total",
		"worker_job_last_success_timestamp",
	} {
		assert.True(t, names[want], "missing metric %s", want)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues(JobSkipped)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.JobPapersPostedTotal))
}

func TestNewWorkerMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewWorkerMetrics(prometheus.NewRegistry())
		NewWorkerMetrics(prometheus.NewRegistry())
	})
}
