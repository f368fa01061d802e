package workflow_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentkit/hookflow/telemetry"
	"github.com/agentkit/hookflow/workflow"
)

func TestMetrics_RecordExecutionAndSnapshot(t *testing.T) {
	m := workflow.NewMetrics(nil)
	m.RecordExecution("wf1", workflow.Result{Success: true, ExecutionTimeMs: 20})
	m.RecordExecution("wf1", workflow.Result{Success: false, ExecutionTimeMs: 10})

	snap := m.Snapshot()
	require.Equal(t, int64(2), snap.TotalExecutions)
	require.Equal(t, int64(1), snap.Successful)
	require.Equal(t, int64(1), snap.Failed)
	require.Equal(t, 0.5, snap.SuccessRate)
	require.Equal(t, 15*time.Millisecond, snap.AverageTime)
}

func TestMetrics_RecordStepTracksMinMax(t *testing.T) {
	m := workflow.NewMetrics(nil)
	m.RecordStep("wf1", "s1", true, 10*time.Millisecond)
	m.RecordStep("wf1", "s1", false, 30*time.Millisecond)

	snap := m.Snapshot()
	stats := snap.StepStats["s1"]
	require.Equal(t, int64(2), stats.Executions)
	require.Equal(t, int64(1), stats.Successful)
	require.Equal(t, int64(1), stats.Failed)
	require.Equal(t, 10*time.Millisecond, stats.MinTime)
	require.Equal(t, 30*time.Millisecond, stats.MaxTime)
	require.Equal(t, 20*time.Millisecond, stats.AverageTime)
}

func TestMetrics_EmitsIntoTelemetryRegistry(t *testing.T) {
	reg := telemetry.NewRegistry()
	m := workflow.NewMetrics(reg)
	m.RecordExecution("wf1", workflow.Result{Success: true, ExecutionTimeMs: 5})
	m.RecordStep("wf1", "s1", true, 5*time.Millisecond)

	names := map[string]bool{}
	for _, s := range reg.CollectAll() {
		names[s.Name] = true
	}
	require.True(t, names["workflow_executions_total"])
	require.True(t, names["workflow_execution_duration_ms"])
	require.True(t, names["workflow_step_executions_total"])
	require.True(t, names["workflow_step_duration_ms"])
}

func TestMetrics_PrometheusRender(t *testing.T) {
	reg := telemetry.NewRegistry()
	m := workflow.NewMetrics(reg)
	m.RecordExecution("wf1", workflow.Result{Success: true, ExecutionTimeMs: 5})

	text := telemetry.RenderPrometheusText(reg.CollectAll())
	require.True(t, strings.Contains(text, "# TYPE workflow_executions_total counter"))
	require.True(t, strings.Contains(text, `workflow="wf1"`))
}

func TestMetrics_Reset(t *testing.T) {
	m := workflow.NewMetrics(nil)
	m.RecordExecution("wf1", workflow.Result{Success: true})
	m.Reset()
	require.Equal(t, int64(0), m.Snapshot().TotalExecutions)
}
