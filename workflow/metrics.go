package workflow

import (
	"sync"
	"time"

	"github.com/agentkit/hookflow/telemetry"
)

// StepStats accumulates per-step execution counts and timing.
type StepStats struct {
	Executions  int64
	Successful  int64
	Failed      int64
	TotalTime   time.Duration
	AverageTime time.Duration
	MinTime     time.Duration
	MaxTime     time.Duration
}

// Metrics tracks workflow and per-step execution counters. When Registry
// is set, every recording is also emitted into the shared telemetry
// registry so the Prometheus exporter and collectors see workflow
// activity alongside hook metrics.
type Metrics struct {
	mu         sync.RWMutex
	executions int64
	successful int64
	failed     int64
	totalTime  time.Duration
	stepStats  map[string]*StepStats

	Registry *telemetry.Registry
}

func NewMetrics(reg *telemetry.Registry) *Metrics {
	return &Metrics{stepStats: map[string]*StepStats{}, Registry: reg}
}

var stepDurationBounds = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// RecordExecution records one finished workflow run.
func (m *Metrics) RecordExecution(workflowID string, res Result) {
	m.mu.Lock()
	m.executions++
	status := "failed"
	if res.Success {
		m.successful++
		status = "completed"
	} else {
		m.failed++
	}
	m.totalTime += time.Duration(res.ExecutionTimeMs) * time.Millisecond
	m.mu.Unlock()

	if m.Registry != nil {
		m.Registry.IncrementCounter(
			"workflow_executions_total",
			"Total workflow executions by terminal status.",
			telemetry.Labels{"workflow": workflowID, "status": status},
			1,
		)
		m.Registry.ObserveHistogram(
			"workflow_execution_duration_ms",
			"Wall-clock workflow execution time in milliseconds.",
			telemetry.Labels{"workflow": workflowID},
			stepDurationBounds,
			float64(res.ExecutionTimeMs),
		)
	}
}

// RecordStep records one step execution's outcome and duration.
func (m *Metrics) RecordStep(workflowID, stepID string, success bool, d time.Duration) {
	m.mu.Lock()
	stats, ok := m.stepStats[stepID]
	if !ok {
		stats = &StepStats{}
		m.stepStats[stepID] = stats
	}
	stats.Executions++
	if success {
		stats.Successful++
	} else {
		stats.Failed++
	}
	stats.TotalTime += d
	if stats.MinTime == 0 || d < stats.MinTime {
		stats.MinTime = d
	}
	if d > stats.MaxTime {
		stats.MaxTime = d
	}
	stats.AverageTime = stats.TotalTime / time.Duration(stats.Executions)
	m.mu.Unlock()

	if m.Registry != nil {
		status := "failed"
		if success {
			status = "completed"
		}
		m.Registry.IncrementCounter(
			"workflow_step_executions_total",
			"Total workflow step executions by terminal status.",
			telemetry.Labels{"workflow": workflowID, "step": stepID, "status": status},
			1,
		)
		m.Registry.ObserveHistogram(
			"workflow_step_duration_ms",
			"Wall-clock step execution time in milliseconds.",
			telemetry.Labels{"workflow": workflowID, "step": stepID},
			stepDurationBounds,
			float64(d.Milliseconds()),
		)
	}
}

// MetricsSnapshot is a point-in-time view of a Metrics tracker.
type MetricsSnapshot struct {
	TotalExecutions int64                `json:"total_executions"`
	Successful      int64                `json:"successful"`
	Failed          int64                `json:"failed"`
	SuccessRate     float64              `json:"success_rate"`
	AverageTime     time.Duration        `json:"average_time"`
	StepStats       map[string]StepStats `json:"step_stats"`
}

// Snapshot returns current values; step stats are copied, not aliased.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		TotalExecutions: m.executions,
		Successful:      m.successful,
		Failed:          m.failed,
		StepStats:       make(map[string]StepStats, len(m.stepStats)),
	}
	if m.executions > 0 {
		snap.SuccessRate = float64(m.successful) / float64(m.executions)
		snap.AverageTime = m.totalTime / time.Duration(m.executions)
	}
	for id, stats := range m.stepStats {
		snap.StepStats[id] = *stats
	}
	return snap
}

// Reset clears all accumulated values. The telemetry registry is not
// touched; its counters are monotonic by contract.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executions, m.successful, m.failed = 0, 0, 0
	m.totalTime = 0
	m.stepStats = map[string]*StepStats{}
}
