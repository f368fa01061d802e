package workflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// NewInstanceID generates <microseconds>-<random-32-hex> per §4.14.
func NewInstanceID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%d-%s", time.Now().UnixMicro(), hex.EncodeToString(b[:]))
}

// snapshotRecord is the JSON shape StateManager writes and reads, per
// §4.14: {execution_state, current_step?, variables, step_results,
// workflow_id, instance_id, timestamp}.
type snapshotRecord struct {
	ExecutionState ExecutionState         `json:"execution_state"`
	CurrentStep    string                 `json:"current_step,omitempty"`
	Variables      map[string]interface{} `json:"variables"`
	StepResults    map[string]interface{} `json:"step_results"`
	WorkflowID     string                 `json:"workflow_id"`
	InstanceID     string                 `json:"instance_id"`
	Timestamp      int64                  `json:"timestamp"`
}

func toSnapshotRecord(ectx *ExecutionContext) snapshotRecord {
	snap := ectx.Snapshot()
	return snapshotRecord{
		ExecutionState: ectx.GetState(),
		CurrentStep:    ectx.CurrentStep,
		Variables:      snap["variables"].(map[string]interface{}),
		StepResults:    snap["step_results"].(map[string]interface{}),
		WorkflowID:     ectx.WorkflowID,
		InstanceID:     ectx.InstanceID,
		Timestamp:      time.Now().Unix(),
	}
}

// StateManager serializes an ExecutionContext to a KVStore under
// "<workflow_id>:<instance_id>".
type StateManager struct {
	Store KVStore
}

func NewStateManager(store KVStore) *StateManager {
	return &StateManager{Store: store}
}

func stateKeyFor(workflowID, instanceID string) string {
	return workflowID + ":" + instanceID
}

// Save persists ectx's current snapshot.
func (m *StateManager) Save(ctx context.Context, ectx *ExecutionContext) error {
	data, err := json.Marshal(toSnapshotRecord(ectx))
	if err != nil {
		return err
	}
	return m.Store.Save(ctx, stateKeyFor(ectx.WorkflowID, ectx.InstanceID), data)
}

// Load restores variables/step_results/state/current_step from the store
// verbatim into ectx. Returns corerr.ErrKeyNotFound (as "no prior state")
// when nothing has been saved for this instance.
func (m *StateManager) Load(ctx context.Context, workflowID, instanceID string) (*ExecutionContext, error) {
	data, err := m.Store.Load(ctx, stateKeyFor(workflowID, instanceID))
	if err != nil {
		return nil, err
	}
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	ectx := &ExecutionContext{
		WorkflowID:  rec.WorkflowID,
		InstanceID:  rec.InstanceID,
		State:       rec.ExecutionState,
		CurrentStep: rec.CurrentStep,
		Variables:   rec.Variables,
		StepResults: rec.StepResults,
	}
	return ectx, nil
}

// Delete removes the persisted record for a workflow instance.
func (m *StateManager) Delete(ctx context.Context, workflowID, instanceID string) error {
	return m.Store.Delete(ctx, stateKeyFor(workflowID, instanceID))
}

// CheckpointStrategy names when a workflow driver should call
// Checkpoint.Create automatically, per §4.14.
type CheckpointStrategy string

const (
	CheckpointNever            CheckpointStrategy = "never"
	CheckpointOnStepCompletion CheckpointStrategy = "on_step_completion"
	CheckpointOnMilestone      CheckpointStrategy = "on_milestone"
	CheckpointPeriodic         CheckpointStrategy = "periodic"
	CheckpointOnStateChange    CheckpointStrategy = "on_state_change"
)

// RecoveryStrategy names how a workflow driver resumes after a crash or
// cancellation, per §4.14.
type RecoveryStrategy string

const (
	RecoveryRestartFromBeginning     RecoveryStrategy = "restart_from_beginning"
	RecoveryResumeFromCheckpoint     RecoveryStrategy = "resume_from_checkpoint"
	RecoveryResumeFromLastSuccessful RecoveryStrategy = "resume_from_last_successful_step"
	RecoveryCustom                   RecoveryStrategy = "custom"
)

// Checkpoint manages named point-in-time snapshots under
// "<workflow_id>:<instance_id>:checkpoint:<cp_id>".
type Checkpoint struct {
	Store KVStore
}

func NewCheckpoint(store KVStore) *Checkpoint {
	return &Checkpoint{Store: store}
}

func checkpointKeyFor(workflowID, instanceID, cpID string) string {
	return fmt.Sprintf("%s:%s:checkpoint:%s", workflowID, instanceID, cpID)
}

// Create snapshots ectx's current state into a named checkpoint. The
// snapshot is JSON-marshaled (not field-by-field copied) so the stored
// record shares no backing arrays/maps with the live context, the same
// deep-copy-by-round-trip idiom used elsewhere in this module for
// safe read-only access to a live context's data.
func (c *Checkpoint) Create(ctx context.Context, ectx *ExecutionContext, cpID string) error {
	data, err := json.Marshal(toSnapshotRecord(ectx))
	if err != nil {
		return err
	}
	return c.Store.Save(ctx, checkpointKeyFor(ectx.WorkflowID, ectx.InstanceID, cpID), data)
}

// Restore reads cpID's snapshot and writes it verbatim into ectx's live
// fields, per P8: the restored context's variables/step_results/state/
// current_step must equal the checkpoint's, without aliasing the
// checkpoint's backing maps.
func (c *Checkpoint) Restore(ctx context.Context, ectx *ExecutionContext, cpID string) error {
	data, err := c.Store.Load(ctx, checkpointKeyFor(ectx.WorkflowID, ectx.InstanceID, cpID))
	if err != nil {
		return err
	}
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	ectx.Variables = rec.Variables
	ectx.StepResults = rec.StepResults
	ectx.CurrentStep = rec.CurrentStep
	ectx.State = rec.ExecutionState
	return nil
}

// Delete removes a named checkpoint.
func (c *Checkpoint) Delete(ctx context.Context, workflowID, instanceID, cpID string) error {
	return c.Store.Delete(ctx, checkpointKeyFor(workflowID, instanceID, cpID))
}
