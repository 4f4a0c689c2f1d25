package strata

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// StepExecutor performs the data copy/transform of one migration step.
// Implementations live outside this package (they own the concrete store
// formats) and must apply each step atomically: either the store ends up
// fully at the step's destination version, or fully at its source
// version. No partial-entity state may ever be visible to readers.
type StepExecutor interface {
	ExecuteStep(ctx context.Context, step Step) error
}

// StepExecutorFunc adapts a function to the StepExecutor interface.
type StepExecutorFunc func(ctx context.Context, step Step) error

// ExecuteStep calls f.
func (f StepExecutorFunc) ExecuteStep(ctx context.Context, step Step) error {
	return f(ctx, step)
}

// MigrationStatus describes where a store stands in the migration life
// cycle.
type MigrationStatus uint8

// Migration life-cycle states.
const (
	StatusUnopened MigrationStatus = iota
	StatusVersionResolved
	StatusUpToDate
	StatusPlanComputed
	StatusMigrating
	StatusFailed
)

var statusNames = [...]string{
	StatusUnopened:        "unopened",
	StatusVersionResolved: "version_resolved",
	StatusUpToDate:        "up_to_date",
	StatusPlanComputed:    "plan_computed",
	StatusMigrating:       "migrating",
	StatusFailed:          "failed",
}

// String returns the status name.
func (s MigrationStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("invalid(%d)", s)
}

// Progress is one incremental report during plan application.
type Progress struct {
	PlanID    uuid.UUID
	StepIndex int // zero-based index of the step just completed
	StepCount int
	Step      Step
}

// MigrateOption configures one Migrate call.
type MigrateOption func(*migrateConfig)

type migrateConfig struct {
	progress func(Progress)
}

// WithProgress registers a callback invoked after every completed step.
// The callback runs on the migrating goroutine.
func WithProgress(fn func(Progress)) MigrateOption {
	return func(c *migrateConfig) {
		c.progress = fn
	}
}

// MigrationResult reports the outcome of applying a plan.
type MigrationResult struct {
	Status    MigrationStatus
	Version   string // the version the store is confirmed at
	Completed int    // number of steps applied
}

// Migrate applies a plan one step at a time through the executor.
//
// Steps run sequentially and the context is consulted only between
// steps: cancellation never interrupts a step mid-flight, so the store is
// always left fully migrated up to the last completed step. A step
// failure is wrapped in a StepFailureError and stops the run; the
// executor's atomicity guarantee means the returned result names the last
// confirmed version. Retrying is caller policy, re-planned from that
// version.
//
// Migrate blocks until the plan finishes, fails or is cancelled; callers
// that must not block run it on a separate goroutine and observe progress
// through WithProgress.
func Migrate(ctx context.Context, plan Plan, exec StepExecutor, opts ...MigrateOption) (MigrationResult, error) {
	if exec == nil {
		return MigrationResult{Status: StatusFailed, Version: plan.Source},
			fmt.Errorf("strata: migrate requires a step executor")
	}
	cfg := migrateConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	result := MigrationResult{Status: StatusUpToDate, Version: plan.Source}
	if plan.Empty() {
		return result, nil
	}
	result.Status = StatusMigrating
	for i, step := range plan.Steps {
		select {
		case <-ctx.Done():
			result.Status = StatusFailed
			return result, ctx.Err()
		default:
		}
		if err := exec.ExecuteStep(ctx, step); err != nil {
			result.Status = StatusFailed
			return result, NewStepFailureError(step, i, err)
		}
		result.Version = step.Destination
		result.Completed = i + 1
		if cfg.progress != nil {
			cfg.progress(Progress{
				PlanID:    plan.ID,
				StepIndex: i,
				StepCount: len(plan.Steps),
				Step:      step,
			})
		}
	}
	result.Status = StatusUpToDate
	return result, nil
}
