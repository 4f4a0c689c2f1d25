package strata

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// MappingKind tells the executor how the entity transform of one step is
// derived.
type MappingKind uint8

const (
	// MappingInferred means the executor derives the transform from the
	// structural difference between the two versions.
	MappingInferred MappingKind = iota

	// MappingExplicit means the caller registered a custom mapping for
	// the step's edge.
	MappingExplicit
)

// String returns the mapping kind name.
func (k MappingKind) String() string {
	switch k {
	case MappingInferred:
		return "inferred"
	case MappingExplicit:
		return "explicit"
	}
	return fmt.Sprintf("invalid(%d)", k)
}

// Step is one single-edge transition of a migration plan.
type Step struct {
	Source      string
	Destination string
	Mapping     MappingKind
}

// Plan is an ordered sequence of single-edge transitions from a source
// version to a target version. The ID correlates executor progress
// reports with the plan they belong to. A plan carries no side effects:
// applying it is entirely the executor's business.
type Plan struct {
	ID     uuid.UUID
	Source string
	Target string
	Steps  []Step
}

// Empty reports whether the plan requires no migration.
func (p Plan) Empty() bool {
	return len(p.Steps) == 0
}

// MigrationPlanner turns a (current version, target version) pair into an
// ordered migration plan for an external executor. The planner is
// read-only over an immutable history, so concurrent plan queries need no
// synchronization.
type MigrationPlanner struct {
	history  *SchemaHistory
	explicit map[[2]string]struct{} // edges with caller-registered mappings
}

// PlannerOption configures a MigrationPlanner.
type PlannerOption func(*MigrationPlanner)

// WithExplicitMapping registers a caller-provided mapping for the edge
// from source to destination. Steps along that edge are marked
// MappingExplicit in every plan.
func WithExplicitMapping(source, destination string) PlannerOption {
	return func(p *MigrationPlanner) {
		p.explicit[[2]string{source, destination}] = struct{}{}
	}
}

// NewMigrationPlanner builds a planner over the given history.
func NewMigrationPlanner(history *SchemaHistory, opts ...PlannerOption) (*MigrationPlanner, error) {
	if history == nil {
		return nil, fmt.Errorf("strata: planner requires a schema history")
	}
	p := &MigrationPlanner{
		history:  history,
		explicit: make(map[[2]string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// PlanOption configures one PlanMigration call.
type PlanOption func(*planConfig)

type planConfig struct {
	allowProgressive bool
}

// DisallowProgressive fails planning with ProgressiveRequiredError when
// the only path from source to target needs more than one step. Callers
// that can only afford a single transform pass use this to fail closed
// instead of discovering mid-way that several passes are needed.
func DisallowProgressive() PlanOption {
	return func(c *planConfig) {
		c.allowProgressive = false
	}
}

// PlanMigration computes the ordered step list from one version to
// another. Identical versions yield an empty plan. Each step's
// destination is re-validated against its authored version lock before
// the plan is returned: a migration into a drifted schema must never be
// attempted, so lock disagreement aborts planning with a
// LockMismatchError.
func (p *MigrationPlanner) PlanMigration(from, to string, opts ...PlanOption) (Plan, error) {
	cfg := planConfig{allowProgressive: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	plan := Plan{ID: uuid.New(), Source: from, Target: to}
	if from == to {
		if !p.history.Contains(from) && !p.history.Chain().Contains(from) {
			return Plan{}, NewUnknownVersionError(from)
		}
		return plan, nil
	}
	path, err := p.history.Path(from, to)
	if err != nil {
		return Plan{}, err
	}
	steps := len(path) - 1
	if steps > 1 && !cfg.allowProgressive {
		return Plan{}, NewProgressiveRequiredError(from, to, steps)
	}
	for i := 0; i+1 < len(path); i++ {
		step := Step{
			Source:      path[i],
			Destination: path[i+1],
			Mapping:     p.mappingFor(path[i], path[i+1]),
		}
		if err := p.validateStep(step); err != nil {
			return Plan{}, err
		}
		plan.Steps = append(plan.Steps, step)
	}
	return plan, nil
}

func (p *MigrationPlanner) mappingFor(source, destination string) MappingKind {
	if _, ok := p.explicit[[2]string{source, destination}]; ok {
		return MappingExplicit
	}
	return MappingInferred
}

// validateStep re-checks the destination version's lock against its live
// schema. A migration must not proceed into a version whose computed
// fingerprints disagree with its authored lock.
func (p *MigrationPlanner) validateStep(step Step) error {
	dest, ok := p.history.Version(step.Destination)
	if !ok || dest.Lock == nil {
		return nil
	}
	computed, err := ComputeLock(dest.Schema)
	if err != nil {
		return fmt.Errorf("strata: validating step to %q: %w", step.Destination, err)
	}
	if err := dest.Lock.Match(computed); err != nil {
		var mismatch *LockMismatchError
		if errors.As(err, &mismatch) {
			mismatch.Version = dest.ID
		}
		return err
	}
	return nil
}
