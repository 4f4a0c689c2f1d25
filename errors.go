package strata

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for chain configuration and plan resolution.
var (
	// ErrAmbiguousChain is returned when two declared transitions target
	// the same destination version.
	ErrAmbiguousChain = errors.New("strata: ambiguous migration chain")

	// ErrCyclicChain is returned when following declared transitions
	// revisits a version.
	ErrCyclicChain = errors.New("strata: cyclic migration chain")

	// ErrUnknownVersion is returned when a requested version is not part
	// of the chain or history.
	ErrUnknownVersion = errors.New("strata: unknown schema version")

	// ErrNoPath is returned when no sequence of declared transitions
	// connects the source version to the target version.
	ErrNoPath = errors.New("strata: no migration path to target")

	// ErrUnknownSchema is returned when an observed store shape matches
	// no registered schema version.
	ErrUnknownSchema = errors.New("strata: unknown store schema")

	// ErrAmbiguousSchema is returned when an observed store shape matches
	// more than one registered schema version.
	ErrAmbiguousSchema = errors.New("strata: ambiguous store schema")

	// ErrLockMismatch is returned when a computed fingerprint disagrees
	// with the version lock registered for the same schema version.
	ErrLockMismatch = errors.New("strata: version lock mismatch")

	// ErrEmptyVersion is returned when a chain declaration contains an
	// empty version identifier.
	ErrEmptyVersion = errors.New("strata: empty version identifier")
)

// AmbiguousChainError reports two declared transitions targeting the same
// destination version. A chain where a destination is reachable from more
// than one declared parent has no single valid migration order.
type AmbiguousChainError struct {
	Destination string   // version targeted more than once
	Sources     []string // declared parents of Destination
}

// Error returns the error string.
func (e *AmbiguousChainError) Error() string {
	return fmt.Sprintf("strata: ambiguous migration chain: version %q is the destination of %s",
		e.Destination, quoteJoin(e.Sources))
}

// Is reports whether the target error matches ErrAmbiguousChain.
func (e *AmbiguousChainError) Is(err error) bool {
	return err == ErrAmbiguousChain
}

// NewAmbiguousChainError returns a new AmbiguousChainError for the given
// destination and its declared parents.
func NewAmbiguousChainError(destination string, sources ...string) *AmbiguousChainError {
	return &AmbiguousChainError{Destination: destination, Sources: sources}
}

// IsAmbiguousChain returns true if the error is an AmbiguousChainError.
func IsAmbiguousChain(err error) bool {
	if err == nil {
		return false
	}
	var e *AmbiguousChainError
	return errors.As(err, &e) || errors.Is(err, ErrAmbiguousChain)
}

// CyclicChainError reports a cycle in the declared transitions. The Cycle
// slice holds the versions along the loop, starting and ending at the
// first revisited version.
type CyclicChainError struct {
	Cycle []string
}

// Error returns the error string.
func (e *CyclicChainError) Error() string {
	return fmt.Sprintf("strata: cyclic migration chain: %s", strings.Join(e.Cycle, " -> "))
}

// Is reports whether the target error matches ErrCyclicChain.
func (e *CyclicChainError) Is(err error) bool {
	return err == ErrCyclicChain
}

// NewCyclicChainError returns a new CyclicChainError for the given loop.
func NewCyclicChainError(cycle []string) *CyclicChainError {
	return &CyclicChainError{Cycle: cycle}
}

// IsCyclicChain returns true if the error is a CyclicChainError.
func IsCyclicChain(err error) bool {
	if err == nil {
		return false
	}
	var e *CyclicChainError
	return errors.As(err, &e) || errors.Is(err, ErrCyclicChain)
}

// DuplicateVersionError reports a version identifier declared more than
// once in a linear chain or a schema history.
type DuplicateVersionError struct {
	Version string
}

// Error returns the error string.
func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("strata: version %q declared more than once", e.Version)
}

// NewDuplicateVersionError returns a new DuplicateVersionError.
func NewDuplicateVersionError(version string) *DuplicateVersionError {
	return &DuplicateVersionError{Version: version}
}

// IsDuplicateVersion returns true if the error is a DuplicateVersionError.
func IsDuplicateVersion(err error) bool {
	if err == nil {
		return false
	}
	var e *DuplicateVersionError
	return errors.As(err, &e)
}

// UnknownVersionError reports a requested version that is not declared in
// the chain or registered in the history.
type UnknownVersionError struct {
	Version string
}

// Error returns the error string.
func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("strata: unknown schema version %q", e.Version)
}

// Is reports whether the target error matches ErrUnknownVersion.
func (e *UnknownVersionError) Is(err error) bool {
	return err == ErrUnknownVersion
}

// NewUnknownVersionError returns a new UnknownVersionError.
func NewUnknownVersionError(version string) *UnknownVersionError {
	return &UnknownVersionError{Version: version}
}

// IsUnknownVersion returns true if the error is an UnknownVersionError.
func IsUnknownVersion(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownVersionError
	return errors.As(err, &e) || errors.Is(err, ErrUnknownVersion)
}

// NoPathError reports that no sequence of declared transitions connects
// Source to Target.
type NoPathError struct {
	Source string
	Target string
}

// Error returns the error string.
func (e *NoPathError) Error() string {
	return fmt.Sprintf("strata: no migration path from %q to %q", e.Source, e.Target)
}

// Is reports whether the target error matches ErrNoPath.
func (e *NoPathError) Is(err error) bool {
	return err == ErrNoPath
}

// NewNoPathError returns a new NoPathError.
func NewNoPathError(source, target string) *NoPathError {
	return &NoPathError{Source: source, Target: target}
}

// IsNoPath returns true if the error is a NoPathError.
func IsNoPath(err error) bool {
	if err == nil {
		return false
	}
	var e *NoPathError
	return errors.As(err, &e) || errors.Is(err, ErrNoPath)
}

// ProgressiveRequiredError reports that the only path from Source to
// Target needs more than one step while the caller disallowed progressive
// migration.
type ProgressiveRequiredError struct {
	Source string
	Target string
	Steps  int // length of the multi-step path
}

// Error returns the error string.
func (e *ProgressiveRequiredError) Error() string {
	return fmt.Sprintf("strata: progressive migration required: %q to %q needs %d steps",
		e.Source, e.Target, e.Steps)
}

// NewProgressiveRequiredError returns a new ProgressiveRequiredError.
func NewProgressiveRequiredError(source, target string, steps int) *ProgressiveRequiredError {
	return &ProgressiveRequiredError{Source: source, Target: target, Steps: steps}
}

// IsProgressiveRequired returns true if the error is a ProgressiveRequiredError.
func IsProgressiveRequired(err error) bool {
	if err == nil {
		return false
	}
	var e *ProgressiveRequiredError
	return errors.As(err, &e)
}

// UnknownSchemaError reports an observed store shape that matches no
// registered schema version.
type UnknownSchemaError struct {
	Entities []string // entity names of the observed shape, for diagnostics
}

// Error returns the error string.
func (e *UnknownSchemaError) Error() string {
	if len(e.Entities) == 0 {
		return "strata: store schema matches no registered version"
	}
	return fmt.Sprintf("strata: store schema with entities %s matches no registered version",
		quoteJoin(e.Entities))
}

// Is reports whether the target error matches ErrUnknownSchema.
func (e *UnknownSchemaError) Is(err error) bool {
	return err == ErrUnknownSchema
}

// NewUnknownSchemaError returns a new UnknownSchemaError.
func NewUnknownSchemaError(entities []string) *UnknownSchemaError {
	return &UnknownSchemaError{Entities: entities}
}

// IsUnknownSchema returns true if the error is an UnknownSchemaError.
func IsUnknownSchema(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownSchemaError
	return errors.As(err, &e) || errors.Is(err, ErrUnknownSchema)
}

// AmbiguousSchemaError reports an observed store shape that matches more
// than one registered schema version. Picking one would risk running the
// wrong migration sequence, so resolution fails instead of guessing.
type AmbiguousSchemaError struct {
	Matches []string // registered versions the observed shape matched
}

// Error returns the error string.
func (e *AmbiguousSchemaError) Error() string {
	return fmt.Sprintf("strata: store schema matches multiple registered versions: %s",
		quoteJoin(e.Matches))
}

// Is reports whether the target error matches ErrAmbiguousSchema.
func (e *AmbiguousSchemaError) Is(err error) bool {
	return err == ErrAmbiguousSchema
}

// NewAmbiguousSchemaError returns a new AmbiguousSchemaError.
func NewAmbiguousSchemaError(matches []string) *AmbiguousSchemaError {
	return &AmbiguousSchemaError{Matches: matches}
}

// IsAmbiguousSchema returns true if the error is an AmbiguousSchemaError.
func IsAmbiguousSchema(err error) bool {
	if err == nil {
		return false
	}
	var e *AmbiguousSchemaError
	return errors.As(err, &e) || errors.Is(err, ErrAmbiguousSchema)
}

// LockMismatchError reports a computed fingerprint that disagrees with
// the registered version lock: the schema changed without bumping its
// declared version. A zero Declared fingerprint means the entity was not
// in the lock; a zero Computed fingerprint means the entity is no longer
// in the schema.
type LockMismatchError struct {
	Version  string // registered version the lock belongs to, if known
	Entity   string
	Declared Fingerprint
	Computed Fingerprint
}

// Error returns the error string.
func (e *LockMismatchError) Error() string {
	prefix := "strata: version lock mismatch"
	if e.Version != "" {
		prefix = fmt.Sprintf("strata: version lock mismatch in %q", e.Version)
	}
	switch {
	case e.Declared.IsZero():
		return fmt.Sprintf("%s: entity %q is not declared in the lock (computed %s)",
			prefix, e.Entity, e.Computed)
	case e.Computed.IsZero():
		return fmt.Sprintf("%s: entity %q is locked as %s but absent from the schema",
			prefix, e.Entity, e.Declared)
	default:
		return fmt.Sprintf("%s: entity %q declared %s, computed %s",
			prefix, e.Entity, e.Declared, e.Computed)
	}
}

// Is reports whether the target error matches ErrLockMismatch.
func (e *LockMismatchError) Is(err error) bool {
	return err == ErrLockMismatch
}

// NewLockMismatchError returns a new LockMismatchError for the given entity.
func NewLockMismatchError(entity string, declared, computed Fingerprint) *LockMismatchError {
	return &LockMismatchError{Entity: entity, Declared: declared, Computed: computed}
}

// IsLockMismatch returns true if the error is a LockMismatchError.
func IsLockMismatch(err error) bool {
	if err == nil {
		return false
	}
	var e *LockMismatchError
	return errors.As(err, &e) || errors.Is(err, ErrLockMismatch)
}

// StepFailureError wraps an executor failure on one migration step. The
// executor's per-step atomicity guarantee means the store is left at the
// step's source version.
type StepFailureError struct {
	Step  Step
	Index int // zero-based position of the step in its plan
	Err   error
}

// Error returns the error string.
func (e *StepFailureError) Error() string {
	return fmt.Sprintf("strata: migration step %d (%q -> %q) failed: %v",
		e.Index+1, e.Step.Source, e.Step.Destination, e.Err)
}

// Unwrap returns the executor's underlying error.
func (e *StepFailureError) Unwrap() error {
	return e.Err
}

// NewStepFailureError returns a new StepFailureError.
func NewStepFailureError(step Step, index int, err error) *StepFailureError {
	return &StepFailureError{Step: step, Index: index, Err: err}
}

// IsStepFailure returns true if the error is a StepFailureError.
func IsStepFailure(err error) bool {
	if err == nil {
		return false
	}
	var e *StepFailureError
	return errors.As(err, &e)
}

func quoteJoin(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
