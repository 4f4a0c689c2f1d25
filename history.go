package strata

import (
	"errors"
	"fmt"

	"github.com/syssam/strata/schema"
)

// SchemaVersion is one registered revision of the persistence schema: an
// opaque identifier, the full entity shape declared under that
// identifier, and an optional authored version lock.
type SchemaVersion struct {
	ID     string
	Schema *schema.Schema
	Lock   VersionLock // nil when the version carries no authored lock
}

// SchemaHistory is the ordered registry of every known schema version
// together with the migration chain connecting them. It is built once at
// setup and read-only afterwards, so all queries are safe for concurrent
// use without locking.
type SchemaHistory struct {
	versions []SchemaVersion
	byID     map[string]int
	chain    *MigrationChain
	legacy   string // registered version matched with relaxed compatibility, "" if none
}

// HistoryOption configures SchemaHistory construction.
type HistoryOption func(*SchemaHistory)

// WithLegacyVersion marks one registered version as predating explicit
// versioning. When an observed store shape matches no version exactly,
// resolution falls back to relaxed compatibility matching against this
// entry only.
func WithLegacyVersion(id string) HistoryOption {
	return func(h *SchemaHistory) {
		h.legacy = id
	}
}

// NewSchemaHistory builds and validates the version registry.
//
// Construction fails if a version identifier repeats, if the chain
// references more than one identifier that was never registered (a single
// unregistered chain node is tolerated for stores predating explicit
// versioning), or if any authored version lock disagrees with the lock
// computed from that version's declared schema. Lock drift is a
// configuration bug and is surfaced here, before any plan is computed.
func NewSchemaHistory(versions []SchemaVersion, chain *MigrationChain, opts ...HistoryOption) (*SchemaHistory, error) {
	if chain == nil {
		chain = EmptyChain()
	}
	h := &SchemaHistory{
		versions: versions,
		byID:     make(map[string]int, len(versions)),
		chain:    chain,
	}
	for _, opt := range opts {
		opt(h)
	}
	for i, v := range versions {
		if v.ID == "" {
			return nil, ErrEmptyVersion
		}
		if _, ok := h.byID[v.ID]; ok {
			return nil, NewDuplicateVersionError(v.ID)
		}
		if v.Schema == nil {
			return nil, fmt.Errorf("strata: version %q has no schema", v.ID)
		}
		if err := v.Schema.Validate(); err != nil {
			return nil, fmt.Errorf("strata: version %q: %w", v.ID, err)
		}
		h.byID[v.ID] = i
	}
	if h.legacy != "" {
		if _, ok := h.byID[h.legacy]; !ok {
			return nil, NewUnknownVersionError(h.legacy)
		}
	}
	unregistered := 0
	for _, node := range chain.Versions() {
		if _, ok := h.byID[node]; !ok {
			unregistered++
			if unregistered > 1 {
				return nil, fmt.Errorf("strata: chain references unregistered version %q: %w",
					node, ErrUnknownVersion)
			}
		}
	}
	for _, v := range versions {
		if v.Lock == nil {
			continue
		}
		computed, err := ComputeLock(v.Schema)
		if err != nil {
			return nil, fmt.Errorf("strata: version %q: %w", v.ID, err)
		}
		if err := v.Lock.Match(computed); err != nil {
			var mismatch *LockMismatchError
			if errors.As(err, &mismatch) {
				mismatch.Version = v.ID
			}
			return nil, err
		}
	}
	return h, nil
}

// Chain returns the validated migration chain.
func (h *SchemaHistory) Chain() *MigrationChain {
	return h.chain
}

// Contains reports whether the identifier names a registered version.
func (h *SchemaHistory) Contains(id string) bool {
	_, ok := h.byID[id]
	return ok
}

// Version returns the registered version for the identifier.
func (h *SchemaHistory) Version(id string) (SchemaVersion, bool) {
	i, ok := h.byID[id]
	if !ok {
		return SchemaVersion{}, false
	}
	return h.versions[i], true
}

// Versions returns all registered versions in registration order.
func (h *SchemaHistory) Versions() []SchemaVersion {
	out := make([]SchemaVersion, len(h.versions))
	copy(out, h.versions)
	return out
}

// LatestVersions returns the registered versions that are leaves of the
// chain: the versions nothing migrates away from. For a chain declaring
// no transitions, every registered version counts.
func (h *SchemaHistory) LatestVersions() []string {
	if h.chain.Empty() {
		ids := make([]string, len(h.versions))
		for i, v := range h.versions {
			ids[i] = v.ID
		}
		return ids
	}
	var latest []string
	for _, leaf := range h.chain.LeafVersions() {
		if h.Contains(leaf) {
			latest = append(latest, leaf)
		}
	}
	return latest
}

// ResolveCurrentVersion finds the single registered version whose
// declared shape matches the observed store shape. Matching is exact
// structural equivalence; if nothing matches exactly and a legacy version
// was registered, a relaxed compatibility pass runs against that entry
// alone. Zero matches yield UnknownSchemaError, more than one yield
// AmbiguousSchemaError — resolution never guesses between candidates.
func (h *SchemaHistory) ResolveCurrentVersion(observed *schema.Schema) (string, error) {
	if observed == nil {
		return "", fmt.Errorf("strata: cannot resolve nil store shape")
	}
	var matches []string
	for _, v := range h.versions {
		if v.Schema.EquivalentTo(observed) {
			matches = append(matches, v.ID)
		}
	}
	if len(matches) == 0 && h.legacy != "" {
		legacy, _ := h.Version(h.legacy)
		if legacy.Schema.CompatibleWith(observed) {
			matches = append(matches, legacy.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", NewUnknownSchemaError(observed.EntityNames())
	case 1:
		return matches[0], nil
	default:
		return "", NewAmbiguousSchemaError(matches)
	}
}

// Path returns the version sequence from one registered version to
// another, following the chain.
func (h *SchemaHistory) Path(from, to string) ([]string, error) {
	return h.chain.Path(from, to)
}
