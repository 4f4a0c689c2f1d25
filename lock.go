package strata

import (
	"fmt"
	"io"
	"sort"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/syssam/strata/schema"
)

// VersionLock records the structural fingerprint of every entity in one
// schema version. A lock is authored once when the version is declared,
// committed next to the schema, and compared against a freshly computed
// lock on every setup: any difference means the schema changed without
// bumping its declared version.
type VersionLock map[string]Fingerprint

// ComputeLock fingerprints every entity of the schema. Entities are
// hashed independently, so the work fans out across goroutines.
func ComputeLock(s *schema.Schema) (VersionLock, error) {
	if s == nil {
		return nil, fmt.Errorf("strata: cannot compute lock for nil schema")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	lock := make(VersionLock, len(s.Entities))
	results := make([]Fingerprint, len(s.Entities))
	var g errgroup.Group
	for i, e := range s.Entities {
		g.Go(func() error {
			f, err := ComputeFingerprint(e)
			if err != nil {
				return err
			}
			results[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, e := range s.Entities {
		lock[e.Name] = results[i]
	}
	return lock, nil
}

// Match compares the authored lock against a freshly computed one. The
// verdict is exact map equality: same entity set, same fingerprint per
// entity. On mismatch it returns a LockMismatchError naming the first
// offending entity in name order, with both fingerprint values; a missing
// or unexpected entity is reported with a zero fingerprint on the absent
// side.
func (l VersionLock) Match(computed VersionLock) error {
	names := make(map[string]struct{}, len(l)+len(computed))
	for name := range l {
		names[name] = struct{}{}
	}
	for name := range computed {
		names[name] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		if l[name] != computed[name] {
			return NewLockMismatchError(name, l[name], computed[name])
		}
	}
	return nil
}

// Entities returns the locked entity names, sorted.
func (l VersionLock) Entities() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteLock writes the lock to w in its committed YAML form: a mapping of
// entity name to fingerprint string, with keys in name order.
func WriteLock(w io.Writer, lock VersionLock) error {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range lock.Entities() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: lock[name].String()},
		)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(node)
}

// ReadLock reads a lock previously written with WriteLock.
func ReadLock(r io.Reader) (VersionLock, error) {
	var raw map[string]Fingerprint
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("strata: reading version lock: %w", err)
	}
	return VersionLock(raw), nil
}
