package strata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/strata/schema"
)

// Fingerprint is a structural hash of one entity's persisted shape. It is
// a pure function of the entity's structural description: attribute
// names, types, optionality and defaults, relationship wiring, and
// compound indexes. Display metadata and the declaration order of members
// never affect it, and the computation is stable across runs and
// platforms.
//
// The four slots digest separate aspects of the entity so a mismatch
// narrows down what drifted:
//
//	slot 0: entity identity (name)
//	slot 1: attributes
//	slot 2: relationships
//	slot 3: compound indexes
type Fingerprint [4]uint64

// IsZero reports whether f is the zero fingerprint. No computed
// fingerprint is ever zero: the identity slot always covers the
// non-empty entity name.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// String formats the fingerprint for diagnostics.
func (f Fingerprint) String() string {
	parts := make([]string, len(f))
	for i, slot := range f {
		parts[i] = fmt.Sprintf("0x%016x", slot)
	}
	return strings.Join(parts, "-")
}

// MarshalYAML encodes the fingerprint in its diagnostic string form, the
// format used in committed version-lock files.
func (f Fingerprint) MarshalYAML() (any, error) {
	return f.String(), nil
}

// UnmarshalYAML decodes the string form produced by MarshalYAML.
func (f *Fingerprint) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return f.parse(s)
}

func (f *Fingerprint) parse(s string) error {
	parts := strings.Split(s, "-")
	if len(parts) != len(f) {
		return fmt.Errorf("strata: malformed fingerprint %q", s)
	}
	for i, p := range parts {
		hex, ok := strings.CutPrefix(p, "0x")
		if !ok || len(hex) != 16 {
			return fmt.Errorf("strata: malformed fingerprint %q", s)
		}
		slot, err := strconv.ParseUint(hex, 16, 64)
		if err != nil {
			return fmt.Errorf("strata: malformed fingerprint %q: %v", s, err)
		}
		(*f)[i] = slot
	}
	return nil
}

// canonicalAttribute et al. are the exact byte-level inputs of the hash.
// They carry only structural members, in fixed field order, with members
// sorted by name, so that encoding is deterministic and metadata can
// never leak into the digest.
type canonicalAttribute struct {
	Name      string               `msgpack:"name"`
	Type      schema.AttributeType `msgpack:"type"`
	Optional  bool                 `msgpack:"optional"`
	Default   string               `msgpack:"default"`
	Transient bool                 `msgpack:"transient"`
}

type canonicalRelationship struct {
	Name        string             `msgpack:"name"`
	Destination string             `msgpack:"destination"`
	Cardinality schema.Cardinality `msgpack:"cardinality"`
	DeleteRule  schema.DeleteRule  `msgpack:"delete_rule"`
	Inverse     string             `msgpack:"inverse"`
	Ordered     bool               `msgpack:"ordered"`
}

type canonicalIndex struct {
	Fields []string `msgpack:"fields"`
	Unique bool     `msgpack:"unique"`
}

// ComputeFingerprint derives the structural fingerprint of one entity.
// The entity is canonicalized (members sorted by name, metadata dropped)
// and msgpack-encoded per aspect, and each aspect's byte stream is
// digested with xxhash into its slot.
func ComputeFingerprint(e *schema.Entity) (Fingerprint, error) {
	if e == nil {
		return Fingerprint{}, fmt.Errorf("strata: cannot fingerprint nil entity")
	}
	if e.Name == "" {
		return Fingerprint{}, fmt.Errorf("strata: cannot fingerprint entity with empty name")
	}
	if err := e.Validate(); err != nil {
		return Fingerprint{}, err
	}

	attrs := make([]canonicalAttribute, len(e.Attributes))
	for i, a := range e.Attributes {
		attrs[i] = canonicalAttribute{
			Name:      a.Name,
			Type:      a.Type,
			Optional:  a.Optional,
			Default:   a.Default,
			Transient: a.Transient,
		}
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })

	rels := make([]canonicalRelationship, len(e.Relationships))
	for i, r := range e.Relationships {
		rels[i] = canonicalRelationship{
			Name:        r.Name,
			Destination: r.Destination,
			Cardinality: r.Cardinality,
			DeleteRule:  r.DeleteRule,
			Inverse:     r.Inverse,
			Ordered:     r.Ordered,
		}
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].Name < rels[j].Name })

	indexes := make([]canonicalIndex, len(e.Indexes))
	for i, idx := range e.Indexes {
		indexes[i] = canonicalIndex{Fields: idx.Fields, Unique: idx.Unique}
	}
	sort.Slice(indexes, func(i, j int) bool {
		return indexKey(indexes[i]) < indexKey(indexes[j])
	})

	var f Fingerprint
	for slot, aspect := range []any{e.Name, attrs, rels, indexes} {
		digest, err := hashAspect(aspect)
		if err != nil {
			return Fingerprint{}, fmt.Errorf("strata: fingerprint entity %q: %w", e.Name, err)
		}
		f[slot] = digest
	}
	return f, nil
}

func hashAspect(aspect any) (uint64, error) {
	b, err := msgpack.Marshal(aspect)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(b), nil
}

func indexKey(idx canonicalIndex) string {
	k := strings.Join(idx.Fields, "\x00")
	if idx.Unique {
		k += "\x01"
	}
	return k
}
