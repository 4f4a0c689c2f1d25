package schema

import "sort"

// EquivalentTo reports whether s and other declare structurally identical
// shapes. Declaration order of entities and of members within an entity is
// irrelevant; display metadata (comments, display names) is ignored.
func (s *Schema) EquivalentTo(other *Schema) bool {
	if other == nil || len(s.Entities) != len(other.Entities) {
		return false
	}
	for _, e := range s.Entities {
		oe := other.Entity(e.Name)
		if oe == nil || !e.EquivalentTo(oe) {
			return false
		}
	}
	return true
}

// EquivalentTo reports whether two entities have identical structure:
// same attributes (name, type, optionality, default, transience), same
// relationships, and the same index set.
func (e *Entity) EquivalentTo(other *Entity) bool {
	if other == nil || e.Name != other.Name {
		return false
	}
	if len(e.Attributes) != len(other.Attributes) ||
		len(e.Relationships) != len(other.Relationships) ||
		len(e.Indexes) != len(other.Indexes) {
		return false
	}
	for i := range e.Attributes {
		a := &e.Attributes[i]
		oa := other.Attribute(a.Name)
		if oa == nil || !a.structuralEqual(oa) {
			return false
		}
	}
	for i := range e.Relationships {
		r := &e.Relationships[i]
		or := other.Relationship(r.Name)
		if or == nil || !r.structuralEqual(or) {
			return false
		}
	}
	return indexSetEqual(e.Indexes, other.Indexes)
}

// CompatibleWith reports whether an observed store shape could have been
// produced by this declared schema, using relaxed matching for stores
// predating explicit versioning: observed attributes must exist in the
// declaration with matching types, declared attributes absent from the
// store must be optional, carry a default, or be transient, and indexes
// and delete rules are not compared at all.
func (s *Schema) CompatibleWith(observed *Schema) bool {
	if observed == nil {
		return false
	}
	for _, oe := range observed.Entities {
		e := s.Entity(oe.Name)
		if e == nil {
			return false
		}
		if !e.compatibleWith(oe) {
			return false
		}
	}
	return true
}

func (e *Entity) compatibleWith(observed *Entity) bool {
	for i := range observed.Attributes {
		oa := &observed.Attributes[i]
		a := e.Attribute(oa.Name)
		if a == nil || a.Type != oa.Type {
			return false
		}
	}
	for i := range e.Attributes {
		a := &e.Attributes[i]
		if observed.Attribute(a.Name) != nil {
			continue
		}
		if !a.Optional && a.Default == "" && !a.Transient {
			return false
		}
	}
	for i := range observed.Relationships {
		or := &observed.Relationships[i]
		r := e.Relationship(or.Name)
		if r == nil || r.Destination != or.Destination || r.Cardinality != or.Cardinality {
			return false
		}
	}
	return true
}

func (a *Attribute) structuralEqual(other *Attribute) bool {
	return a.Name == other.Name &&
		a.Type == other.Type &&
		a.Optional == other.Optional &&
		a.Default == other.Default &&
		a.Transient == other.Transient
}

func (r *Relationship) structuralEqual(other *Relationship) bool {
	return r.Name == other.Name &&
		r.Destination == other.Destination &&
		r.Cardinality == other.Cardinality &&
		r.DeleteRule == other.DeleteRule &&
		r.Inverse == other.Inverse &&
		r.Ordered == other.Ordered
}

func indexSetEqual(a, b []Index) bool {
	if len(a) != len(b) {
		return false
	}
	ka, kb := indexKeys(a), indexKeys(b)
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
	}
	return true
}

// indexKeys returns a sorted canonical key per index so the comparison
// does not depend on declaration order.
func indexKeys(indexes []Index) []string {
	keys := make([]string, len(indexes))
	for i, idx := range indexes {
		k := ""
		for _, f := range idx.Fields {
			k += f + "\x00"
		}
		if idx.Unique {
			k += "\x01"
		}
		keys[i] = k
	}
	sort.Strings(keys)
	return keys
}
