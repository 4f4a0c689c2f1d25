package schema

import (
	"fmt"
)

// Attribute describes one persisted property of an entity.
type Attribute struct {
	Name      string        `json:"name" yaml:"name" msgpack:"name"`
	Type      AttributeType `json:"type" yaml:"type" msgpack:"type"`
	Optional  bool          `json:"optional,omitempty" yaml:"optional,omitempty" msgpack:"optional"`
	Default   string        `json:"default,omitempty" yaml:"default,omitempty" msgpack:"default"`
	Transient bool          `json:"transient,omitempty" yaml:"transient,omitempty" msgpack:"transient"`

	// Comment is display metadata. It never participates in structural
	// comparison or fingerprinting.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty" msgpack:"-"`
}

// Relationship describes a directed association from one entity to another.
type Relationship struct {
	Name        string      `json:"name" yaml:"name" msgpack:"name"`
	Destination string      `json:"destination" yaml:"destination" msgpack:"destination"`
	Cardinality Cardinality `json:"cardinality" yaml:"cardinality" msgpack:"cardinality"`
	DeleteRule  DeleteRule  `json:"delete_rule" yaml:"delete_rule" msgpack:"delete_rule"`
	Inverse     string      `json:"inverse,omitempty" yaml:"inverse,omitempty" msgpack:"inverse"`
	Ordered     bool        `json:"ordered,omitempty" yaml:"ordered,omitempty" msgpack:"ordered"`

	// Comment is display metadata, excluded from structural comparison.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty" msgpack:"-"`
}

// Index describes a compound index over entity attributes.
type Index struct {
	Fields []string `json:"fields" yaml:"fields" msgpack:"fields"`
	Unique bool     `json:"unique,omitempty" yaml:"unique,omitempty" msgpack:"unique"`
}

// Entity describes the complete persisted shape of one entity type
// within a single schema version.
type Entity struct {
	Name          string         `json:"name" yaml:"name" msgpack:"name"`
	Attributes    []Attribute    `json:"attributes,omitempty" yaml:"attributes,omitempty" msgpack:"attributes"`
	Relationships []Relationship `json:"relationships,omitempty" yaml:"relationships,omitempty" msgpack:"relationships"`
	Indexes       []Index        `json:"indexes,omitempty" yaml:"indexes,omitempty" msgpack:"indexes"`

	// DisplayName and Comment are display metadata, excluded from
	// structural comparison and fingerprinting.
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty" msgpack:"-"`
	Comment     string `json:"comment,omitempty" yaml:"comment,omitempty" msgpack:"-"`
}

// Schema is the full entity shape of one schema version. A Schema is
// built once and treated as immutable afterwards.
type Schema struct {
	Entities []*Entity `json:"entities" yaml:"entities"`
}

// New builds a validated schema from the given entities.
func New(entities ...*Entity) (*Schema, error) {
	s := &Schema{Entities: entities}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Entity returns the entity with the given name, or nil if it is not declared.
func (s *Schema) Entity(name string) *Entity {
	for _, e := range s.Entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// EntityNames returns the names of all declared entities in declaration order.
func (s *Schema) EntityNames() []string {
	names := make([]string, len(s.Entities))
	for i, e := range s.Entities {
		names[i] = e.Name
	}
	return names
}

// Validate checks the schema declaration for structural mistakes:
// empty or duplicate entity names, and per-entity violations.
func (s *Schema) Validate() error {
	seen := make(map[string]struct{}, len(s.Entities))
	for _, e := range s.Entities {
		if e == nil {
			return fmt.Errorf("schema: nil entity declaration")
		}
		if e.Name == "" {
			return fmt.Errorf("schema: entity with empty name")
		}
		if _, ok := seen[e.Name]; ok {
			return fmt.Errorf("schema: duplicate entity %q", e.Name)
		}
		seen[e.Name] = struct{}{}
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Attribute returns the attribute with the given name, or nil.
func (e *Entity) Attribute(name string) *Attribute {
	for i := range e.Attributes {
		if e.Attributes[i].Name == name {
			return &e.Attributes[i]
		}
	}
	return nil
}

// Relationship returns the relationship with the given name, or nil.
func (e *Entity) Relationship(name string) *Relationship {
	for i := range e.Relationships {
		if e.Relationships[i].Name == name {
			return &e.Relationships[i]
		}
	}
	return nil
}

// Validate checks one entity declaration: member names must be non-empty
// and unique across attributes and relationships, and every index column
// must name a declared attribute.
func (e *Entity) Validate() error {
	members := make(map[string]struct{}, len(e.Attributes)+len(e.Relationships))
	for i := range e.Attributes {
		a := &e.Attributes[i]
		if a.Name == "" {
			return fmt.Errorf("schema: entity %q: attribute with empty name", e.Name)
		}
		if _, ok := members[a.Name]; ok {
			return fmt.Errorf("schema: entity %q: duplicate member %q", e.Name, a.Name)
		}
		members[a.Name] = struct{}{}
		if !a.Type.Valid() {
			return fmt.Errorf("schema: entity %q: attribute %q has invalid type", e.Name, a.Name)
		}
	}
	for i := range e.Relationships {
		r := &e.Relationships[i]
		if r.Name == "" {
			return fmt.Errorf("schema: entity %q: relationship with empty name", e.Name)
		}
		if _, ok := members[r.Name]; ok {
			return fmt.Errorf("schema: entity %q: duplicate member %q", e.Name, r.Name)
		}
		members[r.Name] = struct{}{}
		if r.Destination == "" {
			return fmt.Errorf("schema: entity %q: relationship %q has no destination", e.Name, r.Name)
		}
	}
	for _, idx := range e.Indexes {
		if len(idx.Fields) == 0 {
			return fmt.Errorf("schema: entity %q: index with no fields", e.Name)
		}
		for _, f := range idx.Fields {
			if e.Attribute(f) == nil {
				return fmt.Errorf("schema: entity %q: index references unknown attribute %q", e.Name, f)
			}
		}
	}
	return nil
}
