package schema

import "fmt"

// AttributeType is the storage type of an entity attribute.
type AttributeType uint8

// Attribute types supported by the structural model.
const (
	TypeInvalid AttributeType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeBytes
	TypeTime
	TypeUUID
	TypeJSON
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeString:  "string",
	TypeBytes:   "bytes",
	TypeTime:    "time",
	TypeUUID:    "uuid",
	TypeJSON:    "json",
}

// Valid reports whether t is a declared attribute type.
func (t AttributeType) Valid() bool {
	return t > TypeInvalid && int(t) < len(typeNames)
}

// String returns the type name.
func (t AttributeType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("invalid(%d)", t)
}

// MarshalText implements encoding.TextMarshaler.
func (t AttributeType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("schema: cannot marshal attribute type %d", t)
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *AttributeType) UnmarshalText(b []byte) error {
	for i, name := range typeNames {
		if i > 0 && name == string(b) {
			*t = AttributeType(i)
			return nil
		}
	}
	return fmt.Errorf("schema: unknown attribute type %q", b)
}

// Cardinality is the multiplicity of a relationship's destination.
type Cardinality uint8

// Relationship cardinalities.
const (
	ToOne Cardinality = iota
	ToMany
)

// String returns the cardinality name.
func (c Cardinality) String() string {
	switch c {
	case ToOne:
		return "to_one"
	case ToMany:
		return "to_many"
	}
	return fmt.Sprintf("invalid(%d)", c)
}

// MarshalText implements encoding.TextMarshaler.
func (c Cardinality) MarshalText() ([]byte, error) {
	switch c {
	case ToOne, ToMany:
		return []byte(c.String()), nil
	}
	return nil, fmt.Errorf("schema: cannot marshal cardinality %d", c)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cardinality) UnmarshalText(b []byte) error {
	switch string(b) {
	case "to_one":
		*c = ToOne
	case "to_many":
		*c = ToMany
	default:
		return fmt.Errorf("schema: unknown cardinality %q", b)
	}
	return nil
}

// DeleteRule describes what happens to related objects when the source
// object is deleted.
type DeleteRule uint8

// Relationship delete rules.
const (
	NoAction DeleteRule = iota
	Nullify
	Cascade
	Deny
)

var deleteRuleNames = [...]string{
	NoAction: "no_action",
	Nullify:  "nullify",
	Cascade:  "cascade",
	Deny:     "deny",
}

// String returns the delete rule name.
func (d DeleteRule) String() string {
	if int(d) < len(deleteRuleNames) {
		return deleteRuleNames[d]
	}
	return fmt.Sprintf("invalid(%d)", d)
}

// MarshalText implements encoding.TextMarshaler.
func (d DeleteRule) MarshalText() ([]byte, error) {
	if int(d) >= len(deleteRuleNames) {
		return nil, fmt.Errorf("schema: cannot marshal delete rule %d", d)
	}
	return []byte(deleteRuleNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DeleteRule) UnmarshalText(b []byte) error {
	for i, name := range deleteRuleNames {
		if name == string(b) {
			*d = DeleteRule(i)
			return nil
		}
	}
	return fmt.Errorf("schema: unknown delete rule %q", b)
}
