package strata_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/schema"
)

// userEntity returns the canonical test entity. Callers mutate the copy
// freely.
func userEntity() *schema.Entity {
	return &schema.Entity{
		Name: "User",
		Attributes: []schema.Attribute{
			{Name: "email", Type: schema.TypeString},
			{Name: "name", Type: schema.TypeString, Optional: true},
			{Name: "age", Type: schema.TypeInt, Optional: true, Default: "0"},
		},
		Relationships: []schema.Relationship{
			{Name: "posts", Destination: "Post", Cardinality: schema.ToMany, DeleteRule: schema.Cascade, Inverse: "author"},
		},
		Indexes: []schema.Index{
			{Fields: []string{"email"}, Unique: true},
		},
	}
}

func postEntity() *schema.Entity {
	return &schema.Entity{
		Name: "Post",
		Attributes: []schema.Attribute{
			{Name: "title", Type: schema.TypeString},
			{Name: "body", Type: schema.TypeString, Optional: true},
		},
		Relationships: []schema.Relationship{
			{Name: "author", Destination: "User", Cardinality: schema.ToOne, DeleteRule: schema.Nullify, Inverse: "posts"},
		},
	}
}

func testSchema(t *testing.T, entities ...*schema.Entity) *schema.Schema {
	t.Helper()
	s, err := schema.New(entities...)
	require.NoError(t, err)
	return s
}
