package strata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata"
)

func TestEmptyChain(t *testing.T) {
	t.Parallel()

	c := strata.EmptyChain()
	assert.True(t, c.Empty())
	assert.Zero(t, c.Len())
	assert.False(t, c.Contains("v1"))
	_, ok := c.NextVersionFrom("v1")
	assert.False(t, ok)
	assert.Empty(t, c.RootVersions())
	assert.Empty(t, c.LeafVersions())
}

func TestLinearChain(t *testing.T) {
	t.Parallel()

	t.Run("no_versions", func(t *testing.T) {
		c, err := strata.LinearChain()
		require.NoError(t, err)
		assert.True(t, c.Empty())
	})

	t.Run("single_version", func(t *testing.T) {
		c, err := strata.LinearChain("v1")
		require.NoError(t, err)
		assert.True(t, c.Empty())
		assert.True(t, c.Contains("v1"))
		assert.False(t, c.Contains("v2"))
		_, ok := c.NextVersionFrom("v1")
		assert.False(t, ok)
	})

	t.Run("ordered_list", func(t *testing.T) {
		c, err := strata.LinearChain("v1", "v2", "v3", "v4")
		require.NoError(t, err)
		assert.False(t, c.Empty())
		assert.Equal(t, 4, c.Len())

		next, ok := c.NextVersionFrom("v1")
		require.True(t, ok)
		assert.Equal(t, "v2", next)

		next, ok = c.NextVersionFrom("v3")
		require.True(t, ok)
		assert.Equal(t, "v4", next)

		_, ok = c.NextVersionFrom("v4")
		assert.False(t, ok)

		assert.Equal(t, []string{"v1"}, c.RootVersions())
		assert.Equal(t, []string{"v4"}, c.LeafVersions())
	})

	t.Run("repeated_identifier", func(t *testing.T) {
		_, err := strata.LinearChain("v1", "v2", "v1", "v3")
		require.Error(t, err)
		assert.True(t, strata.IsDuplicateVersion(err))

		var dup *strata.DuplicateVersionError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "v1", dup.Version)
	})

	t.Run("empty_identifier", func(t *testing.T) {
		_, err := strata.LinearChain("v1", "")
		assert.ErrorIs(t, err, strata.ErrEmptyVersion)
	})
}

func TestTreeChain(t *testing.T) {
	t.Parallel()

	t.Run("branching", func(t *testing.T) {
		// Two independent lineages: v1 -> v2 -> v5 and v3 -> v4.
		c, err := strata.TreeChain(map[string]string{
			"v1": "v2",
			"v2": "v5",
			"v3": "v4",
		})
		require.NoError(t, err)

		next, ok := c.NextVersionFrom("v2")
		require.True(t, ok)
		assert.Equal(t, "v5", next)

		next, ok = c.NextVersionFrom("v1")
		require.True(t, ok)
		assert.Equal(t, "v2", next)

		_, ok = c.NextVersionFrom("v4")
		assert.False(t, ok)

		assert.Equal(t, []string{"v1", "v3"}, c.RootVersions())
		assert.Equal(t, []string{"v4", "v5"}, c.LeafVersions())
	})

	t.Run("converging_lineages_ambiguous", func(t *testing.T) {
		_, err := strata.TreeChain(map[string]string{
			"v1": "v4",
			"v2": "v3",
			"v3": "v4",
		})
		require.Error(t, err)
		assert.True(t, strata.IsAmbiguousChain(err))
	})

	t.Run("ambiguous_destination", func(t *testing.T) {
		_, err := strata.TreeChain(map[string]string{
			"v1": "v2",
			"v3": "v2",
		})
		require.Error(t, err)
		assert.True(t, strata.IsAmbiguousChain(err))
		assert.ErrorIs(t, err, strata.ErrAmbiguousChain)

		var amb *strata.AmbiguousChainError
		require.ErrorAs(t, err, &amb)
		assert.Equal(t, "v2", amb.Destination)
		assert.Equal(t, []string{"v1", "v3"}, amb.Sources)
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := strata.TreeChain(map[string]string{
			"v1": "v2",
			"v2": "v3",
			"v3": "v1",
		})
		require.Error(t, err)
		assert.True(t, strata.IsCyclicChain(err))
		assert.ErrorIs(t, err, strata.ErrCyclicChain)
	})

	t.Run("self_loop", func(t *testing.T) {
		_, err := strata.TreeChain(map[string]string{"v1": "v1"})
		assert.True(t, strata.IsCyclicChain(err))
	})

	t.Run("empty_identifier", func(t *testing.T) {
		_, err := strata.TreeChain(map[string]string{"": "v1"})
		assert.ErrorIs(t, err, strata.ErrEmptyVersion)
	})
}

// TestChainWalkTermination checks that walking from any root reaches a
// leaf without revisiting a node, bounded by the version count.
func TestChainWalkTermination(t *testing.T) {
	t.Parallel()

	chains := map[string]func() (*strata.MigrationChain, error){
		"linear": func() (*strata.MigrationChain, error) {
			return strata.LinearChain("v1", "v2", "v3", "v4", "v5")
		},
		"tree": func() (*strata.MigrationChain, error) {
			return strata.TreeChain(map[string]string{
				"v1": "v2",
				"v2": "v3",
				"a1": "a2",
				"a2": "a3",
			})
		},
	}
	for name, build := range chains {
		t.Run(name, func(t *testing.T) {
			c, err := build()
			require.NoError(t, err)
			for _, root := range c.RootVersions() {
				visited := map[string]bool{}
				steps := 0
				v := root
				for {
					assert.False(t, visited[v], "revisited %q", v)
					visited[v] = true
					next, ok := c.NextVersionFrom(v)
					if !ok {
						break
					}
					v = next
					steps++
					require.LessOrEqual(t, steps, c.Len())
				}
				assert.Contains(t, c.LeafVersions(), v)
			}
		})
	}
}

func TestChainPath(t *testing.T) {
	t.Parallel()

	c, err := strata.LinearChain("v1", "v2", "v3", "v4")
	require.NoError(t, err)

	t.Run("full_walk", func(t *testing.T) {
		path, err := c.Path("v1", "v4")
		require.NoError(t, err)
		assert.Equal(t, []string{"v1", "v2", "v3", "v4"}, path)
	})

	t.Run("same_version", func(t *testing.T) {
		path, err := c.Path("v2", "v2")
		require.NoError(t, err)
		assert.Equal(t, []string{"v2"}, path)
	})

	t.Run("from_leaf", func(t *testing.T) {
		_, err := c.Path("v4", "v1")
		require.Error(t, err)
		assert.True(t, strata.IsNoPath(err))

		var noPath *strata.NoPathError
		require.ErrorAs(t, err, &noPath)
		assert.Equal(t, "v4", noPath.Source)
		assert.Equal(t, "v1", noPath.Target)
	})

	t.Run("unknown_source", func(t *testing.T) {
		_, err := c.Path("v9", "v4")
		assert.True(t, strata.IsUnknownVersion(err))
	})
}
