package strata_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata"
	"github.com/syssam/strata/schema"
)

func TestComputeLock(t *testing.T) {
	t.Parallel()

	t.Run("all_entities_locked", func(t *testing.T) {
		lock, err := strata.ComputeLock(testSchema(t, userEntity(), postEntity()))
		require.NoError(t, err)
		assert.Equal(t, []string{"Post", "User"}, lock.Entities())
		for _, name := range lock.Entities() {
			assert.False(t, lock[name].IsZero())
		}
	})

	t.Run("entity_order_irrelevant", func(t *testing.T) {
		a, err := strata.ComputeLock(testSchema(t, userEntity(), postEntity()))
		require.NoError(t, err)
		b, err := strata.ComputeLock(testSchema(t, postEntity(), userEntity()))
		require.NoError(t, err)
		assert.NoError(t, a.Match(b))
		assert.NoError(t, b.Match(a))
	})

	t.Run("nil_schema", func(t *testing.T) {
		_, err := strata.ComputeLock(nil)
		assert.Error(t, err)
	})
}

func TestVersionLockMatch(t *testing.T) {
	t.Parallel()

	authored, err := strata.ComputeLock(testSchema(t, userEntity(), postEntity()))
	require.NoError(t, err)

	t.Run("identical", func(t *testing.T) {
		computed, err := strata.ComputeLock(testSchema(t, userEntity(), postEntity()))
		require.NoError(t, err)
		assert.NoError(t, authored.Match(computed))
	})

	t.Run("drifted_entity", func(t *testing.T) {
		drifted := userEntity()
		drifted.Attributes = append(drifted.Attributes, schema.Attribute{
			Name: "nickname", Type: schema.TypeString, Optional: true,
		})
		computed, err := strata.ComputeLock(testSchema(t, drifted, postEntity()))
		require.NoError(t, err)

		err = authored.Match(computed)
		require.Error(t, err)
		assert.True(t, strata.IsLockMismatch(err))
		assert.ErrorIs(t, err, strata.ErrLockMismatch)

		var mismatch *strata.LockMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "User", mismatch.Entity)
		assert.Equal(t, authored["User"], mismatch.Declared)
		assert.Equal(t, computed["User"], mismatch.Computed)
		assert.NotEqual(t, mismatch.Declared, mismatch.Computed)
	})

	t.Run("entity_removed", func(t *testing.T) {
		computed, err := strata.ComputeLock(testSchema(t, userEntity()))
		require.NoError(t, err)

		err = authored.Match(computed)
		var mismatch *strata.LockMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "Post", mismatch.Entity)
		assert.True(t, mismatch.Computed.IsZero())
		assert.False(t, mismatch.Declared.IsZero())
	})

	t.Run("entity_added", func(t *testing.T) {
		extra := &schema.Entity{
			Name:       "Tag",
			Attributes: []schema.Attribute{{Name: "label", Type: schema.TypeString}},
		}
		computed, err := strata.ComputeLock(testSchema(t, userEntity(), postEntity(), extra))
		require.NoError(t, err)

		err = authored.Match(computed)
		var mismatch *strata.LockMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "Tag", mismatch.Entity)
		assert.True(t, mismatch.Declared.IsZero())
	})
}

func TestLockFileRoundTrip(t *testing.T) {
	t.Parallel()

	lock, err := strata.ComputeLock(testSchema(t, userEntity(), postEntity()))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, strata.WriteLock(&buf, lock))

	got, err := strata.ReadLock(&buf)
	require.NoError(t, err)
	assert.NoError(t, lock.Match(got))
}

func TestReadLockMalformed(t *testing.T) {
	t.Parallel()

	_, err := strata.ReadLock(bytes.NewReader([]byte("User: [1, 2]\n")))
	assert.Error(t, err)
}
