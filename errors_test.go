package strata_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata"
)

func TestAmbiguousChainError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := strata.NewAmbiguousChainError("v2", "v1", "v3")
		assert.Equal(t, `strata: ambiguous migration chain: version "v2" is the destination of "v1", "v3"`, err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := strata.NewAmbiguousChainError("v2", "v1", "v3")
		assert.True(t, errors.Is(err, strata.ErrAmbiguousChain))
	})

	t.Run("IsAmbiguousChain", func(t *testing.T) {
		err := strata.NewAmbiguousChainError("v2", "v1")
		assert.True(t, strata.IsAmbiguousChain(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, strata.IsAmbiguousChain(wrapped))

		// Sentinel error
		assert.True(t, strata.IsAmbiguousChain(strata.ErrAmbiguousChain))

		// Non-matching error
		assert.False(t, strata.IsAmbiguousChain(errors.New("other error")))
		assert.False(t, strata.IsAmbiguousChain(nil))
	})
}

func TestCyclicChainError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := strata.NewCyclicChainError([]string{"v1", "v2", "v1"})
		assert.Equal(t, "strata: cyclic migration chain: v1 -> v2 -> v1", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := strata.NewCyclicChainError([]string{"v1", "v1"})
		assert.True(t, errors.Is(err, strata.ErrCyclicChain))
		assert.True(t, strata.IsCyclicChain(err))
		assert.False(t, strata.IsCyclicChain(nil))
	})
}

func TestUnknownVersionError(t *testing.T) {
	err := strata.NewUnknownVersionError("v9")
	assert.Equal(t, `strata: unknown schema version "v9"`, err.Error())
	assert.True(t, errors.Is(err, strata.ErrUnknownVersion))
	assert.True(t, strata.IsUnknownVersion(fmt.Errorf("wrap: %w", err)))
}

func TestNoPathError(t *testing.T) {
	err := strata.NewNoPathError("v4", "v1")
	assert.Equal(t, `strata: no migration path from "v4" to "v1"`, err.Error())
	assert.True(t, errors.Is(err, strata.ErrNoPath))
	assert.True(t, strata.IsNoPath(err))
}

func TestProgressiveRequiredError(t *testing.T) {
	err := strata.NewProgressiveRequiredError("v1", "v4", 3)
	assert.Equal(t, `strata: progressive migration required: "v1" to "v4" needs 3 steps`, err.Error())
	assert.True(t, strata.IsProgressiveRequired(err))
	assert.False(t, strata.IsProgressiveRequired(errors.New("other")))
}

func TestSchemaResolutionErrors(t *testing.T) {
	t.Run("unknown", func(t *testing.T) {
		err := strata.NewUnknownSchemaError([]string{"User", "Post"})
		assert.Contains(t, err.Error(), `"User", "Post"`)
		assert.True(t, errors.Is(err, strata.ErrUnknownSchema))
		assert.True(t, strata.IsUnknownSchema(err))

		bare := strata.NewUnknownSchemaError(nil)
		assert.Equal(t, "strata: store schema matches no registered version", bare.Error())
	})

	t.Run("ambiguous", func(t *testing.T) {
		err := strata.NewAmbiguousSchemaError([]string{"v1", "v2"})
		assert.Contains(t, err.Error(), `"v1", "v2"`)
		assert.True(t, errors.Is(err, strata.ErrAmbiguousSchema))
		assert.True(t, strata.IsAmbiguousSchema(err))
	})
}

func TestLockMismatchError(t *testing.T) {
	declared := strata.Fingerprint{1, 2, 3, 4}
	computed := strata.Fingerprint{1, 2, 3, 5}

	t.Run("both_present", func(t *testing.T) {
		err := strata.NewLockMismatchError("User", declared, computed)
		assert.Contains(t, err.Error(), `entity "User"`)
		assert.Contains(t, err.Error(), declared.String())
		assert.Contains(t, err.Error(), computed.String())
		assert.True(t, errors.Is(err, strata.ErrLockMismatch))
		assert.True(t, strata.IsLockMismatch(err))
	})

	t.Run("not_in_lock", func(t *testing.T) {
		err := strata.NewLockMismatchError("User", strata.Fingerprint{}, computed)
		assert.Contains(t, err.Error(), "not declared in the lock")
	})

	t.Run("not_in_schema", func(t *testing.T) {
		err := strata.NewLockMismatchError("User", declared, strata.Fingerprint{})
		assert.Contains(t, err.Error(), "absent from the schema")
	})

	t.Run("with_version", func(t *testing.T) {
		err := strata.NewLockMismatchError("User", declared, computed)
		err.Version = "v2"
		assert.Contains(t, err.Error(), `in "v2"`)
	})
}

func TestStepFailureError(t *testing.T) {
	cause := errors.New("disk full")
	step := strata.Step{Source: "v2", Destination: "v3"}
	err := strata.NewStepFailureError(step, 1, cause)

	assert.Equal(t, `strata: migration step 2 ("v2" -> "v3") failed: disk full`, err.Error())
	assert.True(t, strata.IsStepFailure(err))
	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}
