// Package strata is the schema-versioning and migration-planning core of
// a persistence layer.
//
// Given a set of named schema versions, a [MigrationChain] declaring the
// allowed transitions between them, and the observed shape of an already
// persisted store, strata resolves which registered version the store is
// at, computes an ordered [Plan] of single-edge migration steps to a
// target version, and verifies through per-entity structural
// [Fingerprint] values that declared versions have not silently drifted.
//
// Everything here is planning and verification: the actual data copy and
// transform of a step belongs to an external [StepExecutor]. Chain
// validation, fingerprinting and plan computation are pure and operate
// over immutable declarations, so every query is safe for concurrent use
// without locking.
//
// Declarations and collaborators are always passed explicitly; nothing in
// this package reads global state.
package strata
