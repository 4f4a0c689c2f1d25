// Package schema describes the persisted shape of one schema version:
// entities, their attributes, relationships and compound indexes.
//
// A Schema is a plain, declarative value. It is built once (by hand, from
// a declaration source, or by a store inspector) and treated as immutable
// afterwards, which makes every query on it safe for concurrent use.
//
// Two schemas can be compared structurally with [Schema.EquivalentTo],
// which ignores declaration order and display metadata, or with the
// relaxed [Schema.CompatibleWith] used to match stores that predate
// explicit versioning.
package schema
