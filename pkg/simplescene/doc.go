// Package simplescene provides a reusable library for scene-graph data
// management with pluggable repository and archive storage backends.
//
// It exposes a single Service interface that orchestrates scenes, nodes,
// typed attributes, and directed node connections, plus typed attribute
// accessors with fixed missing-value defaults. Implementations of
// repositories (e.g., memory, Postgres) and archive stores (e.g., memory,
// filesystem, S3) are provided under subpackages.
//
// Missing-Value Strategy
//
// Attribute absence is a normal state, not an error. Typed reads on a node
// whose attribute does not exist return a fixed default ("" for strings,
// MissingInt for ints, MissingFloat for floats, an empty document for JSON,
// nil for connections) so callers can branch on "never assigned" without
// probing first. A missing node, by contrast, is always an error. Typed
// writes create the backing attribute on first use; a nil value creates the
// attribute without writing it.
package simplescene
