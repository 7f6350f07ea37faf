// Package enrich annotates content items with a machine-generated summary
// and sentiment label.
//
// The engine is built to survive an unreliable, quota-limited generation
// backend: credential rotation happens inside the ai.Generator, pacing
// between calls is unconditional, long inputs are truncated head+tail,
// and malformed output is repaired or replaced rather than surfaced as an
// error. The worst case for any item is the default ("", Neutral) pair.
package enrich
