// Package mock provides test doubles for the ai service interfaces.
// Behavior is injected through function fields; defaults are
// deterministic so tests stay reproducible.
package mock
