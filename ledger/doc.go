// Package ledger implements the namespace-scoped idempotency ledger: the
// persisted set of item URLs that have already exited the pipeline.
//
// Loads fail soft so a missing or corrupt ledger never blocks a run; the
// store writer's exact-identity check backstops any resulting rework.
package ledger
