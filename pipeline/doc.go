// Package pipeline wires the processing stages into one incremental run.
//
// A run for a namespace loads the idempotency ledger, collects the newest
// raw batch from every source, filters lexical near-duplicates, enriches
// the survivors, archives the enriched batch under the processed prefix,
// loads it into the news store, and finally persists the updated ledger.
//
// An item enters the ledger only once it has been enriched and has
// received a final store decision. Items dropped by the lexical filter,
// left beyond the run cap, or stopped by a transient failure are not
// recorded, so the next run picks them up again.
package pipeline
