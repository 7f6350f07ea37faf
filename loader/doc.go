// Package loader writes enriched items to the news store.
//
// For each item the loader skips exact URL duplicates, embeds the
// title+summary blob, rejects items whose nearest stored neighbour from
// the trailing window is too similar, and inserts the rest. A batch is
// written within a single transaction; item-level failures are recorded
// per item rather than aborting the batch.
//
// A failed similarity search lets the item through by default so a
// degraded index never blocks ingestion. WithFailClosed inverts that.
package loader
