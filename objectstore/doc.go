// Package objectstore abstracts the object-storage layer used for raw
// batches, processed batch history, and the idempotency ledger.
//
// The production implementation lives in objectstore/minio; an in-process
// implementation for tests lives in objectstore/memory.
package objectstore
