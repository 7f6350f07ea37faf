// Package reembed backfills embeddings for stored news rows.
//
// Rows end up without a vector when the semantic check was skipped or an
// embedding model change invalidated the column. The backfiller walks
// those rows in batches, embeds the title+summary blob with retry and
// exponential backoff, and writes the vectors back.
package reembed
