// Package dedupe collapses lexical near-duplicates within a single batch
// run using TF-IDF bag-of-words vectors and pairwise cosine similarity.
//
// This is the cheap gate that keeps near-identical stories from reaching
// the quota-limited generation backend; the semantic embedding check at
// store time handles cross-run and cross-wording duplication.
package dedupe
