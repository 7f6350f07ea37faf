// Package postgres implements storage.NewsRepository on PostgreSQL.
//
// Vectors are stored in a pgvector column and searched with the cosine
// distance operator through an ivfflat index. The vector type is
// registered on every pooled connection, so pgvector values can be
// bound and scanned directly.
package postgres
