// Package core defines the domain model shared by every pipeline stage:
// the ContentItem unit of work, sentiment labels, and validation rules.
package core
