// Package memory provides an in-memory NewsRepository for tests.
package memory
