// Package collect selects and merges the newest raw batch from every
// upstream source namespace into one working set, normalizing dates and
// filling missing language tags along the way.
package collect
