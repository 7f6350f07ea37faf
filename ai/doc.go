// Package ai defines the service contracts for the generation and
// embedding backends, plus their shared configuration.
//
// Implementations live in subpackages: openai for OpenAI-compatible
// remote and local services, mock for test doubles.
package ai
