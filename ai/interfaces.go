package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// checks. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// a batch. The returned slice matches the order of the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces free-form text from a generation backend.
// A single Call covers the whole credential pool: implementations backed
// by a multi-key remote service rotate through every credential before
// reporting failure, and a fresh Call restarts from the first credential.
type Generator interface {
	// Generate sends a system instruction and user text to the backend
	// and returns the raw response text.
	// Returns ErrCredentialsExhausted once every credential has failed
	// for this call.
	Generate(ctx context.Context, system, user string) (string, error)
}

// Provider aggregates the AI services behind one lifecycle so the
// generation backend and its credential pool are constructed once per
// process and injected rather than reached for as globals.
type Provider interface {
	// Generator returns the text generation service.
	Generator() Generator

	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	Close() error
}
