package core

import (
	"fmt"
	"strings"
)

// Validate checks that a ContentItem is structurally sound enough to enter
// the pipeline. Only the URL identity is mandatory; every descriptive field
// may be absent.
func (c *ContentItem) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrMissingURL)
	}
	if c.Sentiment != "" {
		switch c.Sentiment {
		case SentimentPositive, SentimentNeutral, SentimentNegative:
		default:
			return fmt.Errorf("%w: %w: %q", ErrInvalidItem, ErrInvalidSentiment, c.Sentiment)
		}
	}
	if len(c.Embedding) != 0 && len(c.Embedding) != EmbeddingDim {
		return fmt.Errorf("%w: %w: got %d, want %d", ErrInvalidItem, ErrInvalidEmbedding, len(c.Embedding), EmbeddingDim)
	}
	return nil
}

// trimLabel strips whitespace and trailing punctuation a model may emit
// around a sentiment label.
func trimLabel(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".!,\"'")
}
