package core

import "time"

// Sentiment is the classification label attached to an item during enrichment.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// ParseSentiment normalizes a raw label from a generation backend.
// Unrecognized values map to SentimentNeutral.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(trimLabel(s)) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// EmbeddingDim is the dimensionality of the embedding model in use
// (paraphrase-multilingual-MiniLM-L12-v2 compatible).
const EmbeddingDim = 384

// ContentItem is the unit of work and the unit of storage.
// It is created by an upstream collector, enriched with a summary and
// sentiment, given an embedding by the store writer, then persisted.
// Once persisted it is immutable.
type ContentItem struct {
	URL           string    `json:"url"`
	Source        string    `json:"source,omitempty"`
	Language      string    `json:"language,omitempty"`
	Category      string    `json:"category,omitempty"`
	Title         string    `json:"title,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	FullText      string    `json:"full_text,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	PublishedDate string    `json:"published_date,omitempty"`
	ScrapedAt     string    `json:"scraped_at,omitempty"`
	Sentiment     Sentiment `json:"sentiment,omitempty"`
	Embedding     []float32 `json:"-"`
}

// Text returns the best available body text for enrichment:
// full text if present, otherwise the collector-provided summary.
func (c *ContentItem) Text() string {
	if c.FullText != "" {
		return c.FullText
	}
	return c.Summary
}

// Signature returns the string used for lexical near-duplicate comparison.
func (c *ContentItem) Signature() string {
	if c.Summary != "" {
		return c.Title + " " + c.Summary
	}
	return c.Title + " " + c.FullText
}

// EmbeddingText returns the string embedded for semantic comparison.
func (c *ContentItem) EmbeddingText() string {
	return c.Title + " " + c.Summary
}

// StoredItem is a ContentItem as persisted, with store-assigned fields.
type StoredItem struct {
	ID         int64
	ContentItem
	InsertedAt time.Time
}
