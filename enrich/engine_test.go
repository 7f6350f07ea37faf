package enrich

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/newswire/ai"
	"github.com/poiesic/newswire/ai/mock"
	"github.com/poiesic/newswire/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastEngine(t *testing.T, generator ai.Generator) *Engine {
	t.Helper()
	e, err := NewEngine(generator, WithPacing(10, 0, 0))
	require.NoError(t, err)
	return e
}

func TestEngine_EmptyTextSkipsBackend(t *testing.T) {
	gen := mock.NewMockGenerator()
	e := fastEngine(t, gen)

	summary, sentiment := e.EnrichItem(context.Background(), &core.ContentItem{URL: "https://a.test"})

	assert.Empty(t, summary)
	assert.Equal(t, core.SentimentNeutral, sentiment)
	assert.Zero(t, gen.CallCount())
}

func TestEngine_ExhaustedCredentialsYieldDefaultOnce(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, system, user string) (string, error) {
		return "", ai.ErrCredentialsExhausted
	}
	e := fastEngine(t, gen)

	summary, sentiment := e.EnrichItem(context.Background(), &core.ContentItem{URL: "https://a.test", FullText: "body text"})

	assert.Empty(t, summary)
	assert.Equal(t, core.SentimentNeutral, sentiment)
	// One rotation-covering call per item, no retry loop on top.
	assert.Equal(t, 1, gen.CallCount())
}

func TestEngine_ParsesStrictJSON(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Response = `{"summary": "A ceasefire was announced overnight.", "sentiment": "Positive"}`
	e := fastEngine(t, gen)

	summary, sentiment := e.EnrichItem(context.Background(), &core.ContentItem{FullText: "body"})

	assert.Equal(t, "A ceasefire was announced overnight.", summary)
	assert.Equal(t, core.SentimentPositive, sentiment)
}

func TestEngine_ParsesFencedJSON(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Response = "```json\n{\"summary\": \"Markets fell sharply today.\", \"sentiment\": \"Negative\"}\n```"
	e := fastEngine(t, gen)

	summary, sentiment := e.EnrichItem(context.Background(), &core.ContentItem{FullText: "body"})

	assert.Equal(t, "Markets fell sharply today.", summary)
	assert.Equal(t, core.SentimentNegative, sentiment)
}

func TestEngine_RepairsMalformedOutput(t *testing.T) {
	gen := mock.NewMockGenerator()
	// Broken JSON, but the summary substring is recoverable; no sentiment
	// field anywhere, so the label falls back to Neutral.
	gen.Response = `Sure! Here is the analysis: {"summary": "Flood waters receded in the delta region.", "sent`
	e := fastEngine(t, gen)

	summary, sentiment := e.EnrichItem(context.Background(), &core.ContentItem{FullText: "body"})

	assert.Equal(t, "Flood waters receded in the delta region.", summary)
	assert.Equal(t, core.SentimentNeutral, sentiment)
}

func TestEngine_GarbageOutputFallsBackToExcerpt(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Response = "I cannot help with that."
	e := fastEngine(t, gen)

	body := strings.Repeat("word ", 100)
	summary, sentiment := e.EnrichItem(context.Background(), &core.ContentItem{FullText: body})

	assert.True(t, strings.HasPrefix(summary, "word word"))
	assert.True(t, strings.HasSuffix(summary, "..."))
	assert.Equal(t, core.SentimentNeutral, sentiment)
}

func TestEngine_TruncatesLongText(t *testing.T) {
	var sent string
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, system, user string) (string, error) {
		sent = user
		return `{"summary": "Long running live coverage.", "sentiment": "Neutral"}`, nil
	}
	e := fastEngine(t, gen)

	head := strings.Repeat("a", 1000)
	middle := strings.Repeat("b", 2000)
	tail := strings.Repeat("c", 500)
	e.EnrichItem(context.Background(), &core.ContentItem{FullText: head + middle + tail})

	assert.Contains(t, sent, truncationMarker)
	assert.Contains(t, sent, head)
	assert.Contains(t, sent, tail)
	assert.NotContains(t, sent, "bbbbbbbbbb"+"bbbbbbbbbb")
}

func TestEngine_CapLeavesOverflowUntouched(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Response = `{"summary": "Something newsworthy happened today.", "sentiment": "Neutral"}`
	e, err := NewEngine(gen, WithPacing(10, 0, 0), WithRunCap(2))
	require.NoError(t, err)

	items := []*core.ContentItem{
		{URL: "https://a.test", FullText: "one"},
		{URL: "https://b.test", FullText: "two"},
		{URL: "https://c.test", FullText: "three"},
	}
	processed := e.Enrich(context.Background(), items)

	require.Len(t, processed, 2)
	assert.NotEmpty(t, items[0].Summary)
	assert.NotEmpty(t, items[1].Summary)
	// The item past the cap is untouched and stays eligible next run.
	assert.Empty(t, items[2].Summary)
	assert.Empty(t, items[2].Sentiment)
}

func TestEngine_RequiresGenerator(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, ErrGeneratorRequired)
}

func TestTruncate(t *testing.T) {
	short := "brief text"
	assert.Equal(t, short, truncate(short))

	long := strings.Repeat("x", 1501)
	got := truncate(long)
	assert.Contains(t, got, truncationMarker)
	assert.Len(t, []rune(got), headRunes+tailRunes+len([]rune(truncationMarker)))
}

func TestParseResponse(t *testing.T) {
	a, ok := parseResponse(`{"summary": "s1", "sentiment": "Negative"}`)
	require.True(t, ok)
	assert.Equal(t, "s1", a.Summary)
	assert.Equal(t, "Negative", a.Sentiment)

	_, ok = parseResponse("")
	assert.False(t, ok)

	_, ok = parseResponse("no fields here")
	assert.False(t, ok)

	a, ok = parseResponse(`garbage "sentiment": "Positive" garbage`)
	require.True(t, ok)
	assert.Empty(t, a.Summary)
	assert.Equal(t, "Positive", a.Sentiment)
}

func TestEngine_PacingDoesNotStallSmallBatches(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Response = `{"summary": "Quick little update today here.", "sentiment": "Neutral"}`
	e, err := NewEngine(gen, WithPacing(2, time.Hour, 0), WithRunCap(2))
	require.NoError(t, err)

	// Group boundary at the final item must not trigger the cool-down.
	done := make(chan struct{})
	go func() {
		e.Enrich(context.Background(), []*core.ContentItem{
			{URL: "https://a.test", FullText: "one"},
			{URL: "https://b.test", FullText: "two"},
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("enrichment stalled on trailing cool-down")
	}
}
