package collect

import (
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/araddon/dateparse"
)

// NormalizeDate parses an arbitrary upstream date string and renders it as
// ISO 8601 UTC. Normalization failure yields an empty string, never an
// error: a missing date must not sink the item.
func NormalizeDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// DetectLanguage returns the ISO 639-1 code for the dominant language of
// text, or empty when detection is unreliable.
func DetectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return whatlanggo.LangToStringShort(info.Lang)
}
