package enrich

const (
	truncateLimit = 1500
	headRunes     = 1000
	tailRunes     = 500
)

const truncationMarker = "\n... [middle removed] ...\n"

// truncate bounds long text while keeping both the lead and the latest
// update. Live-coverage pages put headlines first and fresh developments
// last, so a naive prefix cut would lose exactly the content worth
// summarizing.
func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= truncateLimit {
		return text
	}
	return string(runes[:headRunes]) + truncationMarker + string(runes[len(runes)-tailRunes:])
}

// excerpt returns the first n runes of text with an ellipsis, used as the
// summary of last resort when the backend output is unusable.
func excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
