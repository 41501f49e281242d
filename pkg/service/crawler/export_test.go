package crawler

// Exported for testing
var (
	Parse     = parse
	CleanText = cleanText
)
