package knowledge

// Document is one knowledge base entry as stored in the JSON corpus.
// The ID is carried through to search results unmodified, so numeric
// and string identifiers both survive the round trip.
type Document struct {
	ID      any    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Result is a single search hit with its similarity score.
type Result struct {
	Document Document
	Score    float64 // Cosine similarity (0-1)
}
