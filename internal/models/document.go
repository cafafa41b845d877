package models

// Document is one chunk of text derived from a source record. Source is the
// originating file name and survives chunking and indexing unchanged so that
// answers can be attributed.
type Document struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// Passage is a document returned by similarity search, with its score.
// Score is used only for ordering and is never persisted.
type Passage struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

// Sources returns the source identifiers of the passages in retrieval order,
// without duplicates.
func Sources(passages []Passage) []string {
	seen := make(map[string]bool, len(passages))
	out := make([]string, 0, len(passages))
	for _, p := range passages {
		if p.Source == "" || seen[p.Source] {
			continue
		}
		seen[p.Source] = true
		out = append(out, p.Source)
	}
	return out
}
