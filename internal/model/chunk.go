package model

// ContentRecord is one extracted section of a source document. (URL, Heading)
// is the natural key: it is the dedupe key and the upsert conflict target.
//
// Two URL schemes exist and are kept deliberately distinct:
//
//	/case-studies/<slug>#<anchor>   case-study sections and replay steps
//	/profile#<track>-<stepID>       profile steps (hyphen before the step id)
//
// Unifying the separators would break links already published against them.
type ContentRecord struct {
	URL     string `json:"url"`
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// StoredChunk is a ContentRecord persisted together with its embedding.
type StoredChunk struct {
	ContentRecord
	Embedding []float32 `json:"embedding"`
}

// RetrievedChunk is a stored chunk returned by nearest-neighbor search.
// Similarity is cosine-like, larger is better. Query-scoped, never persisted.
type RetrievedChunk struct {
	URL        string  `json:"url"`
	Heading    string  `json:"heading"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// RankedChunk carries the re-ranker's derived score on top of similarity.
// The score orders chunks and is discarded afterwards.
type RankedChunk struct {
	RetrievedChunk
	Score float64 `json:"-"`
}

// Citation points back at one context block shown to the model, 1-indexed by
// block position. Citations describe what was shown, not what was used.
type Citation struct {
	Ref     int    `json:"ref"`
	URL     string `json:"url"`
	Heading string `json:"heading"`
}

// BasePath returns the document-identifying prefix of a chunk URL: everything
// before the first '#', or the whole URL when there is none. All chunks of one
// logical document share a base path and are replaced together on reindex.
func BasePath(url string) string {
	for i := 0; i < len(url); i++ {
		if url[i] == '#' {
			return url[:i]
		}
	}
	return url
}
