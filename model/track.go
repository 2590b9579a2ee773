package model

// Track represents a single catalog track flowing through the discovery
// pipeline. Tracks are immutable once constructed; pipeline stages
// reorder, filter and annotate sequences of tracks but never rewrite
// the fields of an existing one.
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	PreviewURL string `json:"previewUrl,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
	SpotifyURL string `json:"spotifyUrl,omitempty"`
	Popularity int    `json:"popularity"` // 0..100 per the catalog
}

// Enhancement is the structured search guidance derived for one query,
// either by the LLM enhancer or by the deterministic keyword extractor.
// It is built once per request and consumed read-only downstream.
type Enhancement struct {
	EnhancedQuery    string   `json:"enhancedQuery"`
	PopularArtists   []string `json:"popularArtists"`
	TrendingKeywords []string `json:"trendingKeywords"`
	GenreContext     string   `json:"genreContext"`
	EraPreference    string   `json:"eraPreference"`
	Reasoning        string   `json:"reasoning"`
}

// FallbackEnhancement returns the degraded enhancement used when the
// LLM path fails: the original query passes through untouched.
func FallbackEnhancement(query string) Enhancement {
	return Enhancement{
		EnhancedQuery:    query,
		PopularArtists:   []string{},
		TrendingKeywords: []string{},
		GenreContext:     "general",
		EraPreference:    "current",
		Reasoning:        "fallback",
	}
}
