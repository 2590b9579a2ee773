// Package curated holds the hand-authored artist/mood to track-id table
// and resolves it against the live catalog.
package curated

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"tunescout/logger"
)

//go:embed data/curated_tracks.json
var defaultData []byte

// Entry is one curated track reference. Only the id is authoritative;
// the name exists so the data file stays reviewable by humans.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// table is the on-disk shape of the curated data.
type table struct {
	Artists map[string]map[string][]Entry `json:"artists"`
	Moods   map[string][]Entry            `json:"moods"`
}

// moodMatcher maps query text to a curated mood bucket. Order matters:
// the first mood with a matching keyword wins.
type moodMatcher struct {
	mood     string
	keywords []string
}

var moodMatchers = []moodMatcher{
	{"happy", []string{"happy", "upbeat", "cheerful", "joyful", "positive", "fun"}},
	{"sad", []string{"sad", "emotional", "cry", "heartbreak", "melancholy", "depressing"}},
	{"workout", []string{"workout", "gym", "exercise", "fitness", "training", "running"}},
	{"party", []string{"party", "dance", "club", "edm", "rave"}},
	{"chill", []string{"chill", "relax", "calm", "peaceful"}},
	{"romantic", []string{"romantic", "love", "romance", "date"}},
}

const (
	moodBucketMin = 5
	moodBucketMax = 10
)

// Catalog is the loaded curated table. Reads vastly outnumber reloads,
// so an RWMutex guards the swap.
type Catalog struct {
	mu   sync.RWMutex
	data table
}

// NewCatalog loads the embedded default table.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{}
	if err := c.load(defaultData); err != nil {
		return nil, fmt.Errorf("curated: load embedded data: %w", err)
	}
	return c, nil
}

// LoadFile replaces the table with the contents of path.
func (c *Catalog) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("curated: read %s: %w", path, err)
	}
	if err := c.load(raw); err != nil {
		return fmt.Errorf("curated: parse %s: %w", path, err)
	}
	logger.Info("curated catalog loaded", logger.String("path", path))
	return nil
}

func (c *Catalog) load(raw []byte) error {
	var parsed table
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return err
	}
	if parsed.Artists == nil {
		parsed.Artists = map[string]map[string][]Entry{}
	}
	if parsed.Moods == nil {
		parsed.Moods = map[string][]Entry{}
	}

	c.mu.Lock()
	c.data = parsed
	c.mu.Unlock()
	return nil
}

// HasArtist reports whether the table carries the artist.
func (c *Catalog) HasArtist(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data.Artists[name]
	return ok
}

// ArtistNames lists every curated artist.
func (c *Catalog) ArtistNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.data.Artists))
	for name := range c.data.Artists {
		names = append(names, name)
	}
	return names
}

// Tracks returns the artist's bucket for the mood, falling back to the
// "all" bucket when the mood is absent. A short mood bucket (fewer than
// five entries) is padded from "all" up to ten.
func (c *Catalog) Tracks(artist, mood string) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	buckets, ok := c.data.Artists[artist]
	if !ok {
		return nil
	}

	tracks := buckets[mood]
	if tracks == nil {
		tracks = buckets["all"]
	}

	if len(tracks) < moodBucketMin && len(buckets["all"]) > 0 {
		padded := make([]Entry, 0, moodBucketMax)
		padded = append(padded, tracks...)
		padded = append(padded, buckets["all"]...)
		if len(padded) > moodBucketMax {
			padded = padded[:moodBucketMax]
		}
		return padded
	}

	out := make([]Entry, len(tracks))
	copy(out, tracks)
	return out
}

// MoodTracks returns the generic bucket for a mood, independent of any
// artist.
func (c *Catalog) MoodTracks(mood string) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tracks := c.data.Moods[mood]
	out := make([]Entry, len(tracks))
	copy(out, tracks)
	return out
}

// DetectMood maps free text to a curated mood via lowercase substring
// match, first matching mood in table order wins, default "all".
func DetectMood(text string) string {
	lower := strings.ToLower(text)
	for _, matcher := range moodMatchers {
		for _, keyword := range matcher.keywords {
			if strings.Contains(lower, keyword) {
				return matcher.mood
			}
		}
	}
	return "all"
}
