// Package dedup collapses duplicate and cover renditions of tracks and
// enforces per-artist diversity in result sets.
package dedup

import (
	"regexp"
	"strings"

	"tunescout/logger"
	"tunescout/model"
)

// Options toggles the individual stages of ProcessResults.
type Options struct {
	MaxPerArtist     int
	RemoveDuplicates bool
	EnsureDiversity  bool
	FilterCovers     bool
}

// keywords marking cover/tribute/karaoke style sources, matched as
// substrings against both artist and title.
var coverArtistKeywords = []string{
	"kidz bop",
	"tribute",
	"karaoke",
	"cover",
	"remix",
	"instrumental",
	"piano version",
	"acoustic version",
	"workout music",
	"gym music",
	"fitness",
	"motivation music",
	"backing track",
	"originally performed",
	"style of",
}

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	bracketed     = regexp.MustCompile(`\[[^\]]*\]`)
	featSuffix    = regexp.MustCompile(`(?i)\s*-?\s*(feat\.|featuring|ft\.|with\s+).*$`)
	editionSuffix = regexp.MustCompile(`(?i)\s*-\s*(radio edit|album version|single version|original mix).*$`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// NormalizeTitle canonicalizes a track title for duplicate comparison:
// lowercase, parenthetical/bracketed segments gone, featuring and
// edition suffixes gone, whitespace collapsed.
func NormalizeTitle(name string) string {
	normalized := strings.ToLower(name)
	normalized = parenthetical.ReplaceAllString(normalized, "")
	normalized = bracketed.ReplaceAllString(normalized, "")
	normalized = featSuffix.ReplaceAllString(normalized, "")
	normalized = editionSuffix.ReplaceAllString(normalized, "")
	normalized = whitespace.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// FilterCoverArtists drops tracks whose artist or title contains a known
// cover/tribute keyword.
func FilterCoverArtists(tracks []model.Track) []model.Track {
	filtered := make([]model.Track, 0, len(tracks))

	for _, track := range tracks {
		artistLower := strings.ToLower(track.Artist)
		nameLower := strings.ToLower(track.Name)

		isCover := false
		for _, keyword := range coverArtistKeywords {
			if strings.Contains(artistLower, keyword) || strings.Contains(nameLower, keyword) {
				isCover = true
				break
			}
		}

		if isCover {
			logger.Debug("filtered out cover",
				logger.String("track", track.Name),
				logger.String("artist", track.Artist))
			continue
		}
		filtered = append(filtered, track)
	}

	return filtered
}

// RemoveCoverVersions groups tracks by normalized title and keeps only
// the most popular member of each group. First-seen group order is
// preserved in the output.
func RemoveCoverVersions(tracks []model.Track) []model.Track {
	type group struct {
		best  model.Track
		count int
	}

	var order []string
	groups := make(map[string]*group)

	for _, track := range tracks {
		key := NormalizeTitle(track.Name)
		g, ok := groups[key]
		if !ok {
			order = append(order, key)
			groups[key] = &group{best: track, count: 1}
			continue
		}
		g.count++
		if track.Popularity > g.best.Popularity {
			g.best = track
		}
	}

	filtered := make([]model.Track, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if g.count > 1 {
			logger.Debug("collapsed duplicate versions",
				logger.String("title", key),
				logger.Int("removed", g.count-1))
		}
		filtered = append(filtered, g.best)
	}

	return filtered
}

// EnsureArtistDiversity walks tracks in order and admits a track only
// while its artist (case-insensitive) is below the cap.
func EnsureArtistDiversity(tracks []model.Track, maxPerArtist int) []model.Track {
	counts := make(map[string]int)
	diverse := make([]model.Track, 0, len(tracks))

	for _, track := range tracks {
		key := strings.ToLower(track.Artist)
		if counts[key] >= maxPerArtist {
			logger.Debug("skipped for artist diversity",
				logger.String("track", track.Name),
				logger.String("artist", track.Artist))
			continue
		}
		counts[key]++
		diverse = append(diverse, track)
	}

	return diverse
}

// ProcessResults runs the filtering stages in their fixed order: cover
// filtering first so a popular cover cannot win a later duplicate tie,
// then duplicate collapse, then the diversity cap.
func ProcessResults(tracks []model.Track, opts Options) []model.Track {
	processed := tracks

	if opts.FilterCovers {
		processed = FilterCoverArtists(processed)
	}
	if opts.RemoveDuplicates {
		processed = RemoveCoverVersions(processed)
	}
	if opts.EnsureDiversity {
		processed = EnsureArtistDiversity(processed, opts.MaxPerArtist)
	}

	logger.Info("track deduplication",
		logger.Int("input", len(tracks)),
		logger.Int("output", len(processed)))

	return processed
}
