package spotify

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"tunescout/logger"
	"tunescout/model"
)

const (
	keywordSearchLimit  = 10
	artistSearchLimit   = 10
	generalSearchLimit  = 20
	enhancedResultLimit = 30
	featureSearchLimit  = 20
	featureResultLimit  = 10
	maxBoostedArtists   = 3
)

// SearchByKeywords runs a single keyword search against the catalog.
func (c *Client) SearchByKeywords(ctx context.Context, query string) ([]model.Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &model.ValidationError{Field: "query", Reason: "search query cannot be empty"}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(keywordSearchLimit))

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	return mapTracks(resp.Tracks.Items), nil
}

// SearchEnhanced fans out one artist-boosted search per suggested artist
// (up to three, in parallel) plus one broader search on the enhancer's
// optimized query, then merges, de-duplicates by id, sorts by
// popularity and returns the top slice. A failed per-artist search is
// logged and skipped, never fatal.
func (c *Client) SearchEnhanced(ctx context.Context, query string, enhancement model.Enhancement) ([]model.Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &model.ValidationError{Field: "query", Reason: "search query cannot be empty"}
	}

	searchQuery := enhancement.EnhancedQuery
	if searchQuery == "" {
		searchQuery = query
	}

	artists := enhancement.PopularArtists
	if len(artists) > maxBoostedArtists {
		artists = artists[:maxBoostedArtists]
	}

	perArtist := make([][]model.Track, len(artists))
	var wg sync.WaitGroup
	for i, artist := range artists {
		wg.Add(1)
		go func(i int, artist string) {
			defer wg.Done()

			params := url.Values{}
			params.Set("q", fmt.Sprintf("artist:%q %s", artist, query))
			params.Set("type", "track")
			params.Set("limit", strconv.Itoa(artistSearchLimit))
			params.Set("market", c.market)

			var resp searchResponse
			if err := c.get(ctx, "/search", params, &resp); err != nil {
				logger.Warn("artist-boosted search failed",
					logger.String("artist", artist),
					logger.ErrorField(err))
				return
			}
			perArtist[i] = mapTracks(resp.Tracks.Items)
		}(i, artist)
	}
	wg.Wait()

	var all []model.Track
	for i, tracks := range perArtist {
		if tracks != nil {
			logger.Debug("artist-boosted search results",
				logger.String("artist", artists[i]),
				logger.Int("count", len(tracks)))
			all = append(all, tracks...)
		}
	}

	params := url.Values{}
	params.Set("q", searchQuery)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(generalSearchLimit))
	params.Set("market", c.market)

	var general searchResponse
	if err := c.get(ctx, "/search", params, &general); err != nil {
		// Fall back to the plain keyword search rather than failing the
		// whole request, as long as something was collected.
		logger.Warn("general enhanced search failed", logger.ErrorField(err))
		if len(all) == 0 {
			return c.SearchByKeywords(ctx, query)
		}
	} else {
		all = append(all, mapTracks(general.Tracks.Items)...)
	}

	unique := make([]model.Track, 0, len(all))
	seen := make(map[string]struct{}, len(all))
	for _, track := range all {
		if _, dup := seen[track.ID]; dup {
			continue
		}
		seen[track.ID] = struct{}{}
		unique = append(unique, track)
	}

	sort.SliceStable(unique, func(a, b int) bool {
		return unique[a].Popularity > unique[b].Popularity
	})

	if len(unique) > enhancedResultLimit {
		unique = unique[:enhancedResultLimit]
	}

	logger.Info("enhanced search complete",
		logger.String("query", query),
		logger.Int("unique", len(unique)))

	return unique, nil
}

// SearchByAudioFeatures validates the slider ranges, maps each feature
// band to a disjunctive keyword clause and issues one combined search.
func (c *Client) SearchByAudioFeatures(ctx context.Context, features model.AudioFeatures) ([]model.Track, error) {
	if err := features.Validate(); err != nil {
		return nil, err
	}

	var parts []string

	switch {
	case features.Valence < 0.3:
		parts = append(parts, "sad OR melancholy OR dark")
	case features.Valence > 0.7:
		parts = append(parts, "happy OR upbeat OR cheerful")
	default:
		parts = append(parts, "chill OR mellow OR relaxed")
	}

	if features.Energy < 0.3 {
		parts = append(parts, "calm OR peaceful OR ambient")
	} else if features.Energy > 0.7 {
		parts = append(parts, "energetic OR intense OR powerful")
	}

	if features.Danceability > 0.6 {
		parts = append(parts, "dance OR pop OR electronic")
	}

	if features.Tempo < 90 {
		parts = append(parts, "slow OR ballad")
	} else if features.Tempo > 140 {
		parts = append(parts, "fast OR uptempo")
	}

	query := strings.Join(parts, " ")
	logger.Debug("feature search query", logger.String("query", query))

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(featureSearchLimit))

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, fmt.Errorf("feature search: %w", err)
	}

	items := resp.Tracks.Items
	if len(items) > featureResultLimit {
		items = items[:featureResultLimit]
	}

	return mapTracks(items), nil
}
