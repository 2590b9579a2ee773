package curated

import (
	"context"

	"tunescout/logger"
	"tunescout/model"
)

// TrackFetcher batch-fetches full track metadata from the live catalog.
type TrackFetcher interface {
	GetTracks(ctx context.Context, trackIDs []string) ([]model.Track, error)
}

// Resolver turns curated track-id references into full tracks.
type Resolver struct {
	catalog *Catalog
	fetcher TrackFetcher
}

// NewResolver constructs a Resolver.
func NewResolver(catalog *Catalog, fetcher TrackFetcher) *Resolver {
	return &Resolver{catalog: catalog, fetcher: fetcher}
}

// Resolve collects curated track ids for every recognized candidate
// artist under the mood detected from the query, then batch-fetches
// their metadata. An empty result means the caller should rely on live
// search alone.
func (r *Resolver) Resolve(ctx context.Context, query string, candidateArtists []string) ([]model.Track, error) {
	if len(candidateArtists) == 0 {
		return []model.Track{}, nil
	}

	mood := DetectMood(query)
	logger.Debug("curated lookup", logger.String("mood", mood))

	var trackIDs []string
	for _, artist := range candidateArtists {
		if !r.catalog.HasArtist(artist) {
			continue
		}
		entries := r.catalog.Tracks(artist, mood)
		for _, entry := range entries {
			trackIDs = append(trackIDs, entry.ID)
		}
		logger.Debug("curated artist hit",
			logger.String("artist", artist),
			logger.Int("tracks", len(entries)))
	}

	// No recognized artist: fall back to the generic bucket for the
	// detected mood, which is empty for "all".
	if len(trackIDs) == 0 {
		for _, entry := range r.catalog.MoodTracks(mood) {
			trackIDs = append(trackIDs, entry.ID)
		}
	}

	if len(trackIDs) == 0 {
		logger.Debug("no curated tracks for candidate artists")
		return []model.Track{}, nil
	}

	tracks, err := r.fetcher.GetTracks(ctx, trackIDs)
	if err != nil {
		return nil, err
	}

	logger.Info("curated tracks resolved",
		logger.Int("requested", len(trackIDs)),
		logger.Int("resolved", len(tracks)))

	return tracks, nil
}
