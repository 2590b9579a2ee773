package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"tunescout/model"
)

// The catalog accepts at most 50 ids per batch fetch.
const maxBatchIDs = 50

// GetTracks batch-fetches full metadata for the given track ids. Null
// entries (deleted or region-restricted tracks) are filtered out.
func (c *Client) GetTracks(ctx context.Context, trackIDs []string) ([]model.Track, error) {
	if len(trackIDs) == 0 {
		return []model.Track{}, nil
	}
	if len(trackIDs) > maxBatchIDs {
		trackIDs = trackIDs[:maxBatchIDs]
	}

	params := url.Values{}
	params.Set("ids", strings.Join(trackIDs, ","))

	var resp tracksResponse
	if err := c.get(ctx, "/tracks", params, &resp); err != nil {
		return nil, fmt.Errorf("batch track fetch: %w", err)
	}

	tracks := make([]model.Track, 0, len(resp.Tracks))
	for _, item := range resp.Tracks {
		if item == nil {
			continue
		}
		tracks = append(tracks, item.toDomain())
	}

	return tracks, nil
}
