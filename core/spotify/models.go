package spotify

import "tunescout/model"

// Wire shapes of the catalog API.

type apiTrack struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	PreviewURL   string `json:"preview_url"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Popularity int `json:"popularity"`
}

type searchResponse struct {
	Tracks struct {
		Items []apiTrack `json:"items"`
	} `json:"tracks"`
}

type tracksResponse struct {
	Tracks []*apiTrack `json:"tracks"`
}

// toDomain maps a wire track to the domain shape.
func (t apiTrack) toDomain() model.Track {
	track := model.Track{
		ID:         t.ID,
		Name:       t.Name,
		Artist:     "Unknown Artist",
		Album:      "Unknown Album",
		PreviewURL: t.PreviewURL,
		SpotifyURL: t.ExternalURLs.Spotify,
		Popularity: t.Popularity,
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	if t.Album.Name != "" {
		track.Album = t.Album.Name
	}
	if len(t.Album.Images) > 0 {
		track.ImageURL = t.Album.Images[0].URL
	}
	return track
}

func mapTracks(items []apiTrack) []model.Track {
	tracks := make([]model.Track, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, item.toDomain())
	}
	return tracks
}
