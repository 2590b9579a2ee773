package model

import "time"

// Playlist is the terminal artifact of the discovery pipeline: a named,
// described, ordered track list together with the condition and query
// that produced it. TrackCount always equals len(Tracks).
type Playlist struct {
	ID            int64     `json:"id,omitempty"`
	PublicID      string    `json:"publicId,omitempty"`
	PlaylistName  string    `json:"playlistName"`
	Description   string    `json:"description"`
	ParticipantID string    `json:"participantId,omitempty"`
	Condition     Condition `json:"condition"`
	QueryInput    string    `json:"queryInput"`
	Tracks        []Track   `json:"tracks"`
	TrackCount    int       `json:"trackCount"`
	CreatedAt     time.Time `json:"createdAt"`
}
