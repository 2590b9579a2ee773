// Package curator packages a filtered track list into a named playlist.
package curator

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"tunescout/model"
)

const (
	maxPlaylistTracks = 30
	timestampLayout   = "Jan 2, 03:04 PM"
)

// Curator derives playlist names and descriptions from the request
// condition and assembles the final playlist object.
type Curator struct {
	now func() time.Time
}

func New() *Curator {
	return &Curator{now: time.Now}
}

// SetClock overrides the timestamp source. Test hook.
func (c *Curator) SetClock(now func() time.Time) {
	c.now = now
}

// Curate trims the track list to the playlist cap. Slider-driven
// requests keep their upstream ordering untouched.
func (c *Curator) Curate(tracks []model.Track, condition model.Condition) []model.Track {
	out := make([]model.Track, len(tracks))
	copy(out, tracks)
	if condition == model.ConditionSliders {
		return out
	}
	if len(out) > maxPlaylistTracks {
		out = out[:maxPlaylistTracks]
	}
	return out
}

// Name builds a playlist name from the request condition.
func (c *Curator) Name(condition model.Condition, queryInput string, detectedMoods []string) string {
	ts := c.now().Format(timestampLayout)

	if condition == model.ConditionVoice && len(detectedMoods) > 0 {
		moods := detectedMoods
		if len(moods) > 2 {
			moods = moods[:2]
		}
		capped := make([]string, len(moods))
		for i, m := range moods {
			capped[i] = capitalize(m)
		}
		return fmt.Sprintf("%s Mix - %s", strings.Join(capped, " & "), ts)
	}

	if condition == model.ConditionSliders {
		var features model.AudioFeatures
		if err := json.Unmarshal([]byte(queryInput), &features); err != nil {
			return "Custom Mix - " + ts
		}
		return sliderName(features) + " - " + ts
	}

	if condition == model.ConditionText {
		return fmt.Sprintf("%s - %s", queryInput, ts)
	}

	return "Curated Mix - " + ts
}

// sliderName classifies slider values into a vibe label. The branch
// order is significant: earlier matches win.
func sliderName(f model.AudioFeatures) string {
	switch {
	case f.Energy > 0.7 && f.Danceability > 0.7:
		return "High Energy Dance Mix"
	case f.Energy < 0.3 && f.Valence > 0.6:
		return "Chill Happy Vibes"
	case f.Valence < 0.3:
		return "Melancholic Mood"
	case f.Energy > 0.7 && f.Tempo > 140:
		return "Workout Power Mix"
	case f.Energy < 0.4 && f.Tempo < 90:
		return "Calm & Relaxing"
	case f.Danceability > 0.7:
		return "Dance Party Mix"
	default:
		return "Custom Blend"
	}
}

// Describe builds a human-readable playlist description.
func (c *Curator) Describe(condition model.Condition, queryInput string, trackCount int, detectedMoods []string) string {
	if condition == model.ConditionVoice && len(detectedMoods) > 0 {
		return fmt.Sprintf("A %d-track playlist curated for %s vibes based on your voice request.",
			trackCount, strings.Join(detectedMoods, ", "))
	}

	if condition == model.ConditionSliders {
		var f model.AudioFeatures
		if err := json.Unmarshal([]byte(queryInput), &f); err != nil {
			return fmt.Sprintf("Custom curated playlist with %d tracks.", trackCount)
		}
		return fmt.Sprintf("Custom playlist with %d tracks. Energy: %.2f, Valence: %.2f, Danceability: %.2f, Tempo: %d BPM.",
			trackCount, f.Energy, f.Valence, f.Danceability, int(math.Round(f.Tempo)))
	}

	if condition == model.ConditionText {
		return fmt.Sprintf("%d tracks matching %q", trackCount, queryInput)
	}

	return fmt.Sprintf("Curated playlist with %d tracks.", trackCount)
}

// Build assembles the playlist object handed to persistence.
func (c *Curator) Build(tracks []model.Track, condition model.Condition, queryInput, participantID string, detectedMoods []string) model.Playlist {
	curated := c.Curate(tracks, condition)
	return model.Playlist{
		PlaylistName:  c.Name(condition, queryInput, detectedMoods),
		Description:   c.Describe(condition, queryInput, len(curated), detectedMoods),
		ParticipantID: participantID,
		Condition:     condition,
		QueryInput:    queryInput,
		Tracks:        curated,
		TrackCount:    len(curated),
		CreatedAt:     c.now().UTC(),
	}
}

// QueryInputForFeatures serializes slider values to the flat string
// stored alongside the playlist.
func QueryInputForFeatures(f model.AudioFeatures) string {
	b, _ := json.Marshal(f)
	return string(b)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
