package dedup

import (
	"testing"

	"tunescout/model"
)

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Blinding Lights (feat. X) [Remix]", "blinding lights"},
		{"Blinding Lights", "blinding lights"},
		{"Midnight City - Radio Edit", "midnight city"},
		{"Lose Yourself featuring Dido", "lose yourself"},
		{"Something   With    Spaces", "something"},
		{"Hello ft. Nobody", "hello"},
	}

	for _, tc := range cases {
		if got := NormalizeTitle(tc.in); got != tc.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTitleEquivalence(t *testing.T) {
	a := NormalizeTitle("Blinding Lights (feat. X) [Remix]")
	b := NormalizeTitle("Blinding Lights")
	if a != b {
		t.Errorf("expected equivalent normalized titles, got %q and %q", a, b)
	}
}

func TestFilterCoverArtists(t *testing.T) {
	tracks := []model.Track{
		{ID: "1", Name: "Blinding Lights", Artist: "The Weeknd"},
		{ID: "2", Name: "Blinding Lights", Artist: "Kidz Bop Kids"},
		{ID: "3", Name: "Shape of You (Karaoke)", Artist: "Sing Along Band"},
		{ID: "4", Name: "Anti-Hero", Artist: "Taylor Swift"},
		{ID: "5", Name: "Hits Collection", Artist: "Tribute Stars"},
	}

	got := FilterCoverArtists(tracks)
	if len(got) != 2 {
		t.Fatalf("expected 2 tracks after cover filter, got %d", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "4" {
		t.Errorf("unexpected survivors: %v, %v", got[0].ID, got[1].ID)
	}
}

func TestRemoveCoverVersionsKeepsMostPopular(t *testing.T) {
	tracks := []model.Track{
		{ID: "low", Name: "Blinding Lights (Live)", Artist: "The Weeknd", Popularity: 40},
		{ID: "high", Name: "Blinding Lights", Artist: "The Weeknd", Popularity: 95},
		{ID: "other", Name: "Save Your Tears", Artist: "The Weeknd", Popularity: 80},
	}

	got := RemoveCoverVersions(tracks)
	if len(got) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(got))
	}
	if got[0].ID != "high" {
		t.Errorf("expected the higher-popularity version to win, got %q", got[0].ID)
	}
	if got[1].ID != "other" {
		t.Errorf("expected first-seen group order to be preserved, got %q", got[1].ID)
	}
}

func TestEnsureArtistDiversity(t *testing.T) {
	tracks := []model.Track{
		{ID: "1", Name: "a", Artist: "Drake"},
		{ID: "2", Name: "b", Artist: "drake"},
		{ID: "3", Name: "c", Artist: "DRAKE"},
		{ID: "4", Name: "d", Artist: "Adele"},
	}

	got := EnsureArtistDiversity(tracks, 2)
	counts := make(map[string]int)
	for _, track := range got {
		counts["drake"] += btoi(track.Artist == "Drake" || track.Artist == "drake" || track.Artist == "DRAKE")
	}
	if counts["drake"] > 2 {
		t.Errorf("artist cap violated: %d occurrences of drake", counts["drake"])
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "2" || got[2].ID != "4" {
		t.Errorf("unexpected output order: %v", got)
	}
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestProcessResultsStageOrder(t *testing.T) {
	// The karaoke rendition has the highest popularity. If cover
	// filtering ran after duplicate collapse it would win the group.
	tracks := []model.Track{
		{ID: "karaoke", Name: "Hello", Artist: "Karaoke Masters", Popularity: 99},
		{ID: "real", Name: "Hello", Artist: "Adele", Popularity: 90},
	}

	got := ProcessResults(tracks, Options{
		MaxPerArtist:     2,
		RemoveDuplicates: true,
		EnsureDiversity:  true,
		FilterCovers:     true,
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 track, got %d", len(got))
	}
	if got[0].ID != "real" {
		t.Errorf("expected the original recording to survive, got %q", got[0].ID)
	}
}

func TestProcessResultsStagesToggleable(t *testing.T) {
	tracks := []model.Track{
		{ID: "1", Name: "Hello (Remix)", Artist: "Adele", Popularity: 50},
		{ID: "2", Name: "Hello", Artist: "Adele", Popularity: 90},
		{ID: "3", Name: "Hello Again", Artist: "Adele", Popularity: 70},
	}

	got := ProcessResults(tracks, Options{MaxPerArtist: 1})
	if len(got) != 3 {
		t.Errorf("all stages off should pass tracks through, got %d", len(got))
	}

	got = ProcessResults(tracks, Options{MaxPerArtist: 1, EnsureDiversity: true})
	if len(got) != 1 {
		t.Errorf("diversity cap of 1 should leave one track, got %d", len(got))
	}
}
