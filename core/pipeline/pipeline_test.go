package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"tunescout/core/curator"
	"tunescout/model"
)

func tracksNamed(n int, prefix string) []model.Track {
	out := make([]model.Track, n)
	for i := range out {
		out[i] = model.Track{
			ID:     fmt.Sprintf("%s-%d", prefix, i),
			Name:   fmt.Sprintf("%s Song %d", prefix, i),
			Artist: fmt.Sprintf("%s Artist %d", prefix, i),
		}
	}
	return out
}

// fakeSearcher records every call. SearchEnhanced is invoked from a
// goroutine during fan-out, so the counters are mutex-guarded.
type fakeSearcher struct {
	mu sync.Mutex

	keywordCalls int
	keywordQuery string
	keywordOut   []model.Track
	keywordErr   error

	enhancedCalls int
	enhancedOut   [][]model.Track
	enhancedErr   error
	enhancedWith  model.Enhancement

	featureCalls int
	featureOut   []model.Track
	featureErr   error
}

func (f *fakeSearcher) SearchByKeywords(ctx context.Context, query string) ([]model.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keywordCalls++
	f.keywordQuery = query
	return f.keywordOut, f.keywordErr
}

func (f *fakeSearcher) SearchEnhanced(ctx context.Context, query string, enhancement model.Enhancement) ([]model.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enhancedCalls++
	f.enhancedWith = enhancement
	if f.enhancedErr != nil {
		return nil, f.enhancedErr
	}
	if len(f.enhancedOut) == 0 {
		return nil, nil
	}
	idx := f.enhancedCalls - 1
	if idx >= len(f.enhancedOut) {
		idx = len(f.enhancedOut) - 1
	}
	return f.enhancedOut[idx], nil
}

func (f *fakeSearcher) SearchByAudioFeatures(ctx context.Context, features model.AudioFeatures) ([]model.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.featureCalls++
	return f.featureOut, f.featureErr
}

func (f *fakeSearcher) enhancedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enhancedCalls
}

type fakeEnhancer struct {
	enhancement model.Enhancement
	enhanceErr  error

	rerankCalls  int
	rerankWindow int
	rerankErr    error
}

func (f *fakeEnhancer) EnhanceQuery(ctx context.Context, query string) (model.Enhancement, error) {
	if f.enhanceErr != nil {
		return model.Enhancement{}, f.enhanceErr
	}
	return f.enhancement, nil
}

func (f *fakeEnhancer) Rerank(ctx context.Context, tracks []model.Track, originalQuery string, enhancement model.Enhancement) ([]model.Track, error) {
	f.rerankCalls++
	f.rerankWindow = len(tracks)
	if f.rerankErr != nil {
		return nil, f.rerankErr
	}
	return tracks, nil
}

type fakeResolver struct {
	mu      sync.Mutex
	calls   int
	artists []string
	out     []model.Track
	err     error
}

func (f *fakeResolver) Resolve(ctx context.Context, query string, candidateArtists []string) ([]model.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.artists = candidateArtists
	return f.out, f.err
}

func TestDiscoverTextBlankQuery(t *testing.T) {
	searcher := &fakeSearcher{}
	p := New(searcher, &fakeEnhancer{}, &fakeResolver{}, true)

	_, err := p.DiscoverText(context.Background(), "   ", "p1", true)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
	if searcher.enhancedCount() != 0 || searcher.keywordCalls != 0 {
		t.Error("blank query must fail before any search")
	}
}

func TestDiscoverTextCuratedFirstCapped(t *testing.T) {
	searcher := &fakeSearcher{enhancedOut: [][]model.Track{tracksNamed(8, "live")}}
	resolver := &fakeResolver{out: tracksNamed(5, "curated")}
	enhancer := &fakeEnhancer{enhancement: model.Enhancement{
		EnhancedQuery:    "indie summer anthems",
		PopularArtists:   []string{"Phoenix"},
		TrendingKeywords: []string{"summer", "indie"},
	}}
	p := New(searcher, enhancer, resolver, true)

	res, err := p.DiscoverText(context.Background(), "summer road trip", "p1", true)
	if err != nil {
		t.Fatalf("DiscoverText: %v", err)
	}

	if res.Count != 10 || len(res.Tracks) != 10 {
		t.Fatalf("got %d tracks, want 10", len(res.Tracks))
	}
	for i := 0; i < 3; i++ {
		if res.Tracks[i].ID != fmt.Sprintf("curated-%d", i) {
			t.Errorf("track %d = %s, want curated-%d", i, res.Tracks[i].ID, i)
		}
	}
	if res.Tracks[3].ID != "live-0" {
		t.Errorf("track 3 = %s, want live-0", res.Tracks[3].ID)
	}

	if !res.LLMEnhanced || res.Enhancement == nil {
		t.Error("expected enhancement in result")
	}
	if len(res.DetectedMoods) != 2 || res.DetectedMoods[0] != "summer" {
		t.Errorf("detected moods = %v", res.DetectedMoods)
	}

	if searcher.enhancedCount() != 1 {
		t.Errorf("enhanced search called %d times, want 1", searcher.enhancedCount())
	}
	if resolver.calls != 1 || len(resolver.artists) != 1 || resolver.artists[0] != "Phoenix" {
		t.Errorf("resolver called with %v", resolver.artists)
	}
	if enhancer.rerankCalls != 1 || enhancer.rerankWindow != 10 {
		t.Errorf("rerank calls=%d window=%d, want 1 calls over 10 tracks",
			enhancer.rerankCalls, enhancer.rerankWindow)
	}
	if res.Playlist.Condition != model.ConditionText {
		t.Errorf("playlist condition = %q", res.Playlist.Condition)
	}
}

func TestDiscoverTextRetryDropsDiversity(t *testing.T) {
	// Second pass returns eight tracks by one artist; with the diversity
	// cap dropped on retry they all survive up to the target size.
	sameArtist := make([]model.Track, 8)
	for i := range sameArtist {
		sameArtist[i] = model.Track{
			ID:     fmt.Sprintf("more-%d", i),
			Name:   fmt.Sprintf("Deep Cut %d", i),
			Artist: "One Band",
		}
	}
	searcher := &fakeSearcher{enhancedOut: [][]model.Track{tracksNamed(4, "first"), sameArtist}}
	enhancer := &fakeEnhancer{enhancement: model.Enhancement{EnhancedQuery: "q"}}
	p := New(searcher, enhancer, &fakeResolver{}, true)

	res, err := p.DiscoverText(context.Background(), "obscure b-sides", "p1", true)
	if err != nil {
		t.Fatalf("DiscoverText: %v", err)
	}

	if searcher.enhancedCount() != 2 {
		t.Fatalf("enhanced search called %d times, want 2", searcher.enhancedCount())
	}
	if res.Count != 10 {
		t.Fatalf("got %d tracks, want 10", res.Count)
	}
	oneBand := 0
	for _, track := range res.Tracks {
		if track.Artist == "One Band" {
			oneBand++
		}
	}
	if oneBand != 6 {
		t.Errorf("got %d One Band tracks, want 6 (diversity off on retry)", oneBand)
	}
}

func TestDiscoverTextRetriesOnlyOnce(t *testing.T) {
	searcher := &fakeSearcher{enhancedOut: [][]model.Track{tracksNamed(2, "first"), tracksNamed(1, "second")}}
	enhancer := &fakeEnhancer{enhancement: model.Enhancement{EnhancedQuery: "q"}}
	p := New(searcher, enhancer, &fakeResolver{}, true)

	res, err := p.DiscoverText(context.Background(), "niche query", "p1", true)
	if err != nil {
		t.Fatalf("DiscoverText: %v", err)
	}
	if searcher.enhancedCount() != 2 {
		t.Errorf("enhanced search called %d times, want 2", searcher.enhancedCount())
	}
	if res.Count != 3 {
		t.Errorf("got %d tracks, want 3", res.Count)
	}
	if enhancer.rerankCalls != 0 {
		t.Errorf("rerank called with only %d candidates", res.Count)
	}
}

func TestDiscoverTextEnhancementFallback(t *testing.T) {
	searcher := &fakeSearcher{enhancedOut: [][]model.Track{tracksNamed(10, "live")}}
	enhancer := &fakeEnhancer{enhanceErr: errors.New("service down")}
	p := New(searcher, enhancer, &fakeResolver{}, true)

	res, err := p.DiscoverText(context.Background(), "rainy day jazz", "p1", true)
	if err != nil {
		t.Fatalf("DiscoverText: %v", err)
	}
	if res.Enhancement == nil || res.Enhancement.Reasoning != "fallback" {
		t.Fatalf("enhancement = %+v, want fallback", res.Enhancement)
	}
	if res.Enhancement.EnhancedQuery != "rainy day jazz" {
		t.Errorf("fallback query = %q", res.Enhancement.EnhancedQuery)
	}
	if len(res.DetectedMoods) != 0 {
		t.Errorf("detected moods = %v, want none", res.DetectedMoods)
	}
	if searcher.enhancedWith.EnhancedQuery != "rainy day jazz" {
		t.Errorf("search used enhancement %+v", searcher.enhancedWith)
	}
	if res.Count != 10 {
		t.Errorf("got %d tracks, want 10", res.Count)
	}
}

func TestDiscoverTextAllSourcesFailGracefully(t *testing.T) {
	searcher := &fakeSearcher{enhancedErr: errors.New("search down")}
	resolver := &fakeResolver{err: errors.New("catalog down")}
	enhancer := &fakeEnhancer{enhancement: model.Enhancement{EnhancedQuery: "q"}}
	p := New(searcher, enhancer, resolver, true)

	res, err := p.DiscoverText(context.Background(), "anything", "p1", true)
	if err != nil {
		t.Fatalf("DiscoverText: %v", err)
	}
	if res.Count != 0 || len(res.Tracks) != 0 {
		t.Errorf("got %d tracks, want 0", res.Count)
	}
	if res.Playlist.TrackCount != 0 {
		t.Errorf("playlist track count = %d", res.Playlist.TrackCount)
	}
}

func TestDiscoverTextKeywordPath(t *testing.T) {
	searcher := &fakeSearcher{keywordOut: tracksNamed(6, "kw")}
	p := New(searcher, &fakeEnhancer{}, &fakeResolver{}, false)

	res, err := p.DiscoverText(context.Background(), "happy pop music", "p1", true)
	if err != nil {
		t.Fatalf("DiscoverText: %v", err)
	}
	if searcher.keywordCalls != 1 {
		t.Fatalf("keyword search called %d times, want 1", searcher.keywordCalls)
	}
	if searcher.keywordQuery != "pop happy" {
		t.Errorf("optimized query = %q, want %q", searcher.keywordQuery, "pop happy")
	}
	if searcher.enhancedCount() != 0 {
		t.Error("enhanced search must not run without the reasoning service")
	}
	if res.LLMEnhanced || res.Enhancement != nil {
		t.Error("result should not claim enhancement")
	}
	if len(res.DetectedMoods) != 1 || res.DetectedMoods[0] != "happy" {
		t.Errorf("detected moods = %v, want [happy]", res.DetectedMoods)
	}
	if res.Count != 6 {
		t.Errorf("got %d tracks, want 6", res.Count)
	}
}

func TestDiscoverTextPerRequestOptOut(t *testing.T) {
	// The reasoning service is available, but this request opted out:
	// the keyword path runs and no enhanced search happens.
	searcher := &fakeSearcher{keywordOut: tracksNamed(4, "kw")}
	enhancer := &fakeEnhancer{enhancement: model.Enhancement{EnhancedQuery: "q"}}
	resolver := &fakeResolver{}
	p := New(searcher, enhancer, resolver, true)

	res, err := p.DiscoverText(context.Background(), "happy pop music", "p1", false)
	if err != nil {
		t.Fatalf("DiscoverText: %v", err)
	}
	if searcher.keywordCalls != 1 {
		t.Errorf("keyword search called %d times, want 1", searcher.keywordCalls)
	}
	if searcher.enhancedCount() != 0 || resolver.calls != 0 {
		t.Error("opt-out request must skip enhanced search and curated lookup")
	}
	if res.LLMEnhanced || res.Enhancement != nil {
		t.Error("opt-out result must not claim enhancement")
	}
	if len(res.DetectedMoods) != 1 || res.DetectedMoods[0] != "happy" {
		t.Errorf("detected moods = %v, want [happy]", res.DetectedMoods)
	}
}

func TestDiscoverTextKeywordSearchError(t *testing.T) {
	searchErr := errors.New("catalog unavailable")
	searcher := &fakeSearcher{keywordErr: searchErr}
	p := New(searcher, &fakeEnhancer{}, &fakeResolver{}, false)

	if _, err := p.DiscoverText(context.Background(), "anything goes", "p1", true); !errors.Is(err, searchErr) {
		t.Errorf("error = %v, want %v", err, searchErr)
	}
}

func TestDiscoverVoiceCondition(t *testing.T) {
	searcher := &fakeSearcher{keywordOut: tracksNamed(3, "kw")}
	p := New(searcher, &fakeEnhancer{}, &fakeResolver{}, false)

	res, err := p.DiscoverVoice(context.Background(), "play something sad", "p1", true)
	if err != nil {
		t.Fatalf("DiscoverVoice: %v", err)
	}
	if res.Playlist.Condition != model.ConditionVoice {
		t.Errorf("playlist condition = %q, want voice", res.Playlist.Condition)
	}
}

func TestDiscoverTextRerankFailureKeepsOrder(t *testing.T) {
	searcher := &fakeSearcher{enhancedOut: [][]model.Track{tracksNamed(10, "live")}}
	enhancer := &fakeEnhancer{
		enhancement: model.Enhancement{EnhancedQuery: "q"},
		rerankErr:   errors.New("rerank down"),
	}
	p := New(searcher, enhancer, &fakeResolver{}, true)

	res, err := p.DiscoverText(context.Background(), "steady order", "p1", true)
	if err != nil {
		t.Fatalf("DiscoverText: %v", err)
	}
	for i, track := range res.Tracks {
		if track.ID != fmt.Sprintf("live-%d", i) {
			t.Errorf("track %d = %s, want live-%d", i, track.ID, i)
		}
	}
}

func TestDiscoverSlidersValidatesFirst(t *testing.T) {
	searcher := &fakeSearcher{}
	p := New(searcher, &fakeEnhancer{}, &fakeResolver{}, true)

	bad := model.AudioFeatures{Energy: 1.5, Valence: 0.5, Danceability: 0.5, Tempo: 120}
	if _, err := p.DiscoverSliders(context.Background(), bad, "p1"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
	if searcher.featureCalls != 0 {
		t.Error("invalid features must fail before any search")
	}
}

func TestDiscoverSliders(t *testing.T) {
	results := []model.Track{
		{ID: "s1", Name: "Alpha", Artist: "Duo"},
		{ID: "s2", Name: "Beta", Artist: "Duo"},
		{ID: "s3", Name: "Gamma", Artist: "Duo"},
		{ID: "s4", Name: "Delta", Artist: "Solo"},
	}
	searcher := &fakeSearcher{featureOut: results}
	enhancer := &fakeEnhancer{}
	p := New(searcher, enhancer, &fakeResolver{}, true)

	features := model.AudioFeatures{Energy: 0.8, Valence: 0.6, Danceability: 0.7, Tempo: 125}
	res, err := p.DiscoverSliders(context.Background(), features, "p1")
	if err != nil {
		t.Fatalf("DiscoverSliders: %v", err)
	}

	// Per-artist cap is tighter on the slider path: two per artist.
	if len(res.Tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(res.Tracks))
	}
	duo := 0
	for _, track := range res.Tracks {
		if track.Artist == "Duo" {
			duo++
		}
	}
	if duo != 2 {
		t.Errorf("got %d Duo tracks, want 2", duo)
	}

	want := curator.QueryInputForFeatures(features)
	if res.OriginalQuery != want {
		t.Errorf("query input = %q, want %q", res.OriginalQuery, want)
	}
	if res.Playlist.Condition != model.ConditionSliders {
		t.Errorf("playlist condition = %q", res.Playlist.Condition)
	}
	if enhancer.rerankCalls != 0 || searcher.enhancedCount() != 0 {
		t.Error("slider path must not touch the reasoning service or enhanced search")
	}
}
