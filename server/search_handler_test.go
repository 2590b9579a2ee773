package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"tunescout/cache"
	"tunescout/config"
	"tunescout/core/pipeline"
	"tunescout/model"
)

// stubSearcher counts calls per search surface. SearchEnhanced runs on
// a goroutine during discovery, so access is mutex-guarded.
type stubSearcher struct {
	mu            sync.Mutex
	keywordCalls  int
	enhancedCalls int
	out           []model.Track
}

func (s *stubSearcher) SearchByKeywords(ctx context.Context, query string) ([]model.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keywordCalls++
	return s.out, nil
}

func (s *stubSearcher) SearchEnhanced(ctx context.Context, query string, enhancement model.Enhancement) ([]model.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enhancedCalls++
	return s.out, nil
}

func (s *stubSearcher) SearchByAudioFeatures(ctx context.Context, features model.AudioFeatures) ([]model.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out, nil
}

func (s *stubSearcher) counts() (keyword, enhanced int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keywordCalls, s.enhancedCalls
}

type stubEnhancer struct{}

func (stubEnhancer) EnhanceQuery(ctx context.Context, query string) (model.Enhancement, error) {
	return model.Enhancement{EnhancedQuery: query}, nil
}

func (stubEnhancer) Rerank(ctx context.Context, tracks []model.Track, originalQuery string, enhancement model.Enhancement) ([]model.Track, error) {
	return tracks, nil
}

type stubResolver struct{}

func (stubResolver) Resolve(ctx context.Context, query string, candidateArtists []string) ([]model.Track, error) {
	return nil, nil
}

func newTestHandler(searcher *stubSearcher) *APIHandler {
	p := pipeline.New(searcher, stubEnhancer{}, stubResolver{}, true)
	return NewAPIHandler(p, nil, nil, &config.Config{})
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	var payload map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, payload
}

func useTestRedis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	prev := cache.RedisClient
	cache.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.RedisClient.Close()
		cache.RedisClient = prev
	})
}

func TestTextSearchDefaultUsesEnhancement(t *testing.T) {
	searcher := &stubSearcher{out: []model.Track{{ID: "t1", Name: "One", Artist: "A"}}}
	h := newTestHandler(searcher)

	rec, payload := postJSON(t, h.TextSearchHandler, `{"query":"happy pop music"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	keyword, enhanced := searcher.counts()
	if enhanced == 0 || keyword != 0 {
		t.Errorf("keyword=%d enhanced=%d, want the enhanced path", keyword, enhanced)
	}
	if payload["llmEnhanced"] != true {
		t.Errorf("llmEnhanced = %v, want true", payload["llmEnhanced"])
	}
}

func TestTextSearchRequestOptOut(t *testing.T) {
	searcher := &stubSearcher{out: []model.Track{{ID: "t1", Name: "One", Artist: "A"}}}
	h := newTestHandler(searcher)

	rec, payload := postJSON(t, h.TextSearchHandler, `{"query":"happy pop music","useLLM":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	keyword, enhanced := searcher.counts()
	if keyword != 1 || enhanced != 0 {
		t.Errorf("keyword=%d enhanced=%d, want the keyword path only", keyword, enhanced)
	}
	if payload["llmEnhanced"] != false {
		t.Errorf("llmEnhanced = %v, want false", payload["llmEnhanced"])
	}
}

func TestVoiceSearchRequestOptOut(t *testing.T) {
	searcher := &stubSearcher{out: []model.Track{{ID: "t1", Name: "One", Artist: "A"}}}
	h := newTestHandler(searcher)

	rec, payload := postJSON(t, h.VoiceSearchHandler, `{"transcription":"play something sad","useLLM":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	keyword, enhanced := searcher.counts()
	if keyword != 1 || enhanced != 0 {
		t.Errorf("keyword=%d enhanced=%d, want the keyword path only", keyword, enhanced)
	}
	if payload["llmEnhanced"] != false {
		t.Errorf("llmEnhanced = %v, want false", payload["llmEnhanced"])
	}
}

func TestVoiceSearchServedFromCache(t *testing.T) {
	useTestRedis(t)
	searcher := &stubSearcher{}
	h := newTestHandler(searcher)

	cached := []model.Track{
		{ID: "c1", Name: "Stronger", Artist: "Kanye West"},
		{ID: "c2", Name: "Till I Collapse", Artist: "Eminem"},
	}
	cache.SetSearchResults(context.Background(), model.ConditionVoice, "gym bangers", cached)

	rec, payload := postJSON(t, h.VoiceSearchHandler, `{"transcription":"gym bangers"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if payload["cached"] != true {
		t.Errorf("cached = %v, want true", payload["cached"])
	}
	if payload["count"] != float64(2) {
		t.Errorf("count = %v, want 2", payload["count"])
	}
	keyword, enhanced := searcher.counts()
	if keyword != 0 || enhanced != 0 {
		t.Error("a cache hit must not reach the live catalog")
	}

	moods, _ := payload["detectedMoods"].([]interface{})
	if len(moods) != 1 || moods[0] != "workout" {
		t.Errorf("detectedMoods = %v, want [workout]", payload["detectedMoods"])
	}
}
