// Package pipeline orchestrates a discovery request end to end: query
// enhancement, curated lookup and live search, merging, filtering,
// reranking and final playlist assembly.
package pipeline

import (
	"context"
	"strings"
	"sync"

	"tunescout/core/curator"
	"tunescout/core/dedup"
	"tunescout/core/nlp"
	"tunescout/logger"
	"tunescout/model"
)

const (
	maxCuratedTracks = 3
	targetResults    = 10
	rerankWindow     = 20
	rerankThreshold  = 5
	diversityCap     = 3
	sliderDiversity  = 2
)

// Searcher is the live catalog search surface the pipeline consumes.
type Searcher interface {
	SearchByKeywords(ctx context.Context, query string) ([]model.Track, error)
	SearchEnhanced(ctx context.Context, query string, enhancement model.Enhancement) ([]model.Track, error)
	SearchByAudioFeatures(ctx context.Context, features model.AudioFeatures) ([]model.Track, error)
}

// Enhancer is the reasoning-service surface: query enhancement and
// relevance reranking. Both are optional capabilities of the pipeline.
type Enhancer interface {
	EnhanceQuery(ctx context.Context, query string) (model.Enhancement, error)
	Rerank(ctx context.Context, tracks []model.Track, originalQuery string, enhancement model.Enhancement) ([]model.Track, error)
}

// Resolver looks up curated tracks for recognized artists.
type Resolver interface {
	Resolve(ctx context.Context, query string, candidateArtists []string) ([]model.Track, error)
}

// Result is what a discovery run hands back to the transport layer.
type Result struct {
	OriginalQuery string             `json:"originalQuery"`
	LLMEnhanced   bool               `json:"llmEnhanced"`
	Enhancement   *model.Enhancement `json:"llmData,omitempty"`
	DetectedMoods []string           `json:"detectedMoods,omitempty"`
	Tracks        []model.Track      `json:"results"`
	Playlist      model.Playlist     `json:"playlist"`
	Count         int                `json:"count"`
}

type Pipeline struct {
	searcher   Searcher
	enhancer   Enhancer
	resolver   Resolver
	nlp        *nlp.Processor
	curator    *curator.Curator
	llmEnabled bool
}

func New(searcher Searcher, enhancer Enhancer, resolver Resolver, llmEnabled bool) *Pipeline {
	return &Pipeline{
		searcher:   searcher,
		enhancer:   enhancer,
		resolver:   resolver,
		nlp:        nlp.NewProcessor(),
		curator:    curator.New(),
		llmEnabled: llmEnabled,
	}
}

// Curator exposes the playlist curator for clock injection and reuse by
// transport handlers.
func (p *Pipeline) Curator() *curator.Curator {
	return p.curator
}

// DiscoverText runs the full text-query flow and returns the filtered
// track list packaged as a playlist. A request may opt out of LLM
// enhancement with useLLM; the service-level toggle still wins.
func (p *Pipeline) DiscoverText(ctx context.Context, query, participantID string, useLLM bool) (*Result, error) {
	return p.discover(ctx, query, participantID, model.ConditionText, useLLM)
}

// DiscoverVoice runs the same flow for a voice transcription, and also
// reports the moods detected along the way for playlist naming.
func (p *Pipeline) DiscoverVoice(ctx context.Context, transcription, participantID string, useLLM bool) (*Result, error) {
	return p.discover(ctx, transcription, participantID, model.ConditionVoice, useLLM)
}

func (p *Pipeline) discover(ctx context.Context, query, participantID string, condition model.Condition, useLLM bool) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &model.ValidationError{Field: "query", Reason: "must not be blank"}
	}

	llm := p.llmEnabled && useLLM

	var (
		tracks        []model.Track
		enhancement   *model.Enhancement
		detectedMoods []string
	)

	if llm {
		enh := p.enhance(ctx, query)
		enhancement = &enh

		curated, searched := p.fanOut(ctx, query, enh)
		if len(curated) > maxCuratedTracks {
			curated = curated[:maxCuratedTracks]
		}
		tracks = append(curated, searched...)
		detectedMoods = enh.TrendingKeywords
	} else {
		keywords := p.nlp.ExtractKeywords(query)
		optimized := p.nlp.BuildSearchQuery(keywords)
		detectedMoods = p.nlp.ExtractMoods(query)

		var err error
		tracks, err = p.searcher.SearchByKeywords(ctx, optimized)
		if err != nil {
			return nil, err
		}
	}

	final := dedup.ProcessResults(tracks, dedup.Options{
		MaxPerArtist:     diversityCap,
		RemoveDuplicates: true,
		EnsureDiversity:  true,
		FilterCovers:     true,
	})
	if len(final) > targetResults {
		final = final[:targetResults]
	}

	// Single relaxed retry when the filtered list under-fills. The
	// diversity cap is dropped on the second pass, never iterated.
	if len(final) < targetResults && llm && enhancement != nil {
		logger.Warn("under-filled result set, retrying search",
			logger.Int("have", len(final)),
			logger.Int("want", targetResults))

		additional, err := p.searcher.SearchEnhanced(ctx, query, *enhancement)
		if err != nil {
			logger.Warn("retry search failed", logger.ErrorField(err))
		} else {
			combined := append(append([]model.Track{}, final...), additional...)
			refiltered := dedup.ProcessResults(combined, dedup.Options{
				MaxPerArtist:     diversityCap,
				RemoveDuplicates: true,
				EnsureDiversity:  false,
				FilterCovers:     true,
			})
			if len(refiltered) > targetResults {
				refiltered = refiltered[:targetResults]
			}
			final = refiltered
		}
	}

	final = p.rerank(ctx, final, query, enhancement)

	playlist := p.curator.Build(final, condition, query, participantID, detectedMoods)
	return &Result{
		OriginalQuery: query,
		LLMEnhanced:   llm,
		Enhancement:   enhancement,
		DetectedMoods: detectedMoods,
		Tracks:        final,
		Playlist:      playlist,
		Count:         len(final),
	}, nil
}

// DiscoverSliders maps the four slider values to a feature-band search.
// Validation happens before any network call.
func (p *Pipeline) DiscoverSliders(ctx context.Context, features model.AudioFeatures, participantID string) (*Result, error) {
	if err := features.Validate(); err != nil {
		return nil, err
	}

	results, err := p.searcher.SearchByAudioFeatures(ctx, features)
	if err != nil {
		return nil, err
	}

	final := dedup.ProcessResults(results, dedup.Options{
		MaxPerArtist:     sliderDiversity,
		RemoveDuplicates: true,
		EnsureDiversity:  true,
		FilterCovers:     true,
	})
	if len(final) > targetResults {
		final = final[:targetResults]
	}

	queryInput := curator.QueryInputForFeatures(features)
	playlist := p.curator.Build(final, model.ConditionSliders, queryInput, participantID, nil)
	return &Result{
		OriginalQuery: queryInput,
		Tracks:        final,
		Playlist:      playlist,
		Count:         len(final),
	}, nil
}

// enhance asks the reasoning service for an enhancement, degrading to
// the deterministic fallback so the pipeline never aborts here.
func (p *Pipeline) enhance(ctx context.Context, query string) model.Enhancement {
	enh, err := p.enhancer.EnhanceQuery(ctx, query)
	if err != nil {
		logger.Warn("query enhancement failed, using fallback",
			logger.String("query", query),
			logger.ErrorField(err))
		return model.FallbackEnhancement(query)
	}
	return enh
}

// fanOut issues the curated lookup and the enhanced live search
// concurrently and waits for both. Either side failing is logged and
// contributes an empty slice.
func (p *Pipeline) fanOut(ctx context.Context, query string, enh model.Enhancement) (curated, searched []model.Track) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		tracks, err := p.resolver.Resolve(ctx, query, enh.PopularArtists)
		if err != nil {
			logger.Warn("curated lookup failed", logger.ErrorField(err))
			return
		}
		curated = tracks
	}()

	go func() {
		defer wg.Done()
		tracks, err := p.searcher.SearchEnhanced(ctx, query, enh)
		if err != nil {
			logger.Warn("enhanced search failed", logger.ErrorField(err))
			return
		}
		searched = tracks
	}()

	wg.Wait()
	return curated, searched
}

// rerank asks the reasoning service to reorder the candidates by
// relevance. A nil enhancement means this run skipped the reasoning
// service, and any failure leaves the ordering unchanged.
func (p *Pipeline) rerank(ctx context.Context, tracks []model.Track, query string, enhancement *model.Enhancement) []model.Track {
	if enhancement == nil || len(tracks) <= rerankThreshold {
		return tracks
	}

	window := tracks
	if len(window) > rerankWindow {
		window = window[:rerankWindow]
	}

	ranked, err := p.enhancer.Rerank(ctx, window, query, *enhancement)
	if err != nil {
		logger.Warn("rerank failed, keeping original order", logger.ErrorField(err))
		return tracks
	}
	if len(window) < len(tracks) {
		ranked = append(ranked, tracks[len(window):]...)
	}
	return ranked
}
