package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"tunescout/cache"
	"tunescout/core/curator"
	"tunescout/logger"
	"tunescout/model"
)

type textSearchRequest struct {
	Query         string `json:"query"`
	ParticipantID string `json:"participantId"`
	UseLLM        *bool  `json:"useLLM"`
}

type sliderSearchRequest struct {
	Energy        *float64 `json:"energy"`
	Valence       *float64 `json:"valence"`
	Danceability  *float64 `json:"danceability"`
	Tempo         *float64 `json:"tempo"`
	ParticipantID string   `json:"participantId"`
}

// TextSearchHandler runs the text discovery flow. Results are cached
// per normalized query so repeated searches skip the catalog.
func (h *APIHandler) TextSearchHandler(w http.ResponseWriter, r *http.Request) {
	var req textSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "Query is required")
		return
	}

	ctx := r.Context()
	useLLM := req.UseLLM == nil || *req.UseLLM

	// Cache entries are keyed by the query alone, so requests that opt
	// out of enhancement bypass the cache.
	if useLLM {
		if tracks, ok := cache.GetSearchResults(ctx, model.ConditionText, req.Query); ok {
			logger.Info("serving text search from cache", logger.String("query", req.Query))
			playlist := h.pipeline.Curator().Build(tracks, model.ConditionText, req.Query, req.ParticipantID, nil)
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"success":       true,
				"originalQuery": req.Query,
				"cached":        true,
				"results":       tracks,
				"playlist":      playlist,
				"count":         len(tracks),
			})
			return
		}
	}

	result, err := h.pipeline.DiscoverText(ctx, req.Query, req.ParticipantID, useLLM)
	if err != nil {
		logger.Error("text search failed",
			logger.String("query", req.Query),
			logger.ErrorField(err))
		respondPipelineError(w, err)
		return
	}

	if useLLM {
		cache.SetSearchResults(ctx, model.ConditionText, req.Query, result.Tracks)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"originalQuery": result.OriginalQuery,
		"llmEnhanced":   result.LLMEnhanced,
		"llmData":       result.Enhancement,
		"results":       result.Tracks,
		"playlist":      result.Playlist,
		"count":         result.Count,
	})
}

// SliderSearchHandler runs the feature-band discovery flow.
func (h *APIHandler) SliderSearchHandler(w http.ResponseWriter, r *http.Request) {
	var req sliderSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Energy == nil || req.Valence == nil || req.Danceability == nil || req.Tempo == nil {
		respondError(w, http.StatusBadRequest,
			"All audio features (energy, valence, danceability, tempo) are required")
		return
	}

	features := model.AudioFeatures{
		Energy:       *req.Energy,
		Valence:      *req.Valence,
		Danceability: *req.Danceability,
		Tempo:        *req.Tempo,
	}

	ctx := r.Context()
	cacheKey := curator.QueryInputForFeatures(features)

	if tracks, ok := cache.GetSearchResults(ctx, model.ConditionSliders, cacheKey); ok {
		logger.Info("serving slider search from cache")
		playlist := h.pipeline.Curator().Build(tracks, model.ConditionSliders, cacheKey, req.ParticipantID, nil)
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"parameters": features,
			"cached":     true,
			"results":    tracks,
			"playlist":   playlist,
			"count":      len(tracks),
		})
		return
	}

	result, err := h.pipeline.DiscoverSliders(ctx, features, req.ParticipantID)
	if err != nil {
		logger.Error("slider search failed", logger.ErrorField(err))
		respondPipelineError(w, err)
		return
	}

	cache.SetSearchResults(ctx, model.ConditionSliders, cacheKey, result.Tracks)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"parameters": features,
		"results":    result.Tracks,
		"playlist":   result.Playlist,
		"count":      result.Count,
	})
}
