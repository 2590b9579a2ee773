package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"tunescout/cache"
	"tunescout/logger"
	"tunescout/model"
)

type voiceSearchRequest struct {
	Transcription string `json:"transcription"`
	ParticipantID string `json:"participantId"`
	UseLLM        *bool  `json:"useLLM"`
}

type voiceProcessRequest struct {
	Text string `json:"text"`
}

// VoiceSearchHandler runs the discovery flow on a voice transcription.
func (h *APIHandler) VoiceSearchHandler(w http.ResponseWriter, r *http.Request) {
	var req voiceSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Transcription) == "" {
		respondError(w, http.StatusBadRequest, "Transcription is required")
		return
	}

	ctx := r.Context()
	useLLM := req.UseLLM == nil || *req.UseLLM

	// Cache entries are keyed by the transcription alone, so requests
	// that opt out of enhancement bypass the cache.
	if useLLM {
		if tracks, ok := cache.GetSearchResults(ctx, model.ConditionVoice, req.Transcription); ok {
			logger.Info("serving voice search from cache",
				logger.String("transcription", req.Transcription))
			moods := h.nlp.ExtractMoods(req.Transcription)
			playlist := h.pipeline.Curator().Build(tracks, model.ConditionVoice, req.Transcription, req.ParticipantID, moods)
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"success":       true,
				"originalText":  req.Transcription,
				"cached":        true,
				"detectedMoods": moods,
				"results":       tracks,
				"playlist":      playlist,
				"count":         len(tracks),
			})
			return
		}
	}

	result, err := h.pipeline.DiscoverVoice(ctx, req.Transcription, req.ParticipantID, useLLM)
	if err != nil {
		logger.Error("voice search failed",
			logger.String("transcription", req.Transcription),
			logger.ErrorField(err))
		respondPipelineError(w, err)
		return
	}

	if useLLM {
		cache.SetSearchResults(ctx, model.ConditionVoice, req.Transcription, result.Tracks)
	}

	var detectedArtist interface{}
	if result.Enhancement != nil && len(result.Enhancement.PopularArtists) > 0 {
		detectedArtist = result.Enhancement.PopularArtists[0]
	}
	detectedGenres := []string{}
	if result.Enhancement != nil && result.Enhancement.GenreContext != "" {
		detectedGenres = append(detectedGenres, result.Enhancement.GenreContext)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"originalText":   result.OriginalQuery,
		"llmEnhanced":    result.LLMEnhanced,
		"llmData":        result.Enhancement,
		"detectedMoods":  result.DetectedMoods,
		"detectedGenres": detectedGenres,
		"detectedArtist": detectedArtist,
		"results":        result.Tracks,
		"playlist":       result.Playlist,
		"count":          result.Count,
	})
}

// VoiceProcessHandler exposes the deterministic NLP pass on its own,
// returning detected moods and the derived search query.
func (h *APIHandler) VoiceProcessHandler(w http.ResponseWriter, r *http.Request) {
	var req voiceProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "Text is required")
		return
	}

	moods := h.nlp.ExtractMoods(req.Text)
	query := h.nlp.ConvertToSearchQuery(req.Text)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"originalText":   req.Text,
		"detectedMoods":  moods,
		"processedQuery": query,
	})
}
