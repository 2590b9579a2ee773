package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"tunescout/config"
	"tunescout/core/nlp"
	"tunescout/core/pipeline"
	"tunescout/logger"
	"tunescout/model"
	"tunescout/repository"
)

// APIHandler carries the shared dependencies of all HTTP handlers.
type APIHandler struct {
	pipeline        *pipeline.Pipeline
	nlp             *nlp.Processor
	playlistRepo    repository.PlaylistRepository
	interactionRepo repository.InteractionRepository
	cfg             *config.Config
}

// NewAPIHandler creates the handler set with its dependencies wired in.
func NewAPIHandler(
	p *pipeline.Pipeline,
	playlistRepo repository.PlaylistRepository,
	interactionRepo repository.InteractionRepository,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		pipeline:        p,
		nlp:             nlp.NewProcessor(),
		playlistRepo:    playlistRepo,
		interactionRepo: interactionRepo,
		cfg:             cfg,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondPipelineError maps the error taxonomy to HTTP statuses:
// validation failures reject with 400, authentication failures with
// 502, anything else with 500.
func respondPipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrAuthentication):
		respondError(w, http.StatusBadGateway, "catalog authentication failed")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// HealthHandler reports liveness.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"llmEnabled": h.cfg.LLMEnabled(),
	})
}
