package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"tunescout/logger"
	"tunescout/model"
)

// LogInteractionHandler records one participant interaction.
func (h *APIHandler) LogInteractionHandler(w http.ResponseWriter, r *http.Request) {
	var interaction model.Interaction
	if err := json.NewDecoder(r.Body).Decode(&interaction); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if interaction.Condition == "" {
		respondError(w, http.StatusBadRequest, "Condition is required")
		return
	}

	id, err := h.interactionRepo.Log(&interaction)
	if err != nil {
		logger.Error("failed to log interaction", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      id,
		"message": "Interaction logged successfully",
	})
}

// ExportInteractionsHandler dumps every interaction for analysis.
func (h *APIHandler) ExportInteractionsHandler(w http.ResponseWriter, r *http.Request) {
	data, err := h.interactionRepo.GetAll()
	if err != nil {
		logger.Error("failed to export interactions", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

// GetParticipantInteractionsHandler lists one participant's
// interactions.
func (h *APIHandler) GetParticipantInteractionsHandler(w http.ResponseWriter, r *http.Request) {
	participantID := mux.Vars(r)["id"]

	data, err := h.interactionRepo.GetByParticipant(participantID)
	if err != nil {
		logger.Error("failed to fetch participant interactions",
			logger.String("participant", participantID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"participantId": participantID,
		"data":          data,
		"count":         len(data),
	})
}

// InteractionStatsHandler aggregates interactions per condition.
func (h *APIHandler) InteractionStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.interactionRepo.StatsByCondition()
	if err != nil {
		logger.Error("failed to aggregate interaction stats", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// ClearInteractionsHandler wipes the interaction log.
func (h *APIHandler) ClearInteractionsHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.interactionRepo.ClearAll(); err != nil {
		logger.Error("failed to clear interactions", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "All data cleared",
	})
}
