package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tunescout/logger"
	"tunescout/model"
)

type playlistRequest struct {
	Tracks        []model.Track   `json:"tracks"`
	Condition     model.Condition `json:"condition"`
	QueryInput    string          `json:"queryInput"`
	ParticipantID string          `json:"participantId"`
	DetectedMoods []string        `json:"detectedMoods"`
}

// SavePlaylistHandler curates the submitted tracks into a playlist and
// persists it.
func (h *APIHandler) SavePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Tracks) == 0 {
		respondError(w, http.StatusBadRequest, "Tracks are required")
		return
	}

	playlist := h.pipeline.Curator().Build(req.Tracks, req.Condition, req.QueryInput, req.ParticipantID, req.DetectedMoods)

	id, err := h.playlistRepo.Save(&playlist)
	if err != nil {
		logger.Error("failed to save playlist", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"playlistId": id,
		"playlist":   playlist,
		"message":    "Playlist saved successfully",
	})
}

// CuratePlaylistHandler builds a playlist from submitted tracks without
// persisting it.
func (h *APIHandler) CuratePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Tracks) == 0 {
		respondError(w, http.StatusBadRequest, "Tracks are required")
		return
	}

	playlist := h.pipeline.Curator().Build(req.Tracks, req.Condition, req.QueryInput, req.ParticipantID, req.DetectedMoods)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"playlist": playlist,
	})
}

// GetAllPlaylistsHandler lists every stored playlist.
func (h *APIHandler) GetAllPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlistRepo.GetAll()
	if err != nil {
		logger.Error("failed to fetch playlists", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"playlists": playlists,
		"count":     len(playlists),
	})
}

// GetPlaylistHandler fetches one playlist by numeric id.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	playlist, err := h.playlistRepo.GetByID(id)
	if err != nil {
		logger.Error("failed to fetch playlist",
			logger.Int64("id", id),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if playlist == nil {
		respondError(w, http.StatusNotFound, "Playlist not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"playlist": playlist,
	})
}

// GetParticipantPlaylistsHandler lists one participant's playlists.
func (h *APIHandler) GetParticipantPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	participantID := mux.Vars(r)["id"]

	playlists, err := h.playlistRepo.GetByParticipant(participantID)
	if err != nil {
		logger.Error("failed to fetch participant playlists",
			logger.String("participant", participantID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"participantId": participantID,
		"playlists":     playlists,
		"count":         len(playlists),
	})
}

// DeletePlaylistHandler removes a playlist by numeric id.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	if err := h.playlistRepo.Delete(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "Playlist not found")
			return
		}
		logger.Error("failed to delete playlist",
			logger.Int64("id", id),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Playlist deleted successfully",
	})
}
