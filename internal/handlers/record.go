package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salmonco/sorabang/internal/metrics"
	"github.com/salmonco/sorabang/internal/models"
	"github.com/salmonco/sorabang/internal/recorder"
)

// StartRecordingRequest represents the recording session start request.
type StartRecordingRequest struct {
	MIMEType string `json:"mime_type"`
}

// RecordingResponse represents a recording session in API responses.
type RecordingResponse struct {
	SessionID   string          `json:"session_id"`
	Status      recorder.Status `json:"status"`
	Elapsed     int             `json:"elapsed"`
	MaxDuration int             `json:"max_duration"`
}

func toRecordingResponse(s *recorder.Session) RecordingResponse {
	return RecordingResponse{
		SessionID:   s.ID,
		Status:      s.Recorder.Status(),
		Elapsed:     s.Recorder.Elapsed(),
		MaxDuration: models.MaxDurationSeconds,
	}
}

// StartRecording opens a chunked recording session against a room. The
// session's duration counter ticks server-side and hard-stops at the cap.
func (h *Handler) StartRecording(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	// Reject sessions against rooms that do not exist.
	if _, err := h.rooms.GetRoom(r.Context(), roomID); err != nil {
		h.DomainError(w, err)
		return
	}

	var req StartRecordingRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	if req.MIMEType == "" {
		req.MIMEType = "audio/webm"
	}

	session, err := h.sessions.Begin(roomID, req.MIMEType)
	if err != nil {
		h.DomainError(w, err)
		return
	}

	metrics.RecordingSessionsStarted.Inc()
	h.JSON(w, http.StatusCreated, toRecordingResponse(session))
}

// AppendChunk buffers a raw audio chunk into a recording session.
func (h *Handler) AppendChunk(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		h.DomainError(w, err)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "could not read chunk")
		return
	}

	if err := session.Recorder.AppendChunk(data); err != nil {
		// The cap may have stopped the recording between chunks; tell the
		// client where things stand instead of a bare conflict.
		if session.Recorder.Status() == recorder.StatusStopped {
			h.JSON(w, http.StatusConflict, toRecordingResponse(session))
			return
		}
		h.DomainError(w, err)
		return
	}

	h.JSON(w, http.StatusOK, toRecordingResponse(session))
}

// StopRecording finalizes a session's clip. Stopping a session the cap
// already finalized reports the finalized state rather than an error.
func (h *Handler) StopRecording(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		h.DomainError(w, err)
		return
	}

	if _, err := session.Recorder.Stop(); err != nil {
		if session.Recorder.Status() == recorder.StatusStopped {
			h.JSON(w, http.StatusOK, toRecordingResponse(session))
			return
		}
		h.DomainError(w, err)
		return
	}

	h.JSON(w, http.StatusOK, toRecordingResponse(session))
}

// DiscardRecording resets and removes a session, dropping buffered audio.
func (h *Handler) DiscardRecording(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	if _, err := h.sessions.Get(sid); err != nil {
		h.DomainError(w, err)
		return
	}

	h.sessions.End(sid)
	w.WriteHeader(http.StatusNoContent)
}

// SubmitRecordingRequest represents the session submission request.
type SubmitRecordingRequest struct {
	Nickname string `json:"nickname"`
}

// SubmitRecording turns a stopped session's clip into a message in the
// session's room, then retires the session.
func (h *Handler) SubmitRecording(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		h.DomainError(w, err)
		return
	}

	var req SubmitRecordingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	clip, ok := session.Recorder.Clip()
	if !ok {
		h.Error(w, http.StatusConflict, "recording must be stopped before submitting")
		return
	}

	msg, err := h.rooms.Submit(r.Context(), session.RoomID, req.Nickname, clip)
	if err != nil {
		h.analytics.Track("submit_message_failure", map[string]interface{}{
			"room_id": session.RoomID,
		})
		h.DomainError(w, err)
		return
	}

	h.sessions.End(session.ID)

	metrics.MessagesSubmitted.WithLabelValues("session").Inc()
	metrics.MessageDuration.Observe(float64(msg.Duration))
	h.analytics.Track("submit_message_success", map[string]interface{}{
		"room_id":  session.RoomID,
		"duration": msg.Duration,
	})

	h.JSON(w, http.StatusCreated, MessageResponse{
		ID:        msg.ID,
		Nickname:  msg.Nickname,
		AudioURL:  msg.AudioURL,
		Duration:  msg.Duration,
		CreatedAt: msg.CreatedAt,
	})
}
