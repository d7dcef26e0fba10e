package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/salmonco/sorabang/internal/metrics"
	"github.com/salmonco/sorabang/internal/models"
)

// PostMessage handles one-shot voice message submission: a multipart form
// with a nickname, the clip's duration in seconds, and the encoded audio.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	nickname := r.FormValue("nickname")

	duration := 0
	if v := r.FormValue("duration"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "duration must be an integer")
			return
		}
		duration = d
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		h.Error(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "could not read audio file")
		return
	}

	clip := models.Clip{
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
		Duration: duration,
	}

	msg, err := h.rooms.Submit(r.Context(), roomID, nickname, clip)
	if err != nil {
		h.analytics.Track("submit_message_failure", map[string]interface{}{
			"room_id": roomID,
		})
		h.DomainError(w, err)
		return
	}

	metrics.MessagesSubmitted.WithLabelValues("upload").Inc()
	metrics.MessageDuration.Observe(float64(msg.Duration))
	h.analytics.Track("submit_message_success", map[string]interface{}{
		"room_id":  roomID,
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
