package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/salmonco/sorabang/internal/metrics"
	"github.com/salmonco/sorabang/internal/models"
)

// CreateRoomRequest represents the room creation request.
type CreateRoomRequest struct {
	Title string `json:"title"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	CreatedAt time.Time         `json:"created_at"`
	Messages  []MessageResponse `json:"messages"`
}

// MessageResponse represents a voice message in API responses.
type MessageResponse struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	AudioURL  string    `json:"audio_url"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
}

func toRoomResponse(r *models.Room) RoomResponse {
	msgs := make([]MessageResponse, len(r.Messages))
	for i, m := range r.Messages {
		msgs[i] = MessageResponse{
			ID:        m.ID,
			Nickname:  m.Nickname,
			AudioURL:  m.AudioURL,
			Duration:  m.Duration,
			CreatedAt: m.CreatedAt,
		}
	}
	return RoomResponse{
		ID:        r.ID,
		Title:     r.Title,
		CreatedAt: r.CreatedAt,
		Messages:  msgs,
	}
}

// CreateRoom handles room creation.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := h.rooms.CreateRoom(r.Context(), req.Title)
	if err != nil {
		h.analytics.Track("create_room_failure", map[string]interface{}{
			"room_title": req.Title,
		})
		h.DomainError(w, err)
		return
	}

	metrics.RoomsCreated.Inc()
	h.analytics.Track("create_room_success", map[string]interface{}{
		"room_id":    created.ID,
		"room_title": created.Title,
	})

	h.JSON(w, http.StatusCreated, toRoomResponse(created))
}

// GetRoom handles fetching a room with its messages in arrival order.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	found, err := h.rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		h.DomainError(w, err)
		return
	}

	h.JSON(w, http.StatusOK, toRoomResponse(found))
}
