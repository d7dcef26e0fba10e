package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salmonco/sorabang/internal/models"
	"github.com/salmonco/sorabang/internal/room"
	"github.com/salmonco/sorabang/internal/web"
)

var pageTemplates = template.Must(template.ParseFS(web.Templates, "templates/*.html"))

// pageData carries a room and its share links into the view templates.
type pageData struct {
	Room      *models.Room
	ShareURL  string
	ListenURL string
	JoinURL   string
}

// Index renders the room creation view.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "index.html", pageData{})
}

// ManagePage renders the owner's collection view: share links, the owner
// recording form and the received messages.
func (h *Handler) ManagePage(w http.ResponseWriter, r *http.Request) {
	h.roomPage(w, r, "manage.html")
}

// ListenPage renders the broadcast view over the room's messages.
func (h *Handler) ListenPage(w http.ResponseWriter, r *http.Request) {
	h.roomPage(w, r, "listen.html")
}

// JoinPage renders the visitor recording view.
func (h *Handler) JoinPage(w http.ResponseWriter, r *http.Request) {
	h.roomPage(w, r, "join.html")
}

// SuccessPage renders the post-submission confirmation view.
func (h *Handler) SuccessPage(w http.ResponseWriter, r *http.Request) {
	h.roomPage(w, r, "success.html")
}

// roomPage loads the room behind a view, redirecting to the creation view
// when the room id does not resolve.
func (h *Handler) roomPage(w http.ResponseWriter, r *http.Request, name string) {
	roomID := chi.URLParam(r, "id")

	found, err := h.rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		var nfErr *room.NotFoundError
		if errors.As(err, &nfErr) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.logger.Error().Err(err).Str("room_id", roomID).Msg("failed to load room for page")
		http.Error(w, "temporary failure, please retry", http.StatusBadGateway)
		return
	}

	h.renderPage(w, name, pageData{
		Room:      found,
		ShareURL:  fmt.Sprintf("%s/room/%s/join", h.baseURL, found.ID),
		ListenURL: fmt.Sprintf("%s/room/%s/listen", h.baseURL, found.ID),
		JoinURL:   fmt.Sprintf("%s/room/%s/join", h.baseURL, found.ID),
	})
}

func (h *Handler) renderPage(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("template render failed")
	}
}
