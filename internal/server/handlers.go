package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/ReilBleem13/ChatRooms/internal/service"
	"github.com/ReilBleem13/ChatRooms/internal/view"
	"github.com/gorilla/websocket"
)

type Handler struct {
	core          service.ChatServiceIn
	hub           *Hub
	intentsPerMin int
	upgrader      *websocket.Upgrader
}

func NewHandler(core service.ChatServiceIn, hub *Hub, intentsPerMin int) *Handler {
	return &Handler{
		core:          core,
		hub:           hub,
		intentsPerMin: intentsPerMin,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferPool: &sync.Pool{},
		},
	}
}

func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	user, err := GetUserFromContext(r.Context())
	if err != nil {
		writeError(w, domain.ErrUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection", "user_id", user.ID, "error", err)
		return
	}

	client := NewClient(conn, h.hub, h.core, h.intentsPerMin)
	slog.Info("UI client connected", "client_id", client.id, "user_id", user.ID, "remote_addr", r.RemoteAddr)
	client.Serve(r.Context())
	slog.Info("UI client disconnected", "client_id", client.id, "user_id", user.ID)
}

// handleState renders the current state without any drafts.
func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	user, err := GetUserFromContext(r.Context())
	if err != nil {
		writeError(w, domain.ErrUnauthorized)
		return
	}
	slog.Debug("State requested", "user_id", user.ID)

	st := h.core.Snapshot()

	resp := &StateFrame{
		Loading: st.Loading,
		Sidebar: view.NewRoomListView(h.core).Render(st),
		Thread:  view.NewThreadView(h.core).Render(st),
		Detail:  view.NewDetailView().Render(st),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}
