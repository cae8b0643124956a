package server

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/ReilBleem13/ChatRooms/internal/service"
)

const notificationBuffer = 32

var ErrHubClosed = errors.New("hub is closed")

// Hub fans state changes and notifications out to every connected UI. It is
// the core's Notifier.
type Hub struct {
	clients map[int]*Client
	count   atomic.Int32

	register      chan *Client
	unregister    chan *Client
	notifications chan domain.Notification
	done          chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:       make(map[int]*Client),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		notifications: make(chan domain.Notification, notificationBuffer),
		done:          make(chan struct{}),
	}
}

func (h *Hub) Notify(n domain.Notification) {
	select {
	case h.notifications <- n:
	default:
		slog.Warn("Notification dropped", "title", n.Title)
	}
}

func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Clients reports the number of connected UIs.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Run owns the client set until ctx is done, then stops every client.
func (h *Hub) Run(ctx context.Context, core service.ChatServiceIn) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for id, client := range h.clients {
				client.stop()
				delete(h.clients, id)
			}
			h.count.Store(0)
			slog.Info("Hub stopped")
			return

		case client := <-h.register:
			h.clients[client.id] = client
			h.count.Store(int32(len(h.clients)))
			slog.Info("UI connected", "client_id", client.id)
			client.pushState(core.Snapshot())

		case client := <-h.unregister:
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				h.count.Store(int32(len(h.clients)))
				client.stop()
				slog.Info("UI disconnected", "client_id", client.id)
			}

		case <-core.Changes():
			st := core.Snapshot()
			for _, client := range h.clients {
				client.pushState(st)
			}

		case n := <-h.notifications:
			frame := Frame{Type: NotificationFrameType, Notification: &n}
			for _, client := range h.clients {
				client.push(frame)
			}
		}
	}
}
