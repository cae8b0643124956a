package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/ReilBleem13/ChatRooms/internal/service"
	"github.com/ReilBleem13/ChatRooms/internal/view"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 16
)

var clientSeq atomic.Int64

// Client is one connected UI. Drafts live in its own views, so two windows
// do not share a half-typed message.
type Client struct {
	id   int
	conn *websocket.Conn
	hub  *Hub
	core service.ChatServiceIn

	rooms  *view.RoomListView
	thread *view.ThreadView
	detail *view.DetailView

	limiter *rate.Limiter
	send    chan Frame
	quit    chan struct{}
	once    sync.Once
}

func NewClient(conn *websocket.Conn, hub *Hub, core service.ChatServiceIn, intentsPerMin int) *Client {
	if intentsPerMin <= 0 {
		intentsPerMin = 120
	}

	return &Client{
		id:      int(clientSeq.Add(1)),
		conn:    conn,
		hub:     hub,
		core:    core,
		rooms:   view.NewRoomListView(core),
		thread:  view.NewThreadView(core),
		detail:  view.NewDetailView(),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(intentsPerMin)), max(1, intentsPerMin/10)),
		send:    make(chan Frame, sendBuffer),
		quit:    make(chan struct{}),
	}
}

func (c *Client) Serve(ctx context.Context) {
	if err := c.hub.Register(c); err != nil {
		c.conn.Close()
		return
	}
	defer c.hub.Unregister(c)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.read(ctx)
	})

	g.Go(func() error {
		return c.write(ctx)
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Error during handle conn", "client_id", c.id, "error", err)
	}
}

func (c *Client) read(ctx context.Context) error {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			var raw json.RawMessage
			if err := c.conn.ReadJSON(&raw); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
					websocket.CloseNoStatusReceived,
					websocket.CloseNormalClosure) {
					slog.Error("Websocket close error", "client_id", c.id, "error", err)
				}
				return context.Canceled
			}

			var in IntentRequest
			if err := json.Unmarshal(raw, &in); err != nil {
				slog.Error("Failed to unmarshal intent", "client_id", c.id, "error", err)
				c.pushError(domain.ErrInvalidRequest)
				continue
			}
			c.handleIntent(ctx, &in)
		}
	}
}

func (c *Client) write(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-c.quit:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return context.Canceled

		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(frame); err != nil {
				return err
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (c *Client) handleIntent(ctx context.Context, in *IntentRequest) {
	switch in.Type {
	case SetDraftIntent:
		c.thread.SetDraft(in.Text)
	case OpenRequestIntent:
		c.rooms.OpenRequest()
	case CloseRequestIntent:
		c.rooms.CloseRequest()
	case SetRequestEmailIntent:
		c.rooms.SetRequestEmail(in.Text)
	case SetRequestNoteIntent:
		c.rooms.SetRequestNote(in.Text)

	// These reach the store and are throttled.
	case SelectRoomIntent, SendMessageIntent, SubmitRequestIntent:
		if !c.limiter.Allow() {
			slog.Warn("Intent throttled", "client_id", c.id, "type", in.Type)
			c.pushError(domain.ErrTooManyRequests)
			return
		}

		switch in.Type {
		case SelectRoomIntent:
			c.rooms.Select(ctx, in.RoomID)
		case SendMessageIntent:
			c.thread.Submit(ctx, c.core.Snapshot())
		case SubmitRequestIntent:
			c.rooms.SubmitRequest(ctx)
		}

	default:
		slog.Warn("Unknown intent type", "client_id", c.id, "type", in.Type)
		c.pushError(domain.ErrInvalidRequest.WithMessage("Unknown intent type"))
		return
	}

	// Drafts are per client, so the hub's broadcast does not cover them.
	c.pushState(c.core.Snapshot())
}

func (c *Client) render(st service.State) *StateFrame {
	return &StateFrame{
		Loading: st.Loading,
		Sidebar: c.rooms.Render(st),
		Thread:  c.thread.Render(st),
		Detail:  c.detail.Render(st),
	}
}

func (c *Client) pushState(st service.State) {
	c.push(Frame{Type: StateFrameType, State: c.render(st)})
}

func (c *Client) pushError(err *domain.AppError) {
	c.push(Frame{Type: ErrorFrameType, Error: toErrorInfo(err)})
}

func (c *Client) push(frame Frame) {
	select {
	case c.send <- frame:
	case <-c.quit:
	default:
		slog.Warn("Client send buffer full, frame dropped", "client_id", c.id, "type", frame.Type)
	}
}

func (c *Client) stop() {
	c.once.Do(func() {
		close(c.quit)
	})
}
