package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/google/uuid"
)

const (
	defaultProfileConcurrency = 8
	defaultRequestTimeout     = 10 * time.Second
)

var ErrServiceClosed = errors.New("chat service is closed")

type Option func(*ChatService)

// WithProfileConcurrency bounds parallel sender-profile lookups per reload.
func WithProfileConcurrency(n int) Option {
	return func(cs *ChatService) {
		if n > 0 {
			cs.profileConcurrency = n
		}
	}
}

// WithRequestTimeout bounds every single gateway call. Zero disables it.
func WithRequestTimeout(d time.Duration) Option {
	return func(cs *ChatService) {
		cs.requestTimeout = d
	}
}

// ChatService owns the client-side cache of rooms and messages and keeps it
// consistent with the store through change-feed driven reloads.
type ChatService struct {
	chatRepo ChatRepoIn
	feed     ChangeFeedIn
	session  SessionIn
	notifier Notifier

	profileConcurrency int
	requestTimeout     time.Duration

	mu         sync.Mutex
	user       *domain.User
	rooms      []domain.ChatRoom
	messages   []domain.Message
	requests   []domain.MessageRequest
	activeRoom *domain.ChatRoom
	loading    bool
	joined     map[uuid.UUID]bool

	// roomsSeq/messagesSeq number every load; a result is applied only if it is
	// newer than the last applied one.
	roomsSeq        uint64
	roomsApplied    uint64
	messagesSeq     uint64
	messagesApplied uint64
	roomLoaded      bool
	roomCtx         context.Context
	roomCancel      context.CancelFunc
	roomsSub        Subscription
	requestsSub     Subscription
	messagesSub     Subscription
	closed          bool
	ctx             context.Context
	cancel          context.CancelFunc
	changes         chan struct{}
}

func NewChatService(chatRepo ChatRepoIn, feed ChangeFeedIn, session SessionIn, notifier Notifier, opts ...Option) ChatServiceIn {
	ctx, cancel := context.WithCancel(context.Background())

	cs := &ChatService{
		chatRepo:           chatRepo,
		feed:               feed,
		session:            session,
		notifier:           notifier,
		profileConcurrency: defaultProfileConcurrency,
		requestTimeout:     defaultRequestTimeout,
		joined:             make(map[uuid.UUID]bool),
		ctx:                ctx,
		cancel:             cancel,
		changes:            make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(cs)
	}
	return cs
}

// Init resolves the session user, subscribes to room and request changes and
// performs the first load. Load failures are notified; only setup failures are
// returned.
func (cs *ChatService) Init(ctx context.Context) error {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return ErrServiceClosed
	}
	cs.loading = true
	cs.mu.Unlock()
	cs.emitChange()

	defer func() {
		cs.mu.Lock()
		cs.loading = false
		cs.mu.Unlock()
		cs.emitChange()
	}()

	user, err := cs.session.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("resolve current user: %w", err)
	}

	cs.mu.Lock()
	cs.user = user
	cs.mu.Unlock()

	// Subscribe before the first load so no change between the two is lost.
	sub, err := cs.feed.Subscribe(ctx, domain.ChangeFilter{
		Table: domain.ChatRoomsTable,
		Type:  domain.ChangeAll,
	}, cs.handleRoomChange)
	if err != nil {
		return fmt.Errorf("subscribe to chat rooms: %w", err)
	}

	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		closeSubscription(sub)
		return ErrServiceClosed
	}
	cs.roomsSub = sub
	cs.mu.Unlock()

	// Requests addressed to this user are written by other clients.
	reqSub, err := cs.feed.Subscribe(ctx, domain.ChangeFilter{
		Table: domain.MessageRequestsTable,
		Type:  domain.ChangeInsert,
	}, cs.handleRequestInsert)
	if err != nil {
		return fmt.Errorf("subscribe to message requests: %w", err)
	}

	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		closeSubscription(reqSub)
		return ErrServiceClosed
	}
	cs.requestsSub = reqSub
	cs.mu.Unlock()

	slog.Info("Chat service started", "user_id", user.ID)

	cs.LoadRooms(ctx)
	cs.LoadMessageRequests(ctx)
	return nil
}

// Teardown cancels in-flight loads and releases every subscription. It is
// safe to call more than once.
func (cs *ChatService) Teardown() {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return
	}
	cs.closed = true
	cs.cancel()
	messagesSub := cs.detachRoomLocked()
	roomsSub, requestsSub := cs.roomsSub, cs.requestsSub
	cs.roomsSub, cs.requestsSub = nil, nil
	cs.mu.Unlock()

	closeSubscription(messagesSub)
	closeSubscription(roomsSub)
	closeSubscription(requestsSub)
	cs.emitChange()

	slog.Info("Chat service stopped")
}

// SelectRoom makes roomID the active room: the previous room's loads are
// cancelled and its subscription closed, then a room-scoped subscription is
// opened and the messages are loaded. uuid.Nil clears the selection.
func (cs *ChatService) SelectRoom(ctx context.Context, roomID uuid.UUID) {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return
	}

	var next *domain.ChatRoom
	if roomID != uuid.Nil {
		next = findRoom(cs.rooms, roomID)
		if next == nil {
			cs.mu.Unlock()
			slog.Warn("Selected unknown chat room", "room_id", roomID)
			return
		}
		if cs.activeRoom != nil && cs.activeRoom.ID == roomID {
			// Re-selecting retries a thread that has not loaded yet.
			retry := !cs.roomLoaded
			roomCtx := cs.roomCtx
			cs.mu.Unlock()
			if retry {
				cs.LoadMessages(roomCtx, roomID)
			}
			return
		}
	}

	prevSub := cs.detachRoomLocked()
	cs.activeRoom = next

	var roomCtx context.Context
	if next != nil {
		cs.roomCtx, cs.roomCancel = context.WithCancel(cs.ctx)
		roomCtx = cs.roomCtx
	}
	cs.mu.Unlock()

	cs.emitChange()
	closeSubscription(prevSub)

	if next == nil {
		return
	}

	sub, err := cs.feed.Subscribe(roomCtx, domain.ChangeFilter{
		Table:  domain.MessagesTable,
		Type:   domain.ChangeInsert,
		RoomID: next.ID,
	}, cs.handleMessageInsert)
	if err != nil {
		cs.notifyError("Error subscribing to messages", err)
	} else {
		cs.mu.Lock()
		stale := cs.closed || roomCtx.Err() != nil
		if !stale {
			cs.messagesSub = sub
		}
		cs.mu.Unlock()

		// Another switch happened while subscribing.
		if stale {
			closeSubscription(sub)
			return
		}
		slog.Debug("Subscribed to chat room messages", "room_id", next.ID)
	}

	// The thread is shared by every UI, so only leaving the room or Teardown
	// may cancel its load.
	cs.LoadMessages(roomCtx, next.ID)
}

// detachRoomLocked clears the active room and returns its subscription for the
// caller to close once cs.mu is released.
func (cs *ChatService) detachRoomLocked() Subscription {
	if cs.roomCancel != nil {
		cs.roomCancel()
	}
	cs.roomCtx = nil
	cs.roomCancel = nil
	cs.activeRoom = nil
	cs.messages = nil
	cs.messagesApplied = cs.messagesSeq
	cs.roomLoaded = false

	sub := cs.messagesSub
	cs.messagesSub = nil
	return sub
}

func (cs *ChatService) handleRoomChange(ev domain.ChangeEvent) {
	slog.Debug("Chat rooms changed", "type", ev.Type)
	cs.LoadRooms(cs.ctx)
}

func (cs *ChatService) handleRequestInsert(ev domain.ChangeEvent) {
	slog.Debug("Message requests changed", "type", ev.Type)
	cs.LoadMessageRequests(cs.ctx)
}

// handleMessageInsert checks the room against the active room at delivery
// time, not at subscription time.
func (cs *ChatService) handleMessageInsert(ev domain.ChangeEvent) {
	roomID, ok := ev.RoomID()
	if !ok {
		slog.Warn("Message event without chat room id", "table", ev.Table, "type", ev.Type)
		return
	}

	cs.mu.Lock()
	active := cs.activeRoom != nil && cs.activeRoom.ID == roomID
	roomCtx := cs.roomCtx
	cs.mu.Unlock()

	if !active {
		slog.Debug("Ignore message event for inactive room", "room_id", roomID)
		return
	}
	cs.LoadMessages(roomCtx, roomID)
}

func (cs *ChatService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if cs.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cs.requestTimeout)
}

func (cs *ChatService) notifyError(title string, err error) {
	slog.Error(title, "error", err)

	cs.notifier.Notify(domain.Notification{
		Title:       title,
		Description: errorMessage(err),
		Variant:     domain.VariantDestructive,
	})
}

func (cs *ChatService) notifyInfo(title, description string) {
	cs.notifier.Notify(domain.Notification{
		Title:       title,
		Description: description,
		Variant:     domain.VariantDefault,
	})
}

// errorMessage prefers the backend's own text carried by an AppError.
func errorMessage(err error) string {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func isCanceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

func closeSubscription(sub Subscription) {
	if sub == nil {
		return
	}
	if err := sub.Close(); err != nil {
		slog.Warn("Failed to close subscription", "error", err)
	}
}
