package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/google/uuid"
)

// fakeRepo is an in-memory ChatRepoIn. Unique (room, user) participants are
// enforced the same way the database does.
type fakeRepo struct {
	mu sync.Mutex

	rooms    []domain.ChatRoom
	roomsErr error

	messages     map[uuid.UUID][]domain.Message
	messagesErr  error
	messageCalls map[uuid.UUID]int
	// blockFirst holds the first GetRoomMessages call for a room until the
	// channel is closed; started reports that such a call is waiting.
	blockFirst map[uuid.UUID]chan struct{}
	started    chan uuid.UUID

	profiles      map[uuid.UUID]*domain.Profile
	profileErr    map[uuid.UUID]error
	profileDelay  map[uuid.UUID]time.Duration
	profileLookup int

	newMessageErr error
	sent          []domain.Message

	participants       []domain.ChatParticipant
	participantErr     error
	participantInserts []uuid.UUID
	participantBarrier *barrier

	requests   []domain.MessageRequest
	requestErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		messages:     make(map[uuid.UUID][]domain.Message),
		messageCalls: make(map[uuid.UUID]int),
		blockFirst:   make(map[uuid.UUID]chan struct{}),
		started:      make(chan uuid.UUID, 8),
		profiles:     make(map[uuid.UUID]*domain.Profile),
		profileErr:   make(map[uuid.UUID]error),
		profileDelay: make(map[uuid.UUID]time.Duration),
	}
}

func (f *fakeRepo) GetActiveRooms(ctx context.Context) ([]domain.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.roomsErr != nil {
		return nil, f.roomsErr
	}
	var rooms []domain.ChatRoom
	for _, r := range f.rooms {
		if r.IsActive {
			rooms = append(rooms, r)
		}
	}
	return rooms, nil
}

func (f *fakeRepo) GetRoomMessages(ctx context.Context, roomID uuid.UUID) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.messageCalls[roomID]++
	err := f.messagesErr
	messages := slices.Clone(f.messages[roomID])
	gate, ok := f.blockFirst[roomID]
	if ok {
		delete(f.blockFirst, roomID)
	}
	f.mu.Unlock()

	if ok {
		f.started <- roomID
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (f *fakeRepo) NewMessage(ctx context.Context, in *domain.Message) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.newMessageErr != nil {
		return nil, f.newMessageErr
	}

	msg := *in
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt
	f.messages[in.ChatRoomID] = append(f.messages[in.ChatRoomID], msg)
	f.sent = append(f.sent, msg)
	return &msg, nil
}

func (f *fakeRepo) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	f.mu.Lock()
	f.profileLookup++
	delay := f.profileDelay[userID]
	err := f.profileErr[userID]
	profile, ok := f.profiles[userID]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	p := *profile
	return &p, nil
}

func (f *fakeRepo) UpsertProfile(ctx context.Context, in *domain.Profile) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := *in
	f.profiles[in.UserID] = &p
	return &p, nil
}

func (f *fakeRepo) GetParticipant(ctx context.Context, roomID, userID uuid.UUID) (*domain.ChatParticipant, error) {
	f.mu.Lock()
	var found *domain.ChatParticipant
	for _, p := range f.participants {
		if p.ChatRoomID == roomID && p.UserID == userID {
			p := p
			found = &p
		}
	}
	b := f.participantBarrier
	f.mu.Unlock()

	if b != nil {
		b.wait()
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

func (f *fakeRepo) NewParticipant(ctx context.Context, in *domain.ChatParticipant) (*domain.ChatParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.participantInserts = append(f.participantInserts, in.ChatRoomID)
	if f.participantErr != nil {
		return nil, f.participantErr
	}
	for _, p := range f.participants {
		if p.ChatRoomID == in.ChatRoomID && p.UserID == in.UserID {
			return nil, domain.ErrAlreadyExists.WithMessage(`duplicate key value violates unique constraint "chat_participants_chat_room_id_user_id_key"`)
		}
	}

	p := *in
	p.ID = uuid.New()
	p.JoinedAt = time.Now()
	f.participants = append(f.participants, p)
	return &p, nil
}

func (f *fakeRepo) NewMessageRequest(ctx context.Context, in *domain.MessageRequest) (*domain.MessageRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.requestErr != nil {
		return nil, f.requestErr
	}
	req := *in
	req.ID = uuid.New()
	req.Status = domain.StatusPending
	req.CreatedAt = time.Now()
	f.requests = append(f.requests, req)
	return &req, nil
}

func (f *fakeRepo) GetMessageRequests(ctx context.Context, userID uuid.UUID, email string) ([]domain.MessageRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.MessageRequest
	for _, r := range f.requests {
		if r.FromUserID == userID || r.ToUserEmail == email {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) calls(roomID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messageCalls[roomID]
}

// barrier releases its waiters once n of them have arrived.
type barrier struct {
	mu sync.Mutex
	n  int
	ch chan struct{}
}

func newBarrier(n int) *barrier {
	return &barrier{n: n, ch: make(chan struct{})}
}

func (b *barrier) wait() {
	b.mu.Lock()
	b.n--
	if b.n == 0 {
		close(b.ch)
	}
	b.mu.Unlock()

	select {
	case <-b.ch:
	case <-time.After(2 * time.Second):
	}
}

// fakeFeed delivers events synchronously to every open subscription on the
// event's table. Room filters are recorded but deliberately not applied, so
// the service's own room guard is what gets tested.
type fakeFeed struct {
	mu     sync.Mutex
	subs   map[int]*fakeSub
	nextID int
	opened int
	err    error
}

type fakeSub struct {
	feed    *fakeFeed
	id      int
	filter  domain.ChangeFilter
	handler func(domain.ChangeEvent)
	once    sync.Once
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{subs: make(map[int]*fakeSub)}
}

func (f *fakeFeed) Subscribe(ctx context.Context, filter domain.ChangeFilter, handler func(domain.ChangeEvent)) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	f.opened++
	sub := &fakeSub{feed: f, id: f.nextID, filter: filter, handler: handler}
	f.subs[sub.id] = sub
	return sub, nil
}

func (s *fakeSub) Close() error {
	closed := false
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s.id)
		s.feed.mu.Unlock()
		closed = true
	})
	if !closed {
		return errors.New("subscription already closed")
	}
	return nil
}

func (f *fakeFeed) deliver(ev domain.ChangeEvent) {
	f.mu.Lock()
	var targets []*fakeSub
	for _, s := range f.subs {
		if s.filter.Table == ev.Table {
			targets = append(targets, s)
		}
	}
	f.mu.Unlock()

	for _, s := range targets {
		s.handler(ev)
	}
}

func (f *fakeFeed) active() []domain.ChangeFilter {
	f.mu.Lock()
	defer f.mu.Unlock()

	var filters []domain.ChangeFilter
	for _, s := range f.subs {
		filters = append(filters, s.filter)
	}
	return filters
}

type fakeSession struct {
	user *domain.User
	err  error
}

func (f *fakeSession) CurrentUser(ctx context.Context) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u := *f.user
	return &u, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	list []domain.Notification
}

func (r *recordingNotifier) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, n)
}

func (r *recordingNotifier) all() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.list)
}
