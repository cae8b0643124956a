package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/ReilBleem13/ChatRooms/internal/service"
	"github.com/redis/go-redis/v9"
)

func changeChannel(table domain.Table) string {
	return fmt.Sprintf("changes:%s", table)
}

// ChangeRepo is the change feed. Writers publish a ChangeEvent per row change
// on a per-table Redis channel; subscribers filter events client-side.
type ChangeRepo struct {
	redis *redis.Client

	mu     sync.Mutex
	subs   map[int]*changeSubscription
	nextID int
}

func NewChangeRepo(redis *redis.Client) *ChangeRepo {
	return &ChangeRepo{
		redis: redis,
		subs:  make(map[int]*changeSubscription),
	}
}

func (cr *ChangeRepo) Publish(ctx context.Context, ev *domain.ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	return cr.redis.Publish(ctx, changeChannel(ev.Table), data).Err()
}

// Subscribe returns once Redis has confirmed the subscription, so every event
// published afterwards is delivered. The handler runs on the subscription's
// own goroutine, one event at a time. Cancelling ctx closes the subscription.
func (cr *ChangeRepo) Subscribe(ctx context.Context, filter domain.ChangeFilter, handler func(domain.ChangeEvent)) (service.Subscription, error) {
	pubSub := cr.redis.Subscribe(ctx, changeChannel(filter.Table))
	if _, err := pubSub.Receive(ctx); err != nil {
		pubSub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", filter.Table, err)
	}

	cr.mu.Lock()
	cr.nextID++
	sub := &changeSubscription{
		id:      cr.nextID,
		repo:    cr,
		pubSub:  pubSub,
		filter:  filter,
		handler: handler,
		done:    make(chan struct{}),
	}
	cr.subs[sub.id] = sub
	cr.mu.Unlock()

	go sub.run(pubSub.Channel())
	sub.closeOnDone(ctx)

	slog.Debug("Change feed subscribed", "table", filter.Table, "type", filter.Type, "room_id", filter.RoomID)
	return sub, nil
}

// Active reports the number of open subscriptions.
func (cr *ChangeRepo) Active() int {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return len(cr.subs)
}

// Close releases every open subscription.
func (cr *ChangeRepo) Close() error {
	cr.mu.Lock()
	subs := make([]*changeSubscription, 0, len(cr.subs))
	for _, sub := range cr.subs {
		subs = append(subs, sub)
	}
	cr.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	return nil
}

type changeSubscription struct {
	id      int
	repo    *ChangeRepo
	pubSub  *redis.PubSub
	filter  domain.ChangeFilter
	handler func(domain.ChangeEvent)

	mu     sync.Mutex
	stop   func() bool
	closed bool

	once sync.Once
	err  error
	done chan struct{}
}

// closeOnDone closes the subscription once ctx ends. An earlier Close
// deregisters the callback.
func (s *changeSubscription) closeOnDone(ctx context.Context) {
	stop := context.AfterFunc(ctx, func() { s.Close() })

	s.mu.Lock()
	closed := s.closed
	if !closed {
		s.stop = stop
	}
	s.mu.Unlock()

	if closed {
		stop()
	}
}

func (s *changeSubscription) run(ch <-chan *redis.Message) {
	defer close(s.done)

	for msg := range ch {
		var ev domain.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			slog.Error("Failed to unmarshal change event", "channel", msg.Channel, "error", err)
			continue
		}
		if !s.filter.Match(&ev) {
			continue
		}
		s.handler(ev)
	}
}

// Close unsubscribes and waits until the handler is no longer running.
func (s *changeSubscription) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		stop := s.stop
		s.stop = nil
		s.mu.Unlock()
		if stop != nil {
			stop()
		}

		s.repo.mu.Lock()
		delete(s.repo.subs, s.id)
		s.repo.mu.Unlock()

		s.err = s.pubSub.Close()
		<-s.done
		slog.Debug("Change feed unsubscribed", "table", s.filter.Table, "room_id", s.filter.RoomID)
	})
	return s.err
}
