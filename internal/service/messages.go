package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// LoadMessages reloads the whole thread of roomID. The result is applied only
// if roomID is still the active room and no newer load was applied meanwhile.
func (cs *ChatService) LoadMessages(ctx context.Context, roomID uuid.UUID) {
	cs.mu.Lock()
	if cs.activeRoom == nil || cs.activeRoom.ID != roomID {
		cs.mu.Unlock()
		slog.Debug("Skip loading messages for inactive room", "room_id", roomID)
		return
	}
	cs.messagesSeq++
	seq := cs.messagesSeq
	roomCtx := cs.roomCtx
	cs.mu.Unlock()

	// Leaving the room cancels this load.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(roomCtx, cancel)
	defer stop()

	messages, err := cs.fetchMessages(ctx, roomID)
	if err != nil {
		if isCanceled(ctx, err) {
			slog.Debug("Messages load canceled", "room_id", roomID)
			return
		}
		cs.notifyError("Error fetching messages", err)
		return
	}

	cs.mu.Lock()
	if cs.activeRoom == nil || cs.activeRoom.ID != roomID || seq <= cs.messagesApplied {
		cs.mu.Unlock()
		slog.Debug("Discard stale messages", "room_id", roomID, "seq", seq)
		return
	}
	cs.messagesApplied = seq
	cs.roomLoaded = true
	cs.messages = messages
	cs.mu.Unlock()

	cs.emitChange()
}

func (cs *ChatService) fetchMessages(ctx context.Context, roomID uuid.UUID) ([]domain.Message, error) {
	reqCtx, cancel := cs.withTimeout(ctx)
	defer cancel()

	messages, err := cs.chatRepo.GetRoomMessages(reqCtx, roomID)
	if err != nil {
		return nil, err
	}

	senders, err := cs.resolveSenders(ctx, messages)
	if err != nil {
		return nil, err
	}

	for i := range messages {
		messages[i].Sender = senders[messages[i].SenderID]
	}
	sortMessages(messages)
	return messages, nil
}

// resolveSenders looks up each distinct sender profile separately. A sender
// without a readable profile maps to nil instead of failing the batch.
func (cs *ChatService) resolveSenders(ctx context.Context, messages []domain.Message) (map[uuid.UUID]*domain.Sender, error) {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, m := range messages {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			ids = append(ids, m.SenderID)
		}
	}

	resolved := make([]*domain.Sender, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cs.profileConcurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			reqCtx, cancel := cs.withTimeout(gctx)
			defer cancel()

			profile, err := cs.chatRepo.GetProfileByUserID(reqCtx, id)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				if !errors.Is(err, domain.ErrNotFound) {
					slog.Warn("Failed to resolve sender profile", "sender_id", id, "error", err)
				}
				return nil
			}

			resolved[i] = &domain.Sender{
				Email:     profile.Email,
				AvatarURL: profile.AvatarURL,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	senders := make(map[uuid.UUID]*domain.Sender, len(ids))
	for i, id := range ids {
		senders[id] = resolved[i]
	}
	return senders, nil
}

// SendMessage inserts a message into roomID. Nothing is appended locally: the
// message shows up once the insert event triggers a reload.
func (cs *ChatService) SendMessage(ctx context.Context, content string, roomID uuid.UUID) {
	if strings.TrimSpace(content) == "" {
		return
	}

	user, err := cs.session.CurrentUser(ctx)
	if err != nil {
		cs.notifyError("Error sending message", err)
		return
	}

	reqCtx, cancel := cs.withTimeout(ctx)
	defer cancel()

	msg, err := cs.chatRepo.NewMessage(reqCtx, &domain.Message{
		ChatRoomID:  roomID,
		SenderID:    user.ID,
		Content:     content,
		MessageType: domain.TextMessageType,
	})
	if err != nil {
		cs.notifyError("Error sending message", err)
		return
	}

	slog.Debug("Message sent", "message_id", msg.ID, "room_id", roomID)
}
