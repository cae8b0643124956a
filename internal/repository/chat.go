package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

const (
	chatRoomColumns = `id, name, description, type, created_by, created_at, updated_at, is_active`

	messageColumns = `id, chat_room_id, sender_id, content, message_type, created_at, updated_at, is_edited`

	participantColumns = `id, chat_room_id, user_id, is_admin, joined_at`

	messageRequestColumns = `id, from_user_id, to_user_email, to_user_id, status, message, created_at, updated_at`

	profileColumns = `id, user_id, email, avatar_url, created_at, updated_at`
)

type ChatRepo struct {
	db      *sqlx.DB
	changes *ChangeRepo
}

func NewChatRepo(db *sqlx.DB, cache *redis.Client) *ChatRepo {
	return &ChatRepo{
		db:      db,
		changes: NewChangeRepo(cache),
	}
}

func (cr *ChatRepo) GetActiveRooms(ctx context.Context) ([]domain.ChatRoom, error) {
	query := `
		SELECT ` + chatRoomColumns + `
		FROM chat_rooms
		WHERE is_active = TRUE
		ORDER BY updated_at DESC, id;
	`

	var rooms []domain.ChatRoom
	if err := cr.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, translateError(err)
	}
	return rooms, nil
}

func (cr *ChatRepo) GetRoomMessages(ctx context.Context, roomID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE chat_room_id = $1
		ORDER BY created_at ASC, id ASC;
	`

	var messages []domain.Message
	if err := cr.db.SelectContext(ctx, &messages, query, roomID); err != nil {
		return nil, translateError(err)
	}
	return messages, nil
}

func (cr *ChatRepo) NewMessage(ctx context.Context, in *domain.Message) (*domain.Message, error) {
	messageType := in.MessageType
	if messageType == "" {
		messageType = domain.TextMessageType
	}

	query := `
		INSERT INTO messages (chat_room_id, sender_id, content, message_type)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + messageColumns + `;
	`

	var msg domain.Message
	err := cr.db.QueryRowxContext(ctx, query, in.ChatRoomID, in.SenderID, in.Content, messageType).StructScan(&msg)
	if err != nil {
		return nil, translateError(err)
	}

	cr.publish(ctx, domain.MessagesTable, domain.ChangeInsert, &msg)
	// The insert trigger bumped the room's updated_at.
	cr.publish(ctx, domain.ChatRoomsTable, domain.ChangeUpdate, map[string]any{
		"id":         msg.ChatRoomID,
		"updated_at": msg.CreatedAt,
	})
	return &msg, nil
}

func (cr *ChatRepo) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE user_id = $1;
	`

	var profile domain.Profile
	if err := cr.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}

func (cr *ChatRepo) UpsertProfile(ctx context.Context, in *domain.Profile) (*domain.Profile, error) {
	query := `
		INSERT INTO profiles (user_id, email, avatar_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET email = EXCLUDED.email,
			avatar_url = COALESCE(EXCLUDED.avatar_url, profiles.avatar_url),
			updated_at = NOW()
		RETURNING ` + profileColumns + `;
	`

	var profile domain.Profile
	err := cr.db.QueryRowxContext(ctx, query, in.UserID, in.Email, in.AvatarURL).StructScan(&profile)
	if err != nil {
		return nil, translateError(err)
	}

	cr.publish(ctx, domain.ProfilesTable, domain.ChangeUpdate, &profile)
	return &profile, nil
}

func (cr *ChatRepo) GetParticipant(ctx context.Context, roomID, userID uuid.UUID) (*domain.ChatParticipant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM chat_participants
		WHERE chat_room_id = $1 AND user_id = $2;
	`

	var participant domain.ChatParticipant
	if err := cr.db.GetContext(ctx, &participant, query, roomID, userID); err != nil {
		return nil, translateError(err)
	}
	return &participant, nil
}

func (cr *ChatRepo) NewParticipant(ctx context.Context, in *domain.ChatParticipant) (*domain.ChatParticipant, error) {
	query := `
		INSERT INTO chat_participants (chat_room_id, user_id, is_admin)
		VALUES ($1, $2, $3)
		RETURNING ` + participantColumns + `;
	`

	var participant domain.ChatParticipant
	err := cr.db.QueryRowxContext(ctx, query, in.ChatRoomID, in.UserID, in.IsAdmin).StructScan(&participant)
	if err != nil {
		return nil, translateError(err)
	}

	cr.publish(ctx, domain.ChatParticipantsTable, domain.ChangeInsert, &participant)
	return &participant, nil
}

func (cr *ChatRepo) NewMessageRequest(ctx context.Context, in *domain.MessageRequest) (*domain.MessageRequest, error) {
	query := `
		INSERT INTO message_requests (from_user_id, to_user_email, message)
		VALUES ($1, $2, $3)
		RETURNING ` + messageRequestColumns + `;
	`

	var req domain.MessageRequest
	err := cr.db.QueryRowxContext(ctx, query, in.FromUserID, in.ToUserEmail, in.Message).StructScan(&req)
	if err != nil {
		return nil, translateError(err)
	}

	cr.publish(ctx, domain.MessageRequestsTable, domain.ChangeInsert, &req)
	return &req, nil
}

func (cr *ChatRepo) GetMessageRequests(ctx context.Context, userID uuid.UUID, email string) ([]domain.MessageRequest, error) {
	query := `
		SELECT ` + messageRequestColumns + `
		FROM message_requests
		WHERE from_user_id = $1 OR to_user_id = $1 OR to_user_email = $2
		ORDER BY created_at DESC, id;
	`

	var requests []domain.MessageRequest
	if err := cr.db.SelectContext(ctx, &requests, query, userID, email); err != nil {
		return nil, translateError(err)
	}
	return requests, nil
}

// Changes exposes the feed the repository publishes its writes to.
func (cr *ChatRepo) Changes() *ChangeRepo {
	return cr.changes
}

// publish is best-effort: the row is already committed, so a lost event only
// delays other clients until their next reload.
func (cr *ChatRepo) publish(ctx context.Context, table domain.Table, changeType domain.ChangeType, record any) {
	ev, err := newChangeEvent(table, changeType, record)
	if err != nil {
		slog.Error("Failed to build change event", "table", table, "error", err)
		return
	}
	if err := cr.changes.Publish(ctx, ev); err != nil {
		slog.Warn("Failed to publish change event", "table", table, "type", changeType, "error", err)
	}
}

func newChangeEvent(table domain.Table, changeType domain.ChangeType, record any) (*domain.ChangeEvent, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return &domain.ChangeEvent{
		Table:           table,
		Type:            changeType,
		Record:          data,
		CommitTimestamp: time.Now().UTC(),
	}, nil
}
