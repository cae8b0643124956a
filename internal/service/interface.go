package service

import (
	"context"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/google/uuid"
)

type ChatRepoIn interface {
	GetActiveRooms(ctx context.Context) ([]domain.ChatRoom, error)
	GetRoomMessages(ctx context.Context, roomID uuid.UUID) ([]domain.Message, error)
	NewMessage(ctx context.Context, in *domain.Message) (*domain.Message, error)

	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, in *domain.Profile) (*domain.Profile, error)

	GetParticipant(ctx context.Context, roomID, userID uuid.UUID) (*domain.ChatParticipant, error)
	NewParticipant(ctx context.Context, in *domain.ChatParticipant) (*domain.ChatParticipant, error)

	NewMessageRequest(ctx context.Context, in *domain.MessageRequest) (*domain.MessageRequest, error)
	GetMessageRequests(ctx context.Context, userID uuid.UUID, email string) ([]domain.MessageRequest, error)
}

type SessionIn interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// Subscription is a live change-feed registration. Close unsubscribes and
// returns once no further events will be delivered.
type Subscription interface {
	Close() error
}

type ChangeFeedIn interface {
	Subscribe(ctx context.Context, filter domain.ChangeFilter, handler func(domain.ChangeEvent)) (Subscription, error)
}

type Notifier interface {
	Notify(n domain.Notification)
}

type ChatServiceIn interface {
	Init(ctx context.Context) error
	Teardown()

	LoadRooms(ctx context.Context)
	LoadMessages(ctx context.Context, roomID uuid.UUID)
	LoadMessageRequests(ctx context.Context)
	SelectRoom(ctx context.Context, roomID uuid.UUID)

	SendMessage(ctx context.Context, content string, roomID uuid.UUID)
	JoinMainRoom(ctx context.Context)
	CreateMessageRequest(ctx context.Context, toEmail, message string)

	Snapshot() State
	Changes() <-chan struct{}
}
