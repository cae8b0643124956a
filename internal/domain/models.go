package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChatRoom struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	Type        RoomType   `json:"type" db:"type"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	IsActive    bool       `json:"is_active" db:"is_active"`
}

type ChatParticipant struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ChatRoomID uuid.UUID `json:"chat_room_id" db:"chat_room_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	IsAdmin    bool      `json:"is_admin" db:"is_admin"`
	JoinedAt   time.Time `json:"joined_at" db:"joined_at"`
}

type Message struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ChatRoomID  uuid.UUID `json:"chat_room_id" db:"chat_room_id"`
	SenderID    uuid.UUID `json:"sender_id" db:"sender_id"`
	Content     string    `json:"content" db:"content"`
	MessageType string    `json:"message_type" db:"message_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	IsEdited    bool      `json:"is_edited" db:"is_edited"`

	// Resolved from profiles at read time, never stored with the message.
	Sender *Sender `json:"sender,omitempty" db:"-"`
}

type Sender struct {
	Email     *string `json:"email,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type MessageRequest struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	FromUserID  uuid.UUID     `json:"from_user_id" db:"from_user_id"`
	ToUserEmail string        `json:"to_user_email" db:"to_user_email"`
	ToUserID    *uuid.UUID    `json:"to_user_id,omitempty" db:"to_user_id"`
	Status      RequestStatus `json:"status" db:"status"`
	Message     *string       `json:"message,omitempty" db:"message"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Email     *string   `json:"email,omitempty" db:"email"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// User is the authenticated account behind the current session.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type Notification struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Variant     NotificationVariant `json:"variant"`
}

type (
	RoomType string

	RequestStatus string

	NotificationVariant string
)

const (
	MainRoom   RoomType = "main"
	GroupRoom  RoomType = "group"
	DirectRoom RoomType = "direct"

	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"

	VariantDefault     NotificationVariant = "default"
	VariantDestructive NotificationVariant = "destructive"

	TextMessageType = "text"
)
