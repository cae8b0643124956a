// Package view renders the chat state into plain view models and turns user
// input into intents. Views keep only draft input; everything else is read
// from the state snapshot they are given.
package view

import (
	"context"
	"strings"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/google/uuid"
)

type Intents interface {
	SelectRoom(ctx context.Context, roomID uuid.UUID)
	SendMessage(ctx context.Context, content string, roomID uuid.UUID)
	CreateMessageRequest(ctx context.Context, toEmail, message string)
}

const (
	IconHash    = "hash"
	IconUsers   = "users"
	IconMessage = "message-circle"
)

func roomIcon(t domain.RoomType) string {
	switch t {
	case domain.GroupRoom:
		return IconUsers
	case domain.DirectRoom:
		return IconMessage
	default:
		return IconHash
	}
}

func initial(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "U"
	}
	return strings.ToUpper(email[:1])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
