package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/ReilBleem13/ChatRooms/internal/utils"
)

// CreateMessageRequest asks the owner of toEmail to start a direct
// conversation. The store assigns the pending status.
func (cs *ChatService) CreateMessageRequest(ctx context.Context, toEmail, message string) {
	email := utils.NormalizeEmail(toEmail)
	if email == "" {
		slog.Debug("Message request without recipient email")
		return
	}

	user, err := cs.session.CurrentUser(ctx)
	if err != nil {
		cs.notifyError("Error sending message request", err)
		return
	}

	in := &domain.MessageRequest{
		FromUserID:  user.ID,
		ToUserEmail: email,
	}
	if strings.TrimSpace(message) != "" {
		in.Message = &message
	}

	reqCtx, cancel := cs.withTimeout(ctx)
	defer cancel()

	created, err := cs.chatRepo.NewMessageRequest(reqCtx, in)
	if err != nil {
		cs.notifyError("Error sending message request", err)
		return
	}

	slog.Info("Message request sent", "request_id", created.ID, "to_user_email", email)
	cs.notifyInfo("Message request sent", fmt.Sprintf("Request sent to %s", email))

	cs.LoadMessageRequests(ctx)
}

// LoadMessageRequests replaces the request list with the requests sent by or
// addressed to the current user.
func (cs *ChatService) LoadMessageRequests(ctx context.Context) {
	user, err := cs.session.CurrentUser(ctx)
	if err != nil {
		cs.notifyError("Error fetching message requests", err)
		return
	}

	reqCtx, cancel := cs.withTimeout(ctx)
	defer cancel()

	requests, err := cs.chatRepo.GetMessageRequests(reqCtx, user.ID, user.Email)
	if err != nil {
		if isCanceled(ctx, err) {
			return
		}
		cs.notifyError("Error fetching message requests", err)
		return
	}

	cs.mu.Lock()
	cs.requests = requests
	cs.mu.Unlock()

	cs.emitChange()
}
