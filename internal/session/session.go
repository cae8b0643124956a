// Package session resolves the authenticated user from the configured access token.
package session

import (
	"context"
	"fmt"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/ReilBleem13/ChatRooms/internal/utils"
)

type Session struct {
	accessToken string
	secret      string
}

func New(accessToken, secret string) *Session {
	return &Session{
		accessToken: accessToken,
		secret:      secret,
	}
}

// CurrentUser validates the token on every call so an expired session stops
// authorizing writes instead of using a stale identity.
func (s *Session) CurrentUser(ctx context.Context) (*domain.User, error) {
	if s.accessToken == "" {
		return nil, domain.ErrUnauthorized
	}

	claims, err := utils.ValidateAccessToken(s.accessToken, s.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	return &domain.User{
		ID:    userID,
		Email: utils.NormalizeEmail(claims.Email),
	}, nil
}

// Secret is the key used to verify bearer tokens presented to the local bridge.
func (s *Session) Secret() string {
	return s.secret
}
