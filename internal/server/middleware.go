package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/ReilBleem13/ChatRooms/internal/service"
	"github.com/ReilBleem13/ChatRooms/internal/utils"
)

type contextKey string

const UserKey contextKey = "user"

// AuthMiddleware accepts a bearer token, or an access_token query parameter
// for browser WebSocket clients that cannot set headers. The token must belong
// to the session user: the bridge serves a single account.
func AuthMiddleware(sess service.SessionIn, secret string) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.URL.Query().Get("access_token")
			if tokenString == "" {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					writeError(w, domain.ErrUnauthorized)
					return
				}

				var err error
				tokenString, err = utils.ExtractToken(authHeader)
				if err != nil {
					handleError(w, err)
					return
				}
			}

			claims, err := utils.ValidateAccessToken(tokenString, secret)
			if err != nil {
				handleError(w, err)
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				handleError(w, err)
				return
			}

			user, err := sess.CurrentUser(r.Context())
			if err != nil {
				handleError(w, err)
				return
			}
			if user.ID != userID {
				writeError(w, domain.ErrForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserFromContext(ctx context.Context) (*domain.User, error) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}
