package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ReilBleem13/ChatRooms/internal/service"
)

const shutdownTimeout = 10 * time.Second

type Option func(*Server)

func WithStaticDir(dir string) Option {
	return func(s *Server) {
		s.staticDir = dir
	}
}

func WithIntentsPerMinute(n int) Option {
	return func(s *Server) {
		s.intentsPerMin = n
	}
}

type Server struct {
	router        *http.ServeMux
	staticDir     string
	intentsPerMin int
}

func NewServer(core service.ChatServiceIn, hub *Hub, sess service.SessionIn, secret string, opts ...Option) *Server {
	s := &Server{
		router:        http.NewServeMux(),
		intentsPerMin: 120,
	}

	for _, opt := range opts {
		opt(s)
	}

	h := NewHandler(core, hub, s.intentsPerMin)
	s.setupRoutes(h, AuthMiddleware(sess, secret))

	return s
}

func (s *Server) setupRoutes(h *Handler, auth func(http.Handler) http.Handler) {
	s.router.Handle("/ws", auth(http.HandlerFunc(h.handleWS)))
	s.router.Handle("GET /state", auth(http.HandlerFunc(h.handleState)))

	if s.staticDir != "" {
		fileServer := http.FileServer(http.Dir(s.staticDir))
		s.router.Handle("/", http.StripPrefix("/", fileServer))
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	slog.Info("Server is running", "addr", addr)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("Failed to start server", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("Server exited")
	return server.Shutdown(shutdownCtx)
}
