package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ReilBleem13/ChatRooms/internal/config"
	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/ReilBleem13/ChatRooms/internal/repository"
	"github.com/ReilBleem13/ChatRooms/internal/repository/cache"
	"github.com/ReilBleem13/ChatRooms/internal/repository/database"
	"github.com/ReilBleem13/ChatRooms/internal/server"
	"github.com/ReilBleem13/ChatRooms/internal/service"
	"github.com/ReilBleem13/ChatRooms/internal/session"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("failed to load .env file: ", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cache.NewRedisClient(ctx, cfg.Redis); err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Redis inited")

	if err := database.NewPostgresClient(cfg.Database.DSN()); err != nil {
		slog.Error("Failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	slog.Info("Database inited")

	if *down {
		if err := database.MigrateDown(database.Client()); err != nil {
			slog.Error("Failed to migrate down", "error", err)
			os.Exit(1)
		}
		slog.Info("Migrations rolled back")
		return
	}

	if err := database.MigrateUp(database.Client()); err != nil {
		slog.Error("Failed to migrate up", "error", err)
		os.Exit(1)
	}
	slog.Info("Migrations completed")

	sess := session.New(cfg.Session.AccessToken, cfg.Session.Secret)
	chatRepo := repository.NewChatRepo(database.Client(), cache.Client())
	feed := chatRepo.Changes()
	hub := server.NewHub()

	if err := ensureProfile(ctx, sess, chatRepo); err != nil {
		slog.Error("Failed to prepare profile", "error", err)
		os.Exit(1)
	}

	core := service.NewChatService(chatRepo, feed, sess, hub,
		service.WithProfileConcurrency(cfg.Sync.ProfileConcurrency),
		service.WithRequestTimeout(cfg.Sync.RequestTimeout),
	)

	go hub.Run(ctx, core)

	if err := core.Init(ctx); err != nil {
		slog.Error("Failed to start chat service", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(core, hub, sess, sess.Secret(),
		server.WithStaticDir(cfg.App.StaticDir),
		server.WithIntentsPerMinute(cfg.App.IntentsPerMin),
	)
	if err := srv.Run(ctx, cfg.App.Addr); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	core.Teardown()
	if err := feed.Close(); err != nil {
		slog.Warn("Failed to close change feed", "error", err)
	}
	if err := database.Client().Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
	if err := cache.Client().Close(); err != nil {
		slog.Warn("Failed to close redis", "error", err)
	}
}

// ensureProfile stores the session user's profile so other clients can
// resolve the user as a message sender.
func ensureProfile(ctx context.Context, sess *session.Session, repo *repository.ChatRepo) error {
	user, err := sess.CurrentUser(ctx)
	if err != nil {
		return err
	}

	profile, err := repo.UpsertProfile(ctx, &domain.Profile{
		UserID: user.ID,
		Email:  &user.Email,
	})
	if err != nil {
		return err
	}

	slog.Info("Profile ready", "user_id", profile.UserID)
	return nil
}

func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
