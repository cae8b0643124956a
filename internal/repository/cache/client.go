package cache

import (
	"context"

	"github.com/ReilBleem13/ChatRooms/internal/config"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

func NewRedisClient(ctx context.Context, cfg config.Redis) error {
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return client.Ping(ctx).Err()
}

func Client() *redis.Client {
	return client
}
