package config

import (
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      App
	Database Database
	Redis    Redis
	Session  Session
	Sync     Sync
}

type App struct {
	Addr          string `env:"APP_ADDR" env-default:":8080"`
	StaticDir     string `env:"APP_STATIC_DIR" env-default:"./web"`
	LogLevel      string `env:"LOG_LEVEL" env-default:"info"`
	IntentsPerMin int    `env:"APP_INTENTS_PER_MIN" env-default:"120"`
}

type Session struct {
	AccessToken string `env:"SESSION_ACCESS_TOKEN" env-required:"true"`
	Secret      string `env:"JWT_SECRET" env-required:"true"`
}

type Sync struct {
	ProfileConcurrency int           `env:"SYNC_PROFILE_CONCURRENCY" env-default:"8"`
	RequestTimeout     time.Duration `env:"SYNC_REQUEST_TIMEOUT" env-default:"10s"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" env-required:"true"`
	Port     string `env:"REDIS_PORT" env-required:"true"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

func (r Redis) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

type Database struct {
	Host     string `env:"POSTGRES_HOST" env-required:"true"`
	Port     string `env:"POSTGRES_PORT" env-required:"true"`
	User     string `env:"POSTGRES_USER" env-required:"true"`
	DBName   string `env:"POSTGRES_DB" env-required:"true"`
	Password string `env:"POSTGRES_PASSWORD" env-required:"true"`
	SSLMode  string `env:"POSTGRES_SSLMODE" env-required:"true"`
}

func (d Database) DSN() string {
	return fmt.Sprintf(
		`host=%s port=%s user=%s password=%s dbname=%s sslmode=%s`,
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment variables: %w", err)
	}
	return cfg, nil
}
