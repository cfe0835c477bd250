package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/Surf-N-Code/padel-booking/internal/config"
	"github.com/Surf-N-Code/padel-booking/internal/storage"

	"github.com/redis/go-redis/v9"
)

const (
	scheduleKey = "games:by:date"
	venuesKey   = "padel:venues"
)

func gameKey(id string) string {
	return "game:" + id
}

func playersKey(id string) string {
	return "game:" + id + ":players"
}

// Storage is the Redis backed game store. It is created once per process and
// shared by all request handlers.
type Storage struct {
	Client *redis.Client
}

func New(ctx context.Context, cfg config.Redis) (*Storage, error) {
	const op = "storage.redis.New"

	opts := &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{Client: client}, nil
}

func NewWithClient(client *redis.Client) *Storage {
	return &Storage{Client: client}
}

func (s *Storage) Close() error {
	return s.Client.Close()
}

// unavailable marks err as a store failure while keeping the original error
// in the chain.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
}

func isNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
