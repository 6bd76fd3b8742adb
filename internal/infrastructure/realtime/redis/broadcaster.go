// Package redis implements the real-time notification broadcaster on Redis
// pub/sub. Each profile has its own channel, keyed by username; connected
// clients subscribe to their channel and receive notifications as they are
// created.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/koreline/koreline-hub/internal/domain/notification"
	"github.com/koreline/koreline-hub/pkg/circuitbreaker"
	"github.com/koreline/koreline-hub/pkg/logger"
)

// Config holds Redis connection configuration.
type Config struct {
	// Addr is the Redis address (host:port).
	Addr string

	// Password is the Redis password (empty for none).
	Password string

	// DB is the Redis database number.
	DB int

	// ChannelPrefix is prepended to usernames to form channel names.
	ChannelPrefix string

	// DialTimeout is the timeout for establishing a connection.
	DialTimeout time.Duration

	// WriteTimeout is the timeout for publish commands.
	WriteTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:          "localhost:6379",
		ChannelPrefix: "user:",
		DialTimeout:   5 * time.Second,
		WriteTimeout:  3 * time.Second,
	}
}

// Broadcaster implements notification.Broadcaster over Redis pub/sub.
// Publishing is fire-and-forget from the caller's point of view: a failure
// is an error to log, never a reason to roll anything back.
type Broadcaster struct {
	client  *redis.Client
	prefix  string
	log     *logger.Logger
	breaker *circuitbreaker.CircuitBreaker
}

// NewBroadcaster connects to Redis and returns a broadcaster.
func NewBroadcaster(ctx context.Context, cfg Config, log *logger.Logger) (*Broadcaster, error) {
	if log == nil {
		log = logger.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: failed to ping: %w", err)
	}

	prefix := cfg.ChannelPrefix
	if prefix == "" {
		prefix = "user:"
	}

	bLog := log.With(logger.Component("redis.broadcaster"))

	// When Redis goes down the breaker trips after a few failed publishes,
	// so commands stop paying the write timeout on every notification.
	breaker := circuitbreaker.BroadcastBreaker(func(name string, from, to circuitbreaker.State) {
		bLog.Warn("circuit breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})

	return &Broadcaster{
		client:  client,
		prefix:  prefix,
		log:     bLog,
		breaker: breaker,
	}, nil
}

// payload is the wire format pushed to subscribers.
type payload struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Data      string `json:"data,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Publish implements notification.Broadcaster.
func (b *Broadcaster) Publish(ctx context.Context, username string, n *notification.Notification) error {
	body, err := json.Marshal(payload{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Text:      n.Text,
		Data:      n.Data,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("redis: marshal notification: %w", err)
	}

	channel := b.prefix + username
	err = b.breaker.Execute(ctx, func(ctx context.Context) error {
		return b.client.Publish(ctx, channel, body).Err()
	})
	if err != nil {
		return fmt.Errorf("redis: publish to %s: %w", channel, err)
	}

	b.log.Debug("notification broadcast",
		logger.Username(username),
		logger.String("type", string(n.Type)),
	)
	return nil
}

// Close closes the underlying client.
func (b *Broadcaster) Close() error {
	return b.client.Close()
}
