package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mtlprog/stopwork/internal/domain"
)

// latestSuffix names the key holding the most recent snapshot.
const latestSuffix = ":latest"

// NewRedisClient connects to Redis and pings it. On failure the client is
// closed and the error returned.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client for graceful degradation
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// RedisPublisher publishes snapshots on a channel and keeps the latest one
// under <channel>:latest, so a dispatcher that (re)connects can read it
// without waiting for the next change.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher creates a publisher. A nil client makes Publish a no-op.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// ConnectRedisPublisher connects to addr and returns a publisher on channel.
// When Redis is unreachable it logs a warning and returns a publisher with a
// nil client, so the websocket feed keeps working without Redis.
func ConnectRedisPublisher(ctx context.Context, addr, password, channel string) *RedisPublisher {
	client, err := NewRedisClient(ctx, addr, password)
	if err != nil {
		slog.Warn("redis unavailable, blocked set will not be published to redis",
			"addr", addr,
			"error", err,
		)
		return NewRedisPublisher(nil, channel)
	}
	slog.Info("connected to redis", "addr", addr, "channel", channel)
	return NewRedisPublisher(client, channel)
}

// Enabled reports whether the publisher has a live client.
func (p *RedisPublisher) Enabled() bool {
	return p.client != nil
}

// Close closes the client, if any.
func (p *RedisPublisher) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, view *domain.BlockedResourceView) error {
	if p.client == nil {
		return nil
	}

	data, err := Encode(view)
	if err != nil {
		return err
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, p.channel+latestSuffix, data, 0)
	pipe.Publish(ctx, p.channel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish blocked set revision %d: %w", view.Revision, err)
	}
	return nil
}
