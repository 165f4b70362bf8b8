package stats

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/lotus-events/pkg/engine"
	"github.com/jwebster45206/lotus-events/pkg/event"
)

const (
	eventsKey  = "lotus:stats:events"
	choicesKey = "lotus:stats:choices"
)

// RedisRecorder keeps counters in two Redis hashes so several API instances
// share them.
type RedisRecorder struct {
	rdb    *redis.Client
	logger *slog.Logger
}

var _ Recorder = (*RedisRecorder)(nil)

// retryDelay is the pause between connection attempts at startup.
var retryDelay = 2 * time.Second

// NewRedisRecorder connects to redisURL, waiting until Redis answers or ctx
// is done.
func NewRedisRecorder(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisRecorder, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	r := &RedisRecorder{
		rdb:    redis.NewClient(opt),
		logger: logger,
	}
	if err := r.waitForConnection(ctx); err != nil {
		_ = r.rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis for stats", "addr", opt.Addr)
	return r, nil
}

func (r *RedisRecorder) waitForConnection(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		err := r.Ping(ctx)
		if err == nil {
			return nil
		}
		r.logger.Debug("Redis not ready yet", "error", err, "attempt", attempt)

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		case <-time.After(retryDelay):
		}
	}
}

func (r *RedisRecorder) RecordEvent(ctx context.Context, origin engine.Origin, domain event.Domain, tier int) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, f := range eventFields(origin, domain, tier) {
			pipe.HIncrBy(ctx, eventsKey, f, 1)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to record event stats", "origin", origin, "error", err)
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

func (r *RedisRecorder) RecordChoice(ctx context.Context, failed bool) error {
	if err := r.rdb.HIncrBy(ctx, choicesKey, choiceField(failed), 1).Err(); err != nil {
		r.logger.Error("Failed to record choice stats", "error", err)
		return fmt.Errorf("failed to record choice: %w", err)
	}
	return nil
}

func (r *RedisRecorder) Snapshot(ctx context.Context) (*Snapshot, error) {
	events, err := r.rdb.HGetAll(ctx, eventsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read event stats: %w", err)
	}
	choices, err := r.rdb.HGetAll(ctx, choicesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read choice stats: %w", err)
	}

	s := newSnapshot()
	for f, v := range events {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("stats field %s: %w", f, err)
		}
		if err := s.add(f, n); err != nil {
			r.logger.Warn("Skipping stats field", "field", f, "error", err)
		}
	}
	for f, v := range choices {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("stats field %s: %w", f, err)
		}
		s.Choices[f] = n
	}
	return s, nil
}

// Ping checks the connection for health reporting.
func (r *RedisRecorder) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisRecorder) Close() error {
	if err := r.rdb.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}
