package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second

	readBlock = 5 * time.Second
	readCount = 10
)

// RedisStreamQueue publishes to and consumes from a single Redis stream.
type RedisStreamQueue struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewRedisStreamQueue connects to addr and validates the connection with PING.
func NewRedisStreamQueue(addr, password, stream string, logger *zap.Logger) (*RedisStreamQueue, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis: addr is empty")
	}
	if stream == "" {
		return nil, errors.New("redis: stream is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return &RedisStreamQueue{client: client, stream: stream, logger: logger}, nil
}

func (q *RedisStreamQueue) Publish(ctx context.Context, topic string, body []byte) error {
	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{
			"topic": topic,
			"body":  body,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", q.stream, err)
	}
	q.logger.Debug("published", zap.String("stream", q.stream), zap.String("topic", topic), zap.String("id", id))
	return nil
}

// Subscribe reads the stream as consumer name of group until ctx is done.
// The group is created at the stream tail if it does not exist.
func (q *RedisStreamQueue) Subscribe(ctx context.Context, group, name string, handler Handler) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s: %w", group, err)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: name,
			Streams:  []string{q.stream, ">"},
			Count:    readCount,
			Block:    readBlock,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("xreadgroup %s: %w", q.stream, err)
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				topic, _ := msg.Values["topic"].(string)
				body, _ := msg.Values["body"].(string)
				if err := handler(topic, []byte(body), msg.ID); err != nil {
					q.logger.Warn("handler failed", zap.String("id", msg.ID), zap.Error(err))
					continue
				}
				if err := q.client.XAck(ctx, q.stream, group, msg.ID).Err(); err != nil {
					q.logger.Warn("ack failed", zap.String("id", msg.ID), zap.Error(err))
				}
			}
		}
	}
}

func (q *RedisStreamQueue) Close() error {
	return q.client.Close()
}
