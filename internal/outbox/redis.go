package outbox

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/rxdrill/internal/logger"
)

// RedisTransport appends events to a Redis stream with XADD.
type RedisTransport struct {
	log    *logger.Logger
	rdb    *goredis.Client
	stream string
}

// NewRedisTransport connects to addr and verifies the connection.
func NewRedisTransport(addr, stream string, log *logger.Logger) (*RedisTransport, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if stream == "" {
		stream = "rxdrill:rewards"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisTransport{
		log:    logger.OrNop(log).With("transport", "redis"),
		rdb:    rdb,
		stream: stream,
	}, nil
}

func (t *RedisTransport) Deliver(ctx context.Context, ev Event) error {
	err := t.rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: t.stream,
		Values: streamValues(ev),
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", t.stream, err)
	}
	return nil
}

func (t *RedisTransport) Close() error {
	return t.rdb.Close()
}

func streamValues(ev Event) map[string]any {
	return map[string]any{
		"event_id":   ev.EventID,
		"learner_id": ev.LearnerID,
		"amount":     ev.Amount,
		"source":     ev.Source,
		"created_at": ev.CreatedAt.Format(time.RFC3339Nano),
	}
}
