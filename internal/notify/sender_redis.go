package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStreamSender appends notifications to a capped Redis stream.
type RedisStreamSender struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

func NewRedisStreamSender(client redis.Cmdable, stream string, maxLen int64) *RedisStreamSender {
	return &RedisStreamSender{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisStreamSender) Name() string { return "redis" }

func (s *RedisStreamSender) Send(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"event_id": n.EventID.String(),
			"kind":     string(n.Kind),
			"payload":  payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd notification: %w", err)
	}
	return nil
}
