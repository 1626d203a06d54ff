package main

import (
	"context"
	"fmt"
	"log/slog"

	"jobboard/internal/notify"
	"jobboard/internal/platform/config"
	"jobboard/internal/platform/kafka"
	"jobboard/internal/platform/redis"
)

// buildSender returns the notification sender selected by NOTIFY_SINK and a
// func that releases its resources.
func buildSender(ctx context.Context, cfg config.Server, redisClient *redis.Client, logger *slog.Logger) (notify.Sender, func(), error) {
	switch cfg.Notify.Sink {
	case config.SinkKafka:
		client, err := kafka.NewClient(cfg.Kafka)
		if err != nil {
			return nil, nil, err
		}
		if err := kafka.EnsureTopic(ctx, client, cfg.Kafka); err != nil {
			client.Close()
			return nil, nil, err
		}
		return notify.NewKafkaSender(client, cfg.Kafka.NotifyTopic), client.Close, nil
	case config.SinkRedis:
		if redisClient == nil {
			return nil, nil, fmt.Errorf("redis notification sink needs REDIS_URL")
		}
		return notify.NewRedisStreamSender(redisClient.Client, cfg.Notify.RedisStream, cfg.Notify.RedisStreamMaxLen), func() {}, nil
	default:
		return notify.NewLogSender(logger), func() {}, nil
	}
}
