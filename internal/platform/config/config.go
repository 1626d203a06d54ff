package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Notification sinks selectable through NOTIFY_SINK.
const (
	SinkLog   = "log"
	SinkKafka = "kafka"
	SinkRedis = "redis"
)

// Server captures process level configuration.
type Server struct {
	Addr          string `env:"JOBBOARD_ADDR" envDefault:":8080"`
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"jobboard"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"json"`
	// DatabaseURL selects the Postgres stores; empty keeps everything in memory.
	DatabaseURL  string `env:"DATABASE_URL"`
	SeedDemoData bool   `env:"SEED_DEMO_DATA" envDefault:"false"`

	Redis     RedisConfig
	Kafka     KafkaConfig
	Notify    NotifyConfig
	Reminder  ReminderConfig
	RateLimit RateLimitConfig
}

// RedisConfig configures the shared go-redis client.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig configures the franz-go producer used for notifications.
type KafkaConfig struct {
	Brokers           []string `env:"KAFKA_BROKERS" envSeparator:","`
	NotifyTopic       string   `env:"KAFKA_NOTIFY_TOPIC" envDefault:"interview-notifications"`
	Partitions        int32    `env:"KAFKA_NOTIFY_PARTITIONS" envDefault:"3"`
	ReplicationFactor int16    `env:"KAFKA_NOTIFY_REPLICATION" envDefault:"1"`
}

// NotifyConfig configures the asynchronous notification dispatcher.
type NotifyConfig struct {
	Sink              string        `env:"NOTIFY_SINK" envDefault:"log"`
	QueueSize         int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"1024"`
	Workers           int           `env:"NOTIFY_WORKERS" envDefault:"4"`
	SendTimeout       time.Duration `env:"NOTIFY_SEND_TIMEOUT" envDefault:"5s"`
	RedisStream       string        `env:"NOTIFY_REDIS_STREAM" envDefault:"interview:notifications"`
	RedisStreamMaxLen int64         `env:"NOTIFY_REDIS_STREAM_MAXLEN" envDefault:"100000"`
	BreakerThreshold  int           `env:"NOTIFY_BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown   time.Duration `env:"NOTIFY_BREAKER_COOLDOWN" envDefault:"30s"`
}

// ReminderConfig configures the upcoming-interview reminder scheduler.
type ReminderConfig struct {
	Enabled  bool          `env:"REMINDER_ENABLED" envDefault:"true"`
	Interval time.Duration `env:"REMINDER_INTERVAL" envDefault:"1m"`
	Lead     time.Duration `env:"REMINDER_LEAD" envDefault:"24h"`
}

// RateLimitConfig sets per-user request budgets. The budget is shared across
// replicas through Redis when REDIS_URL is set.
type RateLimitConfig struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	ReadsPerWindow  int           `env:"RATE_LIMIT_READS" envDefault:"300"`
	WritesPerWindow int           `env:"RATE_LIMIT_WRITES" envDefault:"60"`
	Window          time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	switch c.Notify.Sink {
	case SinkLog:
	case SinkKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("NOTIFY_SINK=kafka requires KAFKA_BROKERS")
		}
	case SinkRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("NOTIFY_SINK=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_SINK %q", c.Notify.Sink)
	}
	if c.Notify.Workers <= 0 {
		return fmt.Errorf("NOTIFY_WORKERS must be positive")
	}
	if c.Reminder.Enabled && c.Reminder.Interval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be positive")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.ReadsPerWindow <= 0 || c.RateLimit.WritesPerWindow <= 0 || c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate limit budgets and RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}
