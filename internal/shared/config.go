package shared

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	RequestTimeout time.Duration
	MetricsAddr    string
	MySQLDSN       string
	MigrateOnStart bool
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	Workers        int
	EvalConc       int

	// Scoring overrides; zero keeps the built-in value.
	MatchThreshold     int
	BudgetTolerancePct int

	NotifySink   string // log|webhook|redis|kafka
	WebhookURL   string
	WebhookKey   string
	WebhookRPS   int
	RedisStream  string
	KafkaBrokers []string
	KafkaTopic   string
}

func Load() Config {
	// .env is optional; real environment wins over it
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "prod")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/propmatch?parseTime=true&charset=utf8mb4,utf8&loc=UTC")
	v.SetDefault("MIGRATE_ON_START", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 300)
	v.SetDefault("RECALC_WORKERS", 8)
	v.SetDefault("EVAL_CONCURRENCY", 8)
	v.SetDefault("MATCH_THRESHOLD", 0)
	v.SetDefault("BUDGET_TOLERANCE_PCT", 0)
	v.SetDefault("NOTIFY_SINK", "log")
	v.SetDefault("NOTIFY_WEBHOOK_URL", "")
	v.SetDefault("NOTIFY_WEBHOOK_KEY", "")
	v.SetDefault("NOTIFY_WEBHOOK_RPS", 5)
	v.SetDefault("NOTIFY_REDIS_STREAM", "propmatch:notifications")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "propmatch.notifications")
	return v
}

func FromViper(v *viper.Viper) Config {
	c := Config{
		AppEnv:         v.GetString("APP_ENV"),
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		RequestTimeout: time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		MetricsAddr:    v.GetString("METRICS_ADDR"),
		MySQLDSN:       v.GetString("MYSQL_DSN"),
		MigrateOnStart: v.GetBool("MIGRATE_ON_START"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPass:      v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		CacheTTL:       time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		Workers:        v.GetInt("RECALC_WORKERS"),
		EvalConc:       v.GetInt("EVAL_CONCURRENCY"),

		MatchThreshold:     v.GetInt("MATCH_THRESHOLD"),
		BudgetTolerancePct: v.GetInt("BUDGET_TOLERANCE_PCT"),

		NotifySink:     strings.ToLower(v.GetString("NOTIFY_SINK")),
		WebhookURL:     v.GetString("NOTIFY_WEBHOOK_URL"),
		WebhookKey:     v.GetString("NOTIFY_WEBHOOK_KEY"),
		WebhookRPS:     v.GetInt("NOTIFY_WEBHOOK_RPS"),
		RedisStream:    v.GetString("NOTIFY_REDIS_STREAM"),
		KafkaBrokers:   splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:     v.GetString("KAFKA_TOPIC"),
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.NotifySink == "webhook" && c.WebhookURL == "" {
		log.Warn().Msg("NOTIFY_WEBHOOK_URL is empty")
	}
	return c
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
