// Package bootstrap wires config into the concrete adapters shared by the
// api and matcher binaries.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	kafkaad "propmatch/internal/adapters/kafka"
	"propmatch/internal/adapters/observability"
	redisad "propmatch/internal/adapters/redis"
	"propmatch/internal/adapters/webhook"
	"propmatch/internal/app"
	"propmatch/internal/domain"
	"propmatch/internal/matching"
	"propmatch/internal/shared"
	mysqlrepo "propmatch/internal/storage/mysql"
)

// OpenDB opens and pings MySQL, applying migrations when migrate is set.
func OpenDB(ctx context.Context, dsn string, migrate bool) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	log.Info().Msg("database connection ok")

	if migrate {
		if err := mysqlrepo.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func NewRedis(cfg shared.Config) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
}

// NewNotifier picks the notification sink named by cfg.NotifySink. The
// returned close func is never nil.
func NewNotifier(cfg shared.Config, rc *redis.Client) (domain.Notifier, func() error, error) {
	noop := func() error { return nil }
	switch cfg.NotifySink {
	case "", "log":
		return observability.NewLogNotifier(log.Logger), noop, nil
	case "webhook":
		c, err := webhook.New(cfg.WebhookURL, cfg.WebhookKey, cfg.WebhookRPS)
		if err != nil {
			return nil, noop, err
		}
		return c, noop, nil
	case "redis":
		if rc == nil {
			return nil, noop, fmt.Errorf("redis sink needs a redis client")
		}
		return redisad.NewStreamNotifier(rc, cfg.RedisStream), noop, nil
	case "kafka":
		p := kafkaad.NewProducer(kafkaad.ProducerConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		return p, p.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown NOTIFY_SINK %q", cfg.NotifySink)
	}
}

// NewEngine builds the match engine over repo with the redis listing cache.
func NewEngine(cfg shared.Config, repo *mysqlrepo.Repo, cache domain.Cache, n domain.Notifier) *app.Engine {
	return app.NewEngine(repo, repo, repo, n,
		app.WithCache(cache),
		app.WithEvalConcurrency(cfg.EvalConc),
		app.WithWeights(Weights(cfg)),
	)
}

// Weights applies the configured scoring overrides to the defaults.
func Weights(cfg shared.Config) matching.Weights {
	w := matching.DefaultWeights()
	if cfg.MatchThreshold > 0 && cfg.MatchThreshold <= matching.ScoreDirect {
		w.Threshold = cfg.MatchThreshold
	}
	if cfg.BudgetTolerancePct > 0 && cfg.BudgetTolerancePct < 100 {
		w.TolerancePct = cfg.BudgetTolerancePct
	}
	if w != matching.DefaultWeights() {
		log.Info().Int("threshold", w.Threshold).Int("budget_tolerance_pct", w.TolerancePct).Msg("scoring overrides applied")
	}
	return w
}

func NewCache(rc *redis.Client) *redisad.Cache { return redisad.NewFromClient(rc) }
