package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "propmatch/internal/adapters/http_server"
	"propmatch/internal/adapters/observability"
	"propmatch/internal/app"
	"propmatch/internal/bootstrap"
	"propmatch/internal/shared"
	mysqlrepo "propmatch/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	db, err := bootstrap.OpenDB(ctx, cfg.MySQLDSN, cfg.MigrateOnStart)
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}
	defer db.Close()

	rc := bootstrap.NewRedis(cfg)
	defer rc.Close()

	notifier, closeNotifier, err := bootstrap.NewNotifier(cfg, rc)
	if err != nil {
		log.Fatal().Err(err).Msg("notifier init failed")
	}
	defer func() {
		if err := closeNotifier(); err != nil {
			log.Warn().Err(err).Msg("notifier close failed")
		}
	}()

	repo := mysqlrepo.New(db)
	cache := bootstrap.NewCache(rc)
	engine := bootstrap.NewEngine(cfg, repo, cache, notifier)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Engine: engine, Q: q})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("sink", cfg.NotifySink).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
