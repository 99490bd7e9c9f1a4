package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"propmatch/internal/adapters/observability"
	"propmatch/internal/app"
	"propmatch/internal/bootstrap"
	"propmatch/internal/shared"
	mysqlrepo "propmatch/internal/storage/mysql"
)

const appName = "matcher"

type options struct {
	preview bool
	workers int
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           appName,
		Short:         "matcher computes and stores buyer/property matches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.preview, "preview", false, "compute and print matches without writing")

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "apply database migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg := load()
				db, err := bootstrap.OpenDB(cmd.Context(), cfg.MySQLDSN, true)
				if err != nil {
					return err
				}
				return db.Close()
			},
		},
		&cobra.Command{
			Use:   "property <id>",
			Short: "recalculate matches for one property",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEngine(cmd.Context(), func(rt *runtime) error {
					if opts.preview {
						res, err := rt.engine.ComputeMatchesForProperty(cmd.Context(), args[0])
						if err != nil {
							return err
						}
						return printJSON(cmd.OutOrStdout(), res)
					}
					n, err := rt.engine.RecalculateProperty(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), map[string]int{"created": n})
				})
			},
		},
		&cobra.Command{
			Use:   "wanted-ad <id>",
			Short: "recalculate matches for one wanted ad",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEngine(cmd.Context(), func(rt *runtime) error {
					if opts.preview {
						res, err := rt.engine.ComputeMatchesForWantedAd(cmd.Context(), args[0])
						if err != nil {
							return err
						}
						return printJSON(cmd.OutOrStdout(), res)
					}
					n, err := rt.engine.RecalculateWantedAd(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), map[string]int{"created": n})
				})
			},
		},
		recalcAllCmd(&opts),
	)
	return root
}

func recalcAllCmd(opts *options) *cobra.Command {
	c := &cobra.Command{
		Use:   "recalc-all",
		Short: "recalculate matches for every property",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd.Context(), func(rt *runtime) error {
				ids, err := rt.repo.ListPropertyIDs(cmd.Context())
				if err != nil {
					return fmt.Errorf("list properties: %w", err)
				}
				workers := opts.workers
				if workers <= 0 {
					workers = rt.cfg.Workers
				}
				log.Info().Int("properties", len(ids)).Int("workers", workers).Msg("recalc-all starting")

				stats, err := app.RecalculateAll(cmd.Context(), rt.engine.RecalculateProperty, ids, workers)
				log.Info().
					Int("created", stats.Created).
					Int("missing", stats.Missing).
					Int("failures", stats.Failures).
					Msg("recalc-all completed")
				if perr := printJSON(cmd.OutOrStdout(), stats); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	c.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent recalculations (default RECALC_WORKERS)")
	return c
}

type runtime struct {
	cfg    shared.Config
	repo   *mysqlrepo.Repo
	engine *app.Engine
}

func load() shared.Config {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)
	return cfg
}

// withEngine builds the full adapter stack, runs fn, then tears it down.
func withEngine(ctx context.Context, fn func(*runtime) error) error {
	cfg := load()

	db, err := bootstrap.OpenDB(ctx, cfg.MySQLDSN, cfg.MigrateOnStart)
	if err != nil {
		return err
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	rc := bootstrap.NewRedis(cfg)
	defer rc.Close()

	notifier, closeNotifier, err := bootstrap.NewNotifier(cfg, rc)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeNotifier(); err != nil {
			log.Warn().Err(err).Msg("notifier close failed")
		}
	}()

	repo := mysqlrepo.New(db)
	return fn(&runtime{
		cfg:    cfg,
		repo:   repo,
		engine: bootstrap.NewEngine(cfg, repo, bootstrap.NewCache(rc), notifier),
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
