package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-cacheable/cache"
	"github.com/goliatone/go-cacheable/pkg/di"
	"github.com/goliatone/go-cacheable/pkg/logging"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the posts demo API with cached route binding",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for key, flag := range map[string]string{
				"serve.addr":      "addr",
				"serve.db_driver": "db-driver",
				"serve.dsn":       "dsn",
				"serve.seed":      "seed",
			} {
				if err := a.settings.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("db-driver", dbDriverSQLite, "database driver: sqlite or postgres")
	cmd.Flags().String("dsn", "file:cacheable.db?cache=shared", "database connection string")
	cmd.Flags().Bool("seed", true, "insert demo posts into an empty table")

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	log := logging.NewLogger("serve")

	db, err := openDB(a.settings.GetString("serve.db_driver"), a.settings.GetString("serve.dsn"))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrate(ctx, db); err != nil {
		return err
	}

	repo := newPostRepository(db)
	if a.settings.GetBool("serve.seed") {
		if err := seed(ctx, repo); err != nil {
			return err
		}
	}

	container, err := di.NewContainer(a.config, cache.WithLogger(logging.CacheLogger("cache")))
	if err != nil {
		return err
	}
	defer container.Close(context.Background())

	posts, err := newPostModel(container, repo)
	if err != nil {
		return err
	}
	if err := container.SyncAll(ctx); err != nil {
		return err
	}

	e := newServer(posts, log)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	addr := a.settings.GetString("serve.addr")
	log.Info().
		Str("addr", addr).
		Str("cache_driver", a.config.Driver).
		Strs("models", container.Models()).
		Msg("serving")

	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
