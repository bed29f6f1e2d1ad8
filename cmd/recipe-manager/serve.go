package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joestump/recipe-manager/internal/api"
	"github.com/joestump/recipe-manager/internal/build"
	"github.com/joestump/recipe-manager/internal/client"
	"github.com/joestump/recipe-manager/internal/db"
	"github.com/joestump/recipe-manager/internal/handler"
	"github.com/joestump/recipe-manager/internal/metrics"
	"github.com/joestump/recipe-manager/internal/session"
	"github.com/joestump/recipe-manager/internal/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the database and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			recipeStore := store.NewRecipeStore(database)
			if n, err := recipeStore.Count(cmd.Context()); err == nil {
				metrics.RecipesTotal.Set(float64(n))
			}

			sessionManager := session.NewManager(database, cfg.DB.Driver, cfg.SessionLifetime, cfg.SecureCookies)
			apiClient := client.New(cfg.Client.APIURL, client.WithTimeout(cfg.Client.Timeout))

			router := handler.NewRouter(handler.Deps{
				SessionManager: sessionManager,
				Recipes:        apiClient,
				API: api.NewAPIRouter(api.Deps{
					Recipes:   recipeStore,
					RateLimit: cfg.API.RateLimit,
					RateBurst: cfg.API.RateBurst,
				}),
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.Info().
					Str("addr", cfg.HTTP.Addr).
					Str("env", cfg.Env).
					Str("api_url", cfg.Client.APIURL).
					Str("version", build.Version).
					Msg("listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("listen: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
				defer cancel()
				log.Info().Msg("shutting down")
				return srv.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			log.Info().Msg("server stopped gracefully")
			return nil
		},
	}
}
