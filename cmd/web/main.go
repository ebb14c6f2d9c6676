package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/shurl-web/internal/api"
	"github.com/serroba/shurl-web/internal/container"
	"github.com/serroba/shurl-web/internal/messaging"
	"github.com/serroba/shurl-web/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

func registerPackages(injector *do.Injector, options *container.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PubSubPackage(injector)
	container.ConsumerGroupPackage(injector)
	container.APIPackage(injector)
	container.SessionPackage(injector)
	container.HTTPPackage(injector)
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		registerPackages(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)
		ctx, cancel := context.WithCancel(context.Background())

		var server *http.Server

		hooks.OnStart(func() {
			router := do.MustInvoke[*chi.Mux](injector)

			// Invoke API to trigger route registration
			_ = do.MustInvoke[huma.API](injector)

			// Without redis nobody else reads the in-process channel.
			if options.InProcessEvents() {
				group := do.MustInvoke[*messaging.ConsumerGroup](injector)
				if err := group.Start(ctx); err != nil {
					logger.Fatal("failed to start consumer group", zap.Error(err))
				}
			}

			sessions := do.MustInvoke[*session.Manager](injector)
			go sessions.SweepEvery(ctx, sweepInterval, func(removed int) {
				if removed > 0 {
					logger.Debug("expired sessions dropped", zap.Int("count", removed))
				}
			})

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("apiUrl", do.MustInvoke[*api.Client](injector).BaseURL()),
				zap.Bool("inProcessEvents", options.InProcessEvents()),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()

			if server != nil {
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
		})
	})

	cli.Root().AddCommand(&cobra.Command{
		Use:   "shorten <url>",
		Short: "Shorten a URL and print the resulting link",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *container.Options) {
			exitOn(runShorten(cmd.Context(), newBinder(options), args[0], cmd.OutOrStdout()))
		}),
	})

	cli.Root().AddCommand(&cobra.Command{
		Use:   "lookup <code>",
		Short: "Resolve a short code and print the original URL",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *container.Options) {
			exitOn(runLookup(cmd.Context(), newBinder(options), args[0], cmd.OutOrStdout()))
		}),
	})

	cli.Run()
}

func exitOn(failed bool) {
	if failed {
		os.Exit(1)
	}
}
