package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-connect/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/sercha-connect/internal/logger"
	"github.com/custodia-labs/sercha-connect/internal/telemetry"
)

// shutdownGrace is added to the exchange timeout when draining in-flight callbacks.
const shutdownGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the OAuth callback server",
	Long: `Run the HTTP server that starts authorizations and receives provider callbacks.

Routes:
  GET    /oauth/start/:provider        redirect to the provider's consent page
  GET    /oauth/callback/:provider     exchange the code and redirect to the app
  GET    /oauth/connections            connection status (never token values)
  DELETE /oauth/connections/:provider  disconnect
  GET    /healthz                      liveness

config.toml is watched and credential changes apply without a restart.`,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if currentApp == nil {
		return errors.New("application not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cmd, currentApp)
}

// serve runs the HTTP server until ctx is done, then drains in-flight requests.
func serve(ctx context.Context, cmd *cobra.Command, a *app) error {
	shutdownTracing, err := telemetry.Setup(ctx, a.settings.OTelEndpoint, version)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("flush traces: %v", err)
		}
	}()

	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	server, err := httpapi.NewServer(httpapi.Config{
		Addr:           a.settings.Addr,
		Registry:       a.registry,
		Authorizations: a.authorizations,
		Callbacks:      a.callbacks,
		Tokens:         a.tokens,
		RateLimit:      a.settings.RateLimit,
		RateBurst:      a.settings.RateBurst,
		WriteTimeout:   a.settings.ExchangeTimeout + shutdownGrace,
	})
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}

	go func() {
		err := a.config.Watch(ctx, func(err error) {
			if err != nil {
				logger.Error("reload %s: %v", a.config.Path(), err)
				return
			}
			logger.Info("reloaded %s", a.config.Path())
		})
		if err != nil {
			logger.Warn("config hot reload disabled: %v", err)
		}
	}()

	cmd.Printf("sercha-connect listening on %s\n", server.Addr())
	cmd.Printf("Redirect URIs use %s\n", a.settings.RedirectBaseURL)

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-server.Err():
		serveErr = fmt.Errorf("serve: %w", err)
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), a.settings.ExchangeTimeout+shutdownGrace)
	defer cancel()
	if err := server.Stop(drainCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("shutdown: %w", err)
	}

	cmd.Println("Server stopped")
	return serveErr
}
