package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	httpapi "github.com/jacklul/e621-telegram-bot/internal/http"
)

func newRunCmd() *cobra.Command {
	var webhook bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		Long: "Start the bot. By default updates are fetched by long polling; " +
			"with --webhook an HTTP server receives them instead (register the " +
			"URL first with `e621bot webhook set`).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if webhook {
				return serveWebhook(ctx, app)
			}
			app.poller.Run(ctx)
			return nil
		},
	}

	cmd.Flags().BoolVar(&webhook, "webhook", false, "serve webhook deliveries instead of long polling")
	return cmd
}

// serveWebhook runs the Gin server until the context is canceled, then
// shuts down gracefully.
func serveWebhook(ctx context.Context, app *app) error {
	gin.SetMode(app.cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{Updates: app.poller, Store: app.store}, app.cfg)

	srv := &http.Server{
		Addr:              ":" + app.cfg.Port,
		Handler:           r,
		ReadTimeout:       app.cfg.ReadTimeout,
		ReadHeaderTimeout: app.cfg.ReadHeaderTimeout,
		WriteTimeout:      app.cfg.WriteTimeout,
		IdleTimeout:       app.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		app.log.Info().Str("addr", srv.Addr).Msg("webhook server started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	app.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
