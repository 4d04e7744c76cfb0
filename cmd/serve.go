package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/pasosync/internal/app"
	"github.com/thenoetrevino/pasosync/internal/config"
	"github.com/thenoetrevino/pasosync/internal/daemon"
	"github.com/thenoetrevino/pasosync/internal/logging"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API and the sync server",
		Long: `Serve the project and task API over HTTP and push every change to
websocket clients. Stops gracefully on SIGINT, SIGTERM or SIGQUIT.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (overrides config)")
	cmd.Flags().String("db", "", "database path (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	sc := cfg.Server
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		sc.Addr = addr
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		sc.DBPath = db
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	return serve(ctx, sc)
}

// serve runs the HTTP server and the sync heartbeat until ctx is done
func serve(ctx context.Context, sc config.ServerConfig) error {
	logger := logging.Logger

	application, err := app.New(ctx, sc.DBPath,
		app.WithLogger(logger),
		app.WithServerOptions(daemon.Options{
			HeartbeatInterval: sc.HeartbeatInterval,
			ClientBuffer:      sc.ClientBuffer,
			WriteWait:         sc.WriteWait,
		}),
		app.WithWSPath(sc.WSPath),
		app.WithAllowedOrigins(sc.AllowedOrigins),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("failed to close app", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              sc.Addr,
		Handler:           application.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return application.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("pasosync server starting",
			"addr", sc.Addr,
			"ws_path", sc.WSPath,
			"db_path", sc.DBPath,
			"pid", os.Getpid())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("pasosync server stopped")
	return nil
}
