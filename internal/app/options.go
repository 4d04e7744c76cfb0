package app

import (
	"log/slog"

	"github.com/thenoetrevino/pasosync/internal/daemon"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	logger         *slog.Logger
	server         daemon.Options
	wsPath         string
	allowedOrigins []string
}

func defaultConfig() appConfig {
	return appConfig{
		logger: slog.Default(),
		server: daemon.DefaultOptions(),
		wsPath: "/ws",
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithServerOptions configures the sync server
func WithServerOptions(opts daemon.Options) Option {
	return func(cfg *appConfig) {
		cfg.server = opts
	}
}

// WithWSPath sets the path the websocket endpoint is mounted on
func WithWSPath(path string) Option {
	return func(cfg *appConfig) {
		if path != "" {
			cfg.wsPath = path
		}
	}
}

// WithAllowedOrigins restricts CORS on the CRUD API. Empty allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(cfg *appConfig) {
		cfg.allowedOrigins = origins
	}
}
