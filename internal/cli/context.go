package cli

import (
	"context"

	"github.com/thenoetrevino/pasosync/internal/config"
)

type contextKey string

const configKey contextKey = "config"

// WithConfig returns a context carrying cfg for subcommands
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// ConfigFromContext returns the configuration set by WithConfig, or the
// built-in defaults when none was set
func ConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok && cfg != nil {
		return cfg
	}
	return config.Default()
}
