// Package canvas parses canvas service flags and launches the service.
package canvas

import (
	"context"
	"flag"

	entrypoint "github.com/GusEh06/pixel-battle-lite/internal/platform/cmd"
	server "github.com/GusEh06/pixel-battle-lite/internal/services/canvas/app"
)

// Config holds canvas command configuration.
type Config struct {
	Port int `env:"PIXEL_BATTLE_PORT" envDefault:"8080"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The canvas HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the canvas HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCanvas, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
