// Package products parses products service flags and launches the service.
package products

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/recordmesh/internal/platform/cmd"
	server "github.com/louisbranch/recordmesh/internal/services/products/app"
)

// Config holds products command configuration.
type Config struct {
	Port   int    `env:"RECORDMESH_PRODUCTS_PORT" envDefault:"50052"`
	Broker string `env:"RECORDMESH_KAFKA_BROKER" envDefault:"localhost:9092"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The products gRPC server port")
	fs.StringVar(&cfg.Broker, "broker", cfg.Broker, "The Kafka broker address")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the products gRPC API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceProducts, func(context.Context) error {
		return server.Run(ctx, cfg.Port, cfg.Broker)
	})
}
