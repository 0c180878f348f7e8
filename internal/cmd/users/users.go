// Package users parses users service flags and launches the service.
package users

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/recordmesh/internal/platform/cmd"
	server "github.com/louisbranch/recordmesh/internal/services/users/app"
)

// Config holds users command configuration.
type Config struct {
	Port   int    `env:"RECORDMESH_USERS_PORT" envDefault:"50051"`
	Broker string `env:"RECORDMESH_KAFKA_BROKER" envDefault:"localhost:9092"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The users gRPC server port")
	fs.StringVar(&cfg.Broker, "broker", cfg.Broker, "The Kafka broker address")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the users gRPC API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceUsers, func(context.Context) error {
		return server.Run(ctx, cfg.Port, cfg.Broker)
	})
}
