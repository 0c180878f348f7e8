// Package gateway parses gateway flags and launches the edge service.
package gateway

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/recordmesh/internal/platform/cmd"
	server "github.com/louisbranch/recordmesh/internal/services/gateway/app"
)

// Config holds gateway command configuration.
type Config struct {
	Port         int           `env:"RECORDMESH_GATEWAY_PORT" envDefault:"3000"`
	UsersAddr    string        `env:"RECORDMESH_USERS_ADDR" envDefault:"localhost:50051"`
	ProductsAddr string        `env:"RECORDMESH_PRODUCTS_ADDR" envDefault:"localhost:50052"`
	Broker       string        `env:"RECORDMESH_KAFKA_BROKER" envDefault:"localhost:9092"`
	DialTimeout  time.Duration `env:"RECORDMESH_DIAL_TIMEOUT" envDefault:"30s"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The gateway HTTP port")
	fs.StringVar(&cfg.UsersAddr, "users-addr", cfg.UsersAddr, "The users service address")
	fs.StringVar(&cfg.ProductsAddr, "products-addr", cfg.ProductsAddr, "The products service address")
	fs.StringVar(&cfg.Broker, "broker", cfg.Broker, "The Kafka broker address")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the gateway HTTP service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGateway, func(context.Context) error {
		return server.Run(ctx, server.Config{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			UsersAddr:    cfg.UsersAddr,
			ProductsAddr: cfg.ProductsAddr,
			Broker:       cfg.Broker,
			DialTimeout:  cfg.DialTimeout,
		})
	})
}
