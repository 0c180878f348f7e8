package products

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 50052 {
		t.Fatalf("expected default port 50052, got %d", cfg.Port)
	}
	if cfg.Broker != "localhost:9092" {
		t.Fatalf("expected default broker, got %q", cfg.Broker)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "9002"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9002 {
		t.Fatalf("expected port 9002, got %d", cfg.Port)
	}
}
