package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/zedseven/stegtext"
	"github.com/zedseven/stegtext/internal/config"
	"github.com/zedseven/stegtext/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := pflag.String("config", "", "Path to the stegd YAML config (default: $"+config.EnvVar+", else built-in defaults)")
	showVersion := pflag.Bool("version", false, "Print the version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("stegd %s\n", stegtext.Version())
		return 0
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	level, _ := cfg.SlogLevel()
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("stegd starting",
		"version", stegtext.Version(),
		"addr", cfg.ListenAddr,
		"static_dir", cfg.StaticDir,
		"max_upload_bytes", cfg.MaxUploadBytes,
		"max_payload_bytes", cfg.MaxPayloadBytes,
	)

	if err := server.New(cfg, logger).Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	logger.Info("stegd stopped")
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadFile(path)
	case os.Getenv(config.EnvVar) != "":
		return config.Load()
	default:
		return config.Default(), nil
	}
}
