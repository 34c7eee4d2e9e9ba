package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chippom/ChipsGIFs/internal/client/cli"
	"github.com/chippom/ChipsGIFs/internal/client/config"
	"github.com/chippom/ChipsGIFs/internal/logging"
	"github.com/joho/godotenv"
)

func main() {

	_ = godotenv.Load()

	cfg, args, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewApp(cfg, os.Stdout, logger).Run(ctx, args); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		logger.Error(ctx, "command failed", "err", err)
		os.Exit(1)
	}
}
