package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/jeremyjsx/quickfacts/internal/config"
	"github.com/jeremyjsx/quickfacts/internal/db"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	flag.Usage = func() {
		os.Stderr.WriteString("Usage: migrate COMMAND\n\nCommands:\n  up\n  down\n  status\n  version\n  reset\n")
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	command := flag.Arg(0)
	if err := db.Migrate(ctx, conn, command); err != nil {
		logger.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}
	logger.Info("migration finished", "command", command)
}
