package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/svelazco/storeflow-backend/pkg/config"
	"github.com/svelazco/storeflow-backend/pkg/db"
	"github.com/svelazco/storeflow-backend/pkg/logger"
	"github.com/svelazco/storeflow-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", migrate.DefaultDir, "migrations directory")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}
	var extra []string
	if args := flag.Args(); len(args) > 1 {
		extra = args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "storeflow-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	ctx := context.Background()

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "connecting to database", err)
		os.Exit(1)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		logg.Error(ctx, "extracting sql.DB", err)
		os.Exit(1)
	}

	lctx := logg.WithFields(ctx, map[string]any{"command": command, "dir": *dir})
	if err := migrate.Run(ctx, sqlDB, *dir, command, extra...); err != nil {
		logg.Error(lctx, "migration failed", err)
		os.Exit(1)
	}
	logg.Info(lctx, "migration complete")
}
