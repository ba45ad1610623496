package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophjournal/internal/buildinfo"
	"github.com/dmitrijs2005/gophjournal/internal/client/cli"
	"github.com/dmitrijs2005/gophjournal/internal/client/config"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/rs/zerolog"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	logger := logging.NewConsoleLogger(os.Stderr, level)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
