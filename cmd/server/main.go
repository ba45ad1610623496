package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/gophjournal/internal/buildinfo"
	"github.com/dmitrijs2005/gophjournal/internal/server"
	"github.com/dmitrijs2005/gophjournal/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(log.Writer())

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
