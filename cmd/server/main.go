package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/nutritracker/internal/logging"
	"github.com/dmitrijs2005/nutritracker/internal/server"
	"github.com/dmitrijs2005/nutritracker/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
