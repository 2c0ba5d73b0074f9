package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/eden/internal/client/cli"
	"github.com/dmitrijs2005/eden/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := cli.NewAppFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
