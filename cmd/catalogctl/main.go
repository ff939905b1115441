// Command catalogctl lists, creates, edits and deletes catalog products.
package main

import (
	"context"
	"log"
	"os"

	"productcatalog/internal/cli"
	"productcatalog/internal/config"
	"productcatalog/internal/services"
	"productcatalog/pkg/client"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	runner := &cli.Runner{
		Client: client.New(cfg.APIURL, client.WithToken(cfg.APIToken)),
		Auth:   services.NewAuthService(cfg.JWTSecret),
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
	os.Exit(runner.Run(context.Background(), os.Args[1:]))
}
