// Command lambda serves the catalog as an API Gateway proxy integration.
package main

import (
	"context"
	"log"

	"productcatalog/internal/app"
	"productcatalog/internal/config"
	"productcatalog/internal/gateway"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	// API Gateway has no route for local uploads.
	if err := cfg.RequireRemoteObjectStore(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	catalog, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer catalog.Close()

	handler := gateway.NewHandler(catalog.ProductService, catalog.UploadService, catalog.AuthService)
	lambda.Start(handler.Handle)
}
