package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"productcatalog/internal/app"
	"productcatalog/internal/config"
	"productcatalog/internal/server"
)

func main() {
	// --- Configuration ---
	// A .env file is optional; real environment variables take precedence.
	_ = godotenv.Load()
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Initialize Stores, Signer and Event Publisher ---
	catalog, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer catalog.Close() // Ensure connections are closed on exit

	// --- Initialize Fiber App ---
	fiberApp := server.NewApp(catalog, server.Options{})

	// --- Start RabbitMQ Consumer in a Goroutine ---
	if catalog.Events != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for product events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received Product Event %s (Tag: %d): %s", msg.RoutingKey, msg.DeliveryTag, string(msg.Body))
				return nil // Return nil to acknowledge
			}
			if consumerErr := catalog.Events.ConsumeProductEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s (store=%s, objects=%s)", cfg.AppPort, cfg.StoreDriver, cfg.ObjectStoreDriver)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := fiberApp.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	// Shutdown Fiber app
	if err := fiberApp.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
