// Package app builds the catalog services from configuration. Both the HTTP
// server and the Lambda entry point start here.
package app

import (
	"context"
	"fmt"
	"log"
	"os"

	"productcatalog/internal/config"
	"productcatalog/internal/repositories"
	"productcatalog/internal/services"
	"productcatalog/internal/storage"
	"productcatalog/pkg/rabbitmq"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// App holds the constructed services and the resources they depend on.
type App struct {
	Config         *config.Config
	ProductService *services.ProductService
	UploadService  *services.UploadService
	AuthService    *services.AuthService
	// LocalStore is set when the local object store is selected.
	LocalStore *storage.LocalStore
	// Events is nil when RABBITMQ_URL is empty.
	Events *rabbitmq.Client

	closers []func() error
}

// New constructs every dependency named by cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, AuthService: services.NewAuthService(cfg.JWTSecret)}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		awsCfg = &c
		return c, nil
	}

	repo, err := a.productRepository(cfg, loadAWS)
	if err != nil {
		a.Close()
		return nil, err
	}

	presigner, err := a.presigner(cfg, loadAWS)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []services.ProductServiceOption{}
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.Events = mqClient
		a.closers = append(a.closers, mqClient.Close)
		opts = append(opts, services.WithEventPublisher(mqClient, rabbitmq.DefaultExchange))
	}

	a.ProductService = services.NewProductService(repo, opts...)
	a.UploadService = services.NewUploadService(presigner)
	return a, nil
}

func (a *App) productRepository(cfg *config.Config, loadAWS func() (aws.Config, error)) (repositories.ProductRepository, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return repositories.NewMemoryProductRepository(), nil
	case config.StoreSQLite, config.StorePostgres:
		dialector := sqlite.Open(cfg.DatabaseDSN)
		if cfg.StoreDriver == config.StorePostgres {
			dialector = postgres.Open(cfg.DatabaseDSN)
		}
		db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		repo := repositories.NewGORMProductRepository(db)
		if err := repo.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
		}
		return repo, nil
	case config.StoreDynamoDB:
		awsCfg, err := loadAWS()
		if err != nil {
			return nil, err
		}
		return repositories.NewDynamoProductRepository(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func (a *App) presigner(cfg *config.Config, loadAWS func() (aws.Config, error)) (storage.Presigner, error) {
	switch cfg.ObjectStoreDriver {
	case config.ObjectStoreS3:
		awsCfg, err := loadAWS()
		if err != nil {
			return nil, err
		}
		return storage.NewS3Presigner(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.PublicBaseURL), nil
	case config.ObjectStoreLocal:
		if err := os.MkdirAll(cfg.LocalUploadDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
		secret := cfg.UploadURLSecret
		if secret == "" {
			secret = uuid.NewString()
			log.Println("UPLOAD_URL_SECRET not set, using a random secret for this process")
		}
		a.LocalStore = storage.NewLocalStore(cfg.LocalUploadDir, cfg.LocalBaseURL(), secret)
		return a.LocalStore, nil
	default:
		return nil, fmt.Errorf("unknown object store driver %q", cfg.ObjectStoreDriver)
	}
}

// Close releases every resource opened by New, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}
	a.closers = nil
}
