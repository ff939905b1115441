// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
)

// Object store drivers.
const (
	ObjectStoreS3    = "s3"
	ObjectStoreLocal = "local"
)

// Config holds every setting read at startup.
type Config struct {
	AppPort           string
	StoreDriver       string
	DatabaseDSN       string
	DynamoDBTable     string
	ObjectStoreDriver string
	S3Bucket          string
	AWSRegion         string
	PublicBaseURL     string
	LocalUploadDir    string
	UploadURLSecret   string
	RabbitMQURL       string
	JWTSecret         string
	APIURL            string
	APIToken          string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("DATABASE_DSN", "file:catalog.db?cache=shared")
	v.SetDefault("DYNAMODB_TABLE", "products")
	v.SetDefault("OBJECT_STORE_DRIVER", ObjectStoreLocal)
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("PUBLIC_BASE_URL", "")
	v.SetDefault("LOCAL_UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_URL_SECRET", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("API_URL", "http://localhost:8080")
	v.SetDefault("API_TOKEN", "")
}

// Load reads the configuration from v, which should already have defaults
// and environment binding applied.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:           v.GetString("APP_PORT"),
		StoreDriver:       strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		DynamoDBTable:     v.GetString("DYNAMODB_TABLE"),
		ObjectStoreDriver: strings.ToLower(v.GetString("OBJECT_STORE_DRIVER")),
		S3Bucket:          v.GetString("S3_BUCKET"),
		AWSRegion:         v.GetString("AWS_REGION"),
		PublicBaseURL:     strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		LocalUploadDir:    v.GetString("LOCAL_UPLOAD_DIR"),
		UploadURLSecret:   v.GetString("UPLOAD_URL_SECRET"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		APIURL:            strings.TrimRight(v.GetString("API_URL"), "/"),
		APIToken:          v.GetString("API_TOKEN"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from defaults and environment variables.
func FromEnv() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv() // Load environment variables
	return Load(v)
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreSQLite, StorePostgres:
	case StoreDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.ObjectStoreDriver {
	case ObjectStoreS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 object store")
		}
	case ObjectStoreLocal:
	default:
		return fmt.Errorf("unknown OBJECT_STORE_DRIVER %q", c.ObjectStoreDriver)
	}
	return nil
}

// RequireRemoteObjectStore rejects the local object store. Its signed upload
// route is served by the HTTP server only, so entry points without that
// route must sign uploads against S3.
func (c *Config) RequireRemoteObjectStore() error {
	if c.ObjectStoreDriver != ObjectStoreS3 {
		return fmt.Errorf("OBJECT_STORE_DRIVER must be %q here, got %q", ObjectStoreS3, c.ObjectStoreDriver)
	}
	return nil
}

// LocalBaseURL is the public base of the local object store.
func (c *Config) LocalBaseURL() string {
	if c.PublicBaseURL != "" {
		return c.PublicBaseURL
	}
	port := c.AppPort
	if strings.HasPrefix(port, ":") {
		return "http://localhost" + port
	}
	return "http://" + port
}
