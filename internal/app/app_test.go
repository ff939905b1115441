package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"productcatalog/internal/app"
	"productcatalog/internal/config"
	"productcatalog/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MemoryAndLocalStore(t *testing.T) {
	cfg := &config.Config{
		AppPort:           ":9090",
		StoreDriver:       config.StoreMemory,
		ObjectStoreDriver: config.ObjectStoreLocal,
		LocalUploadDir:    filepath.Join(t.TempDir(), "uploads"),
		UploadURLSecret:   "secret",
	}

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.LocalStore)
	assert.Nil(t, a.Events)
	assert.False(t, a.AuthService.Enabled())

	price := models.Price(10)
	product, err := a.ProductService.CreateProduct(context.Background(), models.CreateProductRequest{Name: "Red Shoe", Price: &price})
	require.NoError(t, err)

	upload, err := a.UploadService.GeneratePresignedURL(context.Background(), models.PresignRequest{FileName: "a.png", FileType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9090/uploads/"+upload.Key, upload.S3URL)

	got, err := a.ProductService.GetProductByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Red Shoe", got.Name)
}

func TestNew_SQLite(t *testing.T) {
	cfg := &config.Config{
		StoreDriver:       config.StoreSQLite,
		DatabaseDSN:       "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		ObjectStoreDriver: config.ObjectStoreLocal,
		LocalUploadDir:    t.TempDir(),
		JWTSecret:         "test_jwt_secret",
	}

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.AuthService.Enabled())
	products, err := a.ProductService.GetAllProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := app.New(context.Background(), &config.Config{StoreDriver: "mongo", ObjectStoreDriver: config.ObjectStoreLocal})
	assert.Error(t, err)
}
