package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"productcatalog/internal/models"
	"productcatalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteRepository(t *testing.T) *repositories.GORMProductRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	repo := repositories.NewGORMProductRepository(db)
	require.NoError(t, repo.Migrate())
	return repo
}

func sampleProduct(name string, price float64, createdAt time.Time) *models.Product {
	id := uuid.New().String()
	return &models.Product{
		PK:        models.ProductPartition,
		SK:        id,
		ID:        id,
		Name:      name,
		Price:     price,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// exerciseRepository runs the behaviour every ProductRepository must share.
func exerciseRepository(t *testing.T, repo repositories.ProductRepository) {
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	shoe := sampleProduct("Red Shoe", 10, created)
	hat := sampleProduct("Blue Hat", 20, created.AddDate(0, 1, 0))
	require.NoError(t, repo.Create(ctx, shoe))
	require.NoError(t, repo.Create(ctx, hat))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := repo.GetByID(ctx, shoe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Red Shoe", got.Name)
	assert.Equal(t, 10.0, got.Price)
	assert.True(t, got.CreatedAt.Equal(created))

	description := "Leather"
	later := created.Add(time.Hour)
	updated, err := repo.Update(ctx, shoe.ID, models.ProductPatch{Description: &description, UpdatedAt: later})
	require.NoError(t, err)
	assert.Equal(t, "Leather", updated.Description)
	assert.Equal(t, "Red Shoe", updated.Name)
	assert.Equal(t, 10.0, updated.Price)
	assert.True(t, updated.UpdatedAt.Equal(later))
	assert.True(t, updated.CreatedAt.Equal(created))

	_, err = repo.Update(ctx, "missing", models.ProductPatch{Description: &description, UpdatedAt: later})
	assert.True(t, errors.Is(err, repositories.ErrProductNotFound))

	require.NoError(t, repo.Delete(ctx, shoe.ID))
	_, err = repo.GetByID(ctx, shoe.ID)
	assert.True(t, errors.Is(err, repositories.ErrProductNotFound))

	err = repo.Delete(ctx, shoe.ID)
	assert.True(t, errors.Is(err, repositories.ErrProductNotFound))

	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, hat.ID, all[0].ID)
}

func TestMemoryProductRepository(t *testing.T) {
	exerciseRepository(t, repositories.NewMemoryProductRepository())
}

func TestGORMProductRepository(t *testing.T) {
	exerciseRepository(t, newSQLiteRepository(t))
}

func TestMemoryProductRepository_CreateAssignsID(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	product := &models.Product{Name: "No ID", Price: 1}

	require.NoError(t, repo.Create(context.Background(), product))
	assert.NotEmpty(t, product.ID)

	_, err := uuid.Parse(product.ID)
	assert.NoError(t, err)
}

func TestGORMProductRepository_UpdateZeroPrice(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()
	product := sampleProduct("Gift Card", 25, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, product))

	zero := 0.0
	updated, err := repo.Update(ctx, product.ID, models.ProductPatch{Price: &zero, UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.Price)
}
