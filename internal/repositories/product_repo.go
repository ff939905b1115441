package repositories

import (
	"context"
	"errors"

	"productcatalog/internal/models"
)

// ErrProductNotFound is returned (wrapped) when no record exists for an id.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access. Every
// method touches at most one key except GetAll.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update writes only the fields set in patch and returns the stored record.
	Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}
