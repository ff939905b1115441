package services

import (
	"context"
	"errors"
	"log"
	"time"

	"productcatalog/internal/apperror"
	"productcatalog/internal/models"
	"productcatalog/internal/repositories"

	"github.com/google/uuid"
)

const (
	msgProductIDRequired = "Product ID is required"
	msgProductNotFound   = "Product not found"
	msgProductDeleted    = "Product deleted successfully"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	validator *Validator
	events    eventSink
	now       func() time.Time
	newID     func() string
}

// ProductServiceOption configures a ProductService.
type ProductServiceOption func(*ProductService)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) ProductServiceOption {
	return func(s *ProductService) { s.now = now }
}

// WithIDGenerator overrides product ID generation.
func WithIDGenerator(newID func() string) ProductServiceOption {
	return func(s *ProductService) { s.newID = newID }
}

// WithEventPublisher publishes lifecycle events to exchange.
func WithEventPublisher(publisher EventPublisher, exchange string) ProductServiceOption {
	return func(s *ProductService) { s.events = eventSink{publisher: publisher, exchange: exchange} }
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, opts ...ProductServiceOption) *ProductService {
	s := &ProductService{
		repo:      repo,
		validator: NewValidator(),
		now:       defaultClock,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// defaultClock matches ISO-8601 millisecond timestamps.
func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// GetAllProducts retrieves all products in store order.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, apperror.Upstream(err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	if id == "" {
		return nil, apperror.Validation(msgProductIDRequired)
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return product, nil
}

// CreateProduct validates req and stores a new product with fresh ID and timestamps.
func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	now := s.now()
	id := s.newID()
	product := &models.Product{
		PK:          models.ProductPartition,
		SK:          id,
		ID:          id,
		Name:        req.Name,
		Price:       req.Price.Float(),
		Description: req.Description,
		Image:       req.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		log.Printf("Error creating product: %v", err)
		return nil, apperror.Upstream(err)
	}

	s.events.emit(ProductEvent{Event: EventProductCreated, ProductID: product.ID, Product: product, OccurredAt: now})
	return product, nil
}

// UpdateProduct applies a partial update to an existing product. An empty name
// is ignored; every other field present in req overwrites the stored value.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	if id == "" {
		return nil, apperror.Validation(msgProductIDRequired)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if req.Image != nil && *req.Image != "" {
		if err := s.validator.Var("image", *req.Image, "url"); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	patch := models.ProductPatch{
		Description: req.Description,
		Image:       req.Image,
		UpdatedAt:   s.nextUpdate(existing),
	}
	if req.Name != nil && *req.Name != "" {
		patch.Name = req.Name
	}
	if req.Price != nil {
		price := req.Price.Float()
		patch.Price = &price
	}

	product, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		log.Printf("Error updating product %s: %v", id, err)
		return nil, translate(err)
	}

	s.events.emit(ProductEvent{Event: EventProductUpdated, ProductID: id, Product: product, OccurredAt: patch.UpdatedAt})
	return product, nil
}

// nextUpdate returns the clock reading, moved forward one millisecond past
// the stored timestamps when the clock has not advanced beyond them.
func (s *ProductService) nextUpdate(existing *models.Product) time.Time {
	now := s.now()
	if existing == nil {
		return now
	}
	latest := existing.UpdatedAt
	if existing.CreatedAt.After(latest) {
		latest = existing.CreatedAt
	}
	if !now.After(latest) {
		now = latest.Add(time.Millisecond)
	}
	return now
}

// DeleteProduct checks the product exists, then hard-deletes it. The product
// image is left in the object store.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*models.MessageResponse, error) {
	if id == "" {
		return nil, apperror.Validation(msgProductIDRequired)
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, translate(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		log.Printf("Error deleting product %s: %v", id, err)
		return nil, translate(err)
	}

	s.events.emit(ProductEvent{Event: EventProductDeleted, ProductID: id, OccurredAt: s.now()})
	return &models.MessageResponse{Message: msgProductDeleted}, nil
}

func translate(err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return apperror.NotFound(msgProductNotFound)
	}
	return apperror.Upstream(err)
}
