package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ProductPartition is the fixed partition key value shared by every product item.
const ProductPartition = "PRODUCT"

// Product represents a product in the catalog.
type Product struct {
	PK          string    `json:"PK" dynamodbav:"PK" gorm:"column:pk;type:varchar(32);index"`
	SK          string    `json:"SK" dynamodbav:"SK" gorm:"column:sk;type:varchar(36)"`
	ID          string    `json:"id" dynamodbav:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" dynamodbav:"name" gorm:"not null"`
	Price       float64   `json:"price" dynamodbav:"price" gorm:"not null"`
	Description string    `json:"description" dynamodbav:"description"`
	Image       string    `json:"image" dynamodbav:"image"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updated_at" gorm:"autoUpdateTime:false"`
}

// Price is a product price decoded from either a JSON number or a numeric string.
type Price float64

// ErrPriceOutOfRange is returned for prices that do not fit in a float64.
var ErrPriceOutOfRange = errors.New("price must be a number: out of range")

// UnmarshalJSON accepts 12.5 as well as "12.5".
func (p *Price) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("price must be a number: %w", err)
	}
	f := d.InexactFloat64()
	// A non-finite price could be stored but never encoded again.
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return ErrPriceOutOfRange
	}
	*p = Price(f)
	return nil
}

// Float returns the price as a float64.
func (p Price) Float() float64 {
	return float64(p)
}

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Price       *Price `json:"price" validate:"required,gt=0"`
	Description string `json:"description"`
	Image       string `json:"image" validate:"omitempty,url"`
}

// UpdateProductRequest is the body of PUT /products/{id}. A nil field was
// absent from the body and leaves the stored value untouched. An empty image
// clears the stored image, so Image is URL-checked only when non-empty.
type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Price       *Price  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// ProductPatch is the set of fields an update writes. UpdatedAt is always set.
type ProductPatch struct {
	Name        *string
	Price       *float64
	Description *string
	Image       *string
	UpdatedAt   time.Time
}

// Apply merges the patch into p.
func (patch ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	p.UpdatedAt = patch.UpdatedAt
}

// ProductListResponse wraps the product list returned by GET /products.
type ProductListResponse struct {
	Products []Product `json:"products"`
}

// MessageResponse is returned by operations that do not echo a record.
type MessageResponse struct {
	Message string `json:"message"`
}
