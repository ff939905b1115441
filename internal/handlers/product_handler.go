package handlers

import (
	"log"

	"productcatalog/internal/models"
	"productcatalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes. guard runs before every
// mutating route.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", guard, h.HandleCreateProduct)
	productRoutes.Put("/:id", guard, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", guard, h.HandleDeleteProduct)
}

// HandleGetProducts lists every product.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return respondError(c, err)
	}
	return c.JSON(models.ProductListResponse{Products: products})
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.service.GetProductByID(c.UserContext(), productID)
	if err != nil {
		log.Printf("Error getting product by ID %s: %v", productID, err)
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	req, err := services.DecodeCreateProduct(c.Body())
	if err != nil {
		return respondError(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	// Return the created product with its new ID and a 201 Created status
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	if productID == "" {
		return respondError(c, errProductIDRequired)
	}

	req, err := services.DecodeUpdateProduct(c.Body())
	if err != nil {
		return respondError(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), productID, req)
	if err != nil {
		log.Printf("Error updating product %s: %v", productID, err)
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	resp, err := h.service.DeleteProduct(c.UserContext(), productID)
	if err != nil {
		log.Printf("Error deleting product %s: %v", productID, err)
		return respondError(c, err)
	}
	return c.JSON(resp)
}
