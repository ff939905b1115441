package handlers

import (
	"bytes"
	"errors"
	"log"

	"productcatalog/internal/services"
	"productcatalog/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler issues signed upload descriptors.
type UploadHandler struct {
	service *services.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// RegisterRoutes registers POST /products/upload behind guard.
func (h *UploadHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	router.Post("/products/upload", guard, h.HandleGeneratePresignedURL)
}

// HandleGeneratePresignedURL returns a descriptor for one direct upload.
func (h *UploadHandler) HandleGeneratePresignedURL(c *fiber.Ctx) error {
	req, err := services.DecodePresign(c.Body())
	if err != nil {
		return respondError(c, err)
	}

	upload, err := h.service.GeneratePresignedURL(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(upload)
}

// LocalUploadHandler receives signed PUTs for the filesystem object store.
type LocalUploadHandler struct {
	store *storage.LocalStore
}

// NewLocalUploadHandler creates a new LocalUploadHandler.
func NewLocalUploadHandler(store *storage.LocalStore) *LocalUploadHandler {
	return &LocalUploadHandler{store: store}
}

// RegisterRoutes registers PUT /uploads/* and serves stored objects.
func (h *LocalUploadHandler) RegisterRoutes(app *fiber.App) {
	app.Put("/uploads/*", h.HandlePut)
	app.Static("/uploads", h.store.Dir())
}

// HandlePut stores the request body under the signed key.
func (h *LocalUploadHandler) HandlePut(c *fiber.Ctx) error {
	key := c.Params("*")
	contentType := c.Get(fiber.HeaderContentType)

	if err := h.store.Verify(key, c.Query("exp"), c.Query("nonce"), c.Query("sig"), contentType); err != nil {
		log.Printf("Rejected upload to %s: %v", key, err)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}
	if !services.IsAllowedImageType(contentType) {
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
			"error": "Only image files are allowed (jpeg, jpg, png, gif, webp)",
		})
	}
	if c.Request().Header.ContentLength() > services.MaxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": storage.ErrObjectTooLarge.Error()})
	}

	if err := h.store.Save(key, bytes.NewReader(c.Body()), services.MaxUploadSize); err != nil {
		log.Printf("Error storing upload %s: %v", key, err)
		switch {
		case errors.Is(err, storage.ErrObjectExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, storage.ErrObjectTooLarge):
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, storage.ErrInvalidKey):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.SendStatus(fiber.StatusOK)
}
