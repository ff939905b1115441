// Package handlers exposes the catalog operations over Fiber.
package handlers

import (
	"productcatalog/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// respondError writes err using the shared status and body mapping.
func respondError(c *fiber.Ctx, err error) error {
	return c.Status(apperror.Status(err)).JSON(fiber.Map(apperror.Body(err)))
}

var errProductIDRequired = apperror.Validation("Product ID is required")
