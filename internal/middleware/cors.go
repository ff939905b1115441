package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// CORSHeaders are set on every response, including errors.
var CORSHeaders = map[string]string{
	fiber.HeaderAccessControlAllowOrigin:  "*",
	fiber.HeaderAccessControlAllowHeaders: "Content-Type, Authorization",
	fiber.HeaderAccessControlAllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
}

// CORS sets CORSHeaders and answers preflight requests with 200.
func CORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		for k, v := range CORSHeaders {
			c.Set(k, v)
		}
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.Next()
	}
}
