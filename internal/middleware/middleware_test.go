package middleware_test

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"productcatalog/internal/middleware"
	"productcatalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newApp(authService *services.AuthService) *fiber.App {
	app := fiber.New()
	app.Use(middleware.CORS())
	app.Post("/write", middleware.AuthRequired(authService), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"subject": c.Locals("subject")})
	})
	return app
}

func TestCORS_Preflight(t *testing.T) {
	app := newApp(services.NewAuthService(""))

	resp, err := app.Test(httptest.NewRequest(http.MethodOptions, "/write", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PUT")
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Content-Type")
}

func TestAuthRequired(t *testing.T) {
	authService := services.NewAuthService("test_jwt_secret")
	app := newApp(authService)

	// Missing header is rejected but still carries CORS headers
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/write", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	resp.Body.Close()

	token, err := authService.IssueToken("catalog-admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/write", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"subject":"catalog-admin"}`, string(body))
}

func TestAuthRequired_Disabled(t *testing.T) {
	app := newApp(services.NewAuthService(""))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/write", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
