package cli_test

import (
	"bytes"
	"context"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"productcatalog/internal/app"
	"productcatalog/internal/cli"
	"productcatalog/internal/config"
	"productcatalog/internal/server"
	"productcatalog/internal/services"
	"productcatalog/pkg/client"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type harness struct {
	runner *cli.Runner
	out    *bytes.Buffer
	errOut *bytes.Buffer
	in     *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	baseURL := "http://" + listener.Addr().String()

	catalog, err := app.New(context.Background(), &config.Config{
		StoreDriver:       config.StoreMemory,
		ObjectStoreDriver: config.ObjectStoreLocal,
		LocalUploadDir:    t.TempDir(),
		UploadURLSecret:   "secret",
		PublicBaseURL:     baseURL,
	})
	require.NoError(t, err)
	t.Cleanup(catalog.Close)

	srv := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: adaptor.FiberApp(server.NewApp(catalog, server.Options{DisableRequestLog: true}))},
	}
	srv.Start()
	t.Cleanup(srv.Close)

	h := &harness{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}, in: &bytes.Buffer{}}
	h.runner = &cli.Runner{
		Client: client.New(srv.URL),
		Auth:   services.NewAuthService("test_jwt_secret"),
		In:     h.in,
		Out:    h.out,
		Err:    h.errOut,
	}
	return h
}

func (h *harness) run(args ...string) int {
	h.out.Reset()
	h.errOut.Reset()
	return h.runner.Run(context.Background(), args)
}

var createdID = regexp.MustCompile(`Created product ([0-9a-f-]{36})`)

func (h *harness) create(t *testing.T, args ...string) string {
	t.Helper()
	require.Equal(t, 0, h.run(append([]string{"create"}, args...)...), h.errOut.String())
	m := createdID.FindStringSubmatch(h.out.String())
	require.Len(t, m, 2)
	return m[1]
}

func TestCreateListEditDelete(t *testing.T) {
	h := newHarness(t)

	id := h.create(t, "--name", "  Red Shoe ", "--price", "10", "--description", "Leather")
	assert.Contains(t, h.out.String(), "Name:")
	assert.Contains(t, h.out.String(), "Red Shoe")
	assert.Contains(t, h.out.String(), "$10.00")

	h.create(t, "--name", "Blue Hat", "--price", "20")

	require.Equal(t, 0, h.run("list", "--search", "shoe"))
	assert.True(t, strings.HasPrefix(h.out.String(), "1 of 2 products\n"))
	assert.Contains(t, h.out.String(), "Red Shoe")
	assert.NotContains(t, h.out.String(), "Blue Hat")

	require.Equal(t, 0, h.run("list", "--sort", "price", "--order", "desc"))
	out := h.out.String()
	assert.Less(t, strings.Index(out, "Blue Hat"), strings.Index(out, "Red Shoe"))

	require.Equal(t, 0, h.run("edit", id, "--price", "15"), h.errOut.String())
	assert.Contains(t, h.out.String(), "$15.00")
	assert.Contains(t, h.out.String(), "Leather")

	require.Equal(t, 0, h.run("get", id))
	assert.Contains(t, h.out.String(), "$15.00")

	h.in.WriteString("n\n")
	require.Equal(t, 0, h.run("delete", id))
	assert.Contains(t, h.out.String(), "Aborted")

	require.Equal(t, 0, h.run("delete", id, "--yes"))
	assert.Contains(t, h.out.String(), "Product deleted successfully")

	assert.Equal(t, 1, h.run("get", id))
	assert.Contains(t, h.errOut.String(), "Product not found")
}

func TestCreate_FormValidation(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run("create", "--name", "   ", "--price", "0"))
	assert.Contains(t, h.errOut.String(), "Name is required")
	assert.Contains(t, h.errOut.String(), "Price must be greater than 0")

	require.Equal(t, 0, h.run("list"))
	assert.Contains(t, h.out.String(), "0 of 0 products")
}

func TestEdit_Validation(t *testing.T) {
	h := newHarness(t)
	id := h.create(t, "--name", "Hat", "--price", "5")

	assert.Equal(t, 1, h.run("edit", id, "--name", ""))
	assert.Contains(t, h.errOut.String(), "Name is required")

	assert.Equal(t, 1, h.run("edit", id, "--price", "-2"))
	assert.Contains(t, h.errOut.String(), "Price must be greater than 0")
}

func TestImageUpload(t *testing.T) {
	h := newHarness(t)

	dir := t.TempDir()
	imagePath := filepath.Join(dir, "shoe.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("\x89PNG\r\n\x1a\n0000"), 0o644))

	require.Equal(t, 0, h.run("upload", imagePath), h.errOut.String())
	assert.Regexp(t, `/uploads/products/[0-9a-f-]{36}\.png\n$`, h.out.String())

	id := h.create(t, "--name", "Red Shoe", "--price", "10", "--image-file", imagePath)
	assert.Contains(t, h.out.String(), "Image:")

	require.Equal(t, 0, h.run("edit", id, "--remove-image"))
	assert.NotContains(t, h.out.String(), "Image:")

	textPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("hello"), 0o644))
	assert.Equal(t, 1, h.run("create", "--name", "Hat", "--price", "1", "--image-file", textPath))
	assert.Contains(t, h.errOut.String(), "Please select an image file")
}

func TestToken(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("token", "--subject", "admin"))
	claims, err := h.runner.Auth.ValidateToken(strings.TrimSpace(h.out.String()))
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["sub"])
}

func TestUsage(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 2, h.run())
	assert.Equal(t, 2, h.run("frobnicate"))
	assert.Equal(t, 2, h.run("get"))
	assert.Equal(t, 2, h.run("list", "--sort", "stock"))
	assert.Equal(t, 0, h.run("help"))
}
