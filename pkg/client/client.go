// Package client wraps the catalog HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"productcatalog/internal/models"
)

// Client calls the catalog API at BaseURL. One HTTP request is made per call;
// nothing is retried.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	// uploadClient carries the longer upload timeout.
	uploadClient *http.Client
}

// UploadTimeout bounds a direct image upload.
const UploadTimeout = 15 * time.Minute

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the API HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		uploadClient: &http.Client{Timeout: UploadTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListProducts returns every product.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var resp models.ProductListResponse
	if err := c.do(ctx, http.MethodGet, "/products", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// GetProduct returns the product with id.
func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProductInput is the body sent to create a product.
type CreateProductInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
}

// UpdateProductInput is a partial update; nil fields are not sent.
type UpdateProductInput struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	Image       *string  `json:"image,omitempty"`
}

// CreateProduct creates a product.
func (c *Client) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodPost, "/products", in, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct applies a partial update.
func (c *Client) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodPut, "/products/"+id, in, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct deletes a product and returns the server message.
func (c *Client) DeleteProduct(ctx context.Context, id string) (string, error) {
	var resp models.MessageResponse
	if err := c.do(ctx, http.MethodDelete, "/products/"+id, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// GeneratePresignedURL requests an upload descriptor.
func (c *Client) GeneratePresignedURL(ctx context.Context, req models.PresignRequest) (*models.PresignedUpload, error) {
	var upload models.PresignedUpload
	if err := c.do(ctx, http.MethodPost, "/products/upload", req, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
