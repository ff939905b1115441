// Package gateway serves the catalog operations as an API Gateway proxy
// integration on AWS Lambda.
package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"productcatalog/internal/apperror"
	"productcatalog/internal/middleware"
	"productcatalog/internal/services"

	"github.com/aws/aws-lambda-go/events"
)

// Handler routes proxy requests to the catalog services.
type Handler struct {
	products *services.ProductService
	uploads  *services.UploadService
	auth     *services.AuthService
}

// NewHandler creates a Handler. auth may be disabled but not nil.
func NewHandler(products *services.ProductService, uploads *services.UploadService, auth *services.AuthService) *Handler {
	return &Handler{products: products, uploads: uploads, auth: auth}
}

type route int

const (
	routeUnknown route = iota
	routeCollection
	routeUpload
	routeItem
)

// Handle is the Lambda entry point.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return respond(http.StatusOK, nil), nil
	}

	r, id := match(req)
	if r == routeUnknown {
		return respond(http.StatusNotFound, map[string]string{"error": "Not Found"}), nil
	}

	body, err := requestBody(req)
	if err != nil {
		return respondError(apperror.Validation("Invalid request body: " + err.Error())), nil
	}

	if isWrite(req.HTTPMethod) {
		if _, err := h.auth.Authorize(header(req, "Authorization")); err != nil {
			log.Printf("JWT validation failed: %v", err)
			return respondError(err), nil
		}
	}

	switch {
	case r == routeCollection && req.HTTPMethod == http.MethodGet:
		return h.listProducts(ctx)
	case r == routeCollection && req.HTTPMethod == http.MethodPost:
		return h.createProduct(ctx, body)
	case r == routeUpload && req.HTTPMethod == http.MethodPost:
		return h.generatePresignedURL(ctx, body)
	case r == routeItem && req.HTTPMethod == http.MethodGet:
		return h.getProduct(ctx, id)
	case r == routeItem && req.HTTPMethod == http.MethodPut:
		return h.updateProduct(ctx, id, body)
	case r == routeItem && req.HTTPMethod == http.MethodDelete:
		return h.deleteProduct(ctx, id)
	}
	return respond(http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"}), nil
}

func (h *Handler) listProducts(ctx context.Context) (events.APIGatewayProxyResponse, error) {
	products, err := h.products.GetAllProducts(ctx)
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return respondError(err), nil
	}
	return respond(http.StatusOK, map[string]interface{}{"products": products}), nil
}

func (h *Handler) getProduct(ctx context.Context, id string) (events.APIGatewayProxyResponse, error) {
	product, err := h.products.GetProductByID(ctx, id)
	if err != nil {
		return respondError(err), nil
	}
	return respond(http.StatusOK, product), nil
}

func (h *Handler) createProduct(ctx context.Context, body []byte) (events.APIGatewayProxyResponse, error) {
	req, err := services.DecodeCreateProduct(body)
	if err != nil {
		return respondError(err), nil
	}
	product, err := h.products.CreateProduct(ctx, req)
	if err != nil {
		return respondError(err), nil
	}
	return respond(http.StatusCreated, product), nil
}

func (h *Handler) updateProduct(ctx context.Context, id string, body []byte) (events.APIGatewayProxyResponse, error) {
	if id == "" {
		return respondError(apperror.Validation("Product ID is required")), nil
	}
	req, err := services.DecodeUpdateProduct(body)
	if err != nil {
		return respondError(err), nil
	}
	product, err := h.products.UpdateProduct(ctx, id, req)
	if err != nil {
		log.Printf("Error updating product %s: %v", id, err)
		return respondError(err), nil
	}
	return respond(http.StatusOK, product), nil
}

func (h *Handler) deleteProduct(ctx context.Context, id string) (events.APIGatewayProxyResponse, error) {
	resp, err := h.products.DeleteProduct(ctx, id)
	if err != nil {
		log.Printf("Error deleting product %s: %v", id, err)
		return respondError(err), nil
	}
	return respond(http.StatusOK, resp), nil
}

func (h *Handler) generatePresignedURL(ctx context.Context, body []byte) (events.APIGatewayProxyResponse, error) {
	req, err := services.DecodePresign(body)
	if err != nil {
		return respondError(err), nil
	}
	upload, err := h.uploads.GeneratePresignedURL(ctx, req)
	if err != nil {
		return respondError(err), nil
	}
	return respond(http.StatusOK, upload), nil
}

// match resolves the route from the resource template when API Gateway
// supplies one, falling back to the raw path.
func match(req events.APIGatewayProxyRequest) (route, string) {
	id := req.PathParameters["id"]
	switch strings.TrimSuffix(req.Resource, "/") {
	case "/products":
		return routeCollection, ""
	case "/products/upload":
		return routeUpload, ""
	case "/products/{id}":
		return routeItem, id
	}

	path := strings.Trim(req.Path, "/")
	// Drop a stage prefix such as "dev/products".
	if i := strings.Index(path, "products"); i > 0 {
		path = path[i:]
	}
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1 && parts[0] == "products":
		return routeCollection, ""
	case len(parts) == 2 && parts[0] == "products" && parts[1] == "upload":
		return routeUpload, ""
	case len(parts) == 2 && parts[0] == "products":
		if id == "" {
			id = parts[1]
		}
		return routeItem, id
	}
	return routeUnknown, ""
}

func isWrite(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodDelete
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	return base64.StdEncoding.DecodeString(req.Body)
}

func header(req events.APIGatewayProxyRequest, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	for k, v := range req.MultiValueHeaders {
		if strings.EqualFold(k, name) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func respondError(err error) events.APIGatewayProxyResponse {
	return respond(apperror.Status(err), apperror.Body(err))
}

func respond(status int, payload interface{}) events.APIGatewayProxyResponse {
	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range middleware.CORSHeaders {
		headers[k] = v
	}

	body := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			log.Printf("Error encoding response: %v", err)
			status = http.StatusInternalServerError
			raw = []byte(`{"error":"failed to encode response"}`)
		}
		body = string(raw)
	}

	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: body}
}
