package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"productcatalog/internal/models"
)

// UploadImage PUTs data to the descriptor's signed URL, sending every signed
// header so the request matches the signature.
func (c *Client) UploadImage(ctx context.Context, upload *models.PresignedUpload, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, upload.PresignedURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	for name, value := range upload.Headers {
		// net/http derives Content-Length from the body.
		if strings.EqualFold(name, "Content-Length") {
			continue
		}
		req.Header.Set(name, value)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", upload.FileType)
	}
	req.ContentLength = int64(len(data))

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return fmt.Errorf("image upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp)
		return fmt.Errorf("image upload failed: %w", apiErr)
	}
	return nil
}

// UploadFile requests a descriptor for fileName, uploads data and returns the
// public URL to store as the product image.
func (c *Client) UploadFile(ctx context.Context, fileName, fileType string, data []byte) (string, error) {
	size := int64(len(data))
	upload, err := c.GeneratePresignedURL(ctx, models.PresignRequest{
		FileName:      fileName,
		FileType:      fileType,
		ContentLength: &size,
	})
	if err != nil {
		return "", err
	}
	if err := c.UploadImage(ctx, upload, data); err != nil {
		return "", err
	}
	return upload.S3URL, nil
}
