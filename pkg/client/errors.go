package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	// Message is the server's error field, or a generic status message.
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP error! status: %d", resp.StatusCode),
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}
