package cli

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"productcatalog/internal/services"
)

// ProductForm holds the fields of the create and edit forms.
type ProductForm struct {
	Name        string
	Price       float64
	Description string
	Image       string
}

// Validate returns a message per invalid field. Name is trimmed first.
func (f *ProductForm) Validate() map[string]string {
	f.Name = strings.TrimSpace(f.Name)
	errs := map[string]string{}
	if f.Name == "" {
		errs["name"] = "Name is required"
	}
	if f.Price <= 0 {
		errs["price"] = "Price must be greater than 0"
	}
	return errs
}

// FormError reports every invalid form field.
type FormError map[string]string

func (e FormError) Error() string {
	msgs := make([]string, 0, len(e))
	for _, m := range e {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// ImageFile is a local image checked for upload.
type ImageFile struct {
	Name string
	Type string
	Data []byte
}

// LoadImage reads path and checks its type and size before any request is made.
func LoadImage(path string) (*ImageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if info.Size() > services.MaxUploadSize {
		return nil, fmt.Errorf("File size must be less than 10MB")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if !services.IsAllowedImageType(contentType) {
		return nil, fmt.Errorf("Please select an image file")
	}

	return &ImageFile{Name: filepath.Base(path), Type: contentType, Data: data}, nil
}
