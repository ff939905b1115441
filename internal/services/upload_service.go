package services

import (
	"context"
	"log"
	"strings"
	"time"

	"productcatalog/internal/apperror"
	"productcatalog/internal/models"
	"productcatalog/internal/storage"

	"github.com/google/uuid"
)

const (
	// MaxUploadSize is the largest image a descriptor may be issued for.
	MaxUploadSize = 10 * 1024 * 1024
	// UploadExpiry bounds how long a signed upload URL stays valid.
	UploadExpiry = 15 * time.Minute
	// UploadPrefix namespaces every uploaded image key.
	UploadPrefix = "products/"
)

// AllowedImageTypes lists the MIME types accepted for product images.
var AllowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"}

// IsAllowedImageType compares contentType against AllowedImageTypes ignoring case.
func IsAllowedImageType(contentType string) bool {
	lower := strings.ToLower(contentType)
	for _, t := range AllowedImageTypes {
		if lower == t {
			return true
		}
	}
	return false
}

// UploadService issues signed upload descriptors.
type UploadService struct {
	presigner storage.Presigner
	validator *Validator
	now       func() time.Time
	newID     func() string
}

// NewUploadService creates an UploadService signing with presigner.
func NewUploadService(presigner storage.Presigner) *UploadService {
	return &UploadService{
		presigner: presigner,
		validator: NewValidator(),
		now:       defaultClock,
		newID:     uuid.NewString,
	}
}

// GeneratePresignedURL validates req and returns a descriptor for one upload.
func (s *UploadService) GeneratePresignedURL(ctx context.Context, req models.PresignRequest) (*models.PresignedUpload, error) {
	if req.FileName == "" || req.FileType == "" {
		return nil, apperror.Validation("fileName and fileType are required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if !IsAllowedImageType(req.FileType) {
		return nil, apperror.Validation("Only image files are allowed (jpeg, jpg, png, gif, webp)")
	}
	if req.ContentLength != nil && *req.ContentLength > MaxUploadSize {
		return nil, apperror.Validation("File size must be less than 10MB")
	}

	uniqueName := s.newID()
	if ext := extension(req.FileName); ext != "" {
		uniqueName += "." + ext
	}
	key := UploadPrefix + uniqueName

	var contentLength *int64
	if req.ContentLength != nil && *req.ContentLength > 0 {
		contentLength = req.ContentLength
	}

	signed, err := s.presigner.PresignPut(ctx, storage.PutObjectRequest{
		Key:           key,
		ContentType:   req.FileType,
		ContentLength: contentLength,
		Metadata: map[string]string{
			"original-name": req.FileName,
			"uploaded-at":   s.now().Format(time.RFC3339Nano),
		},
		Expires: UploadExpiry,
	})
	if err != nil {
		log.Printf("Error generating presigned URL: %v", err)
		return nil, apperror.UpstreamWithMessage("Failed to generate presigned URL", err)
	}

	return &models.PresignedUpload{
		PresignedURL:     signed.URL,
		Key:              key,
		FileName:         uniqueName,
		OriginalFileName: req.FileName,
		FileType:         req.FileType,
		ExpiresIn:        int(UploadExpiry / time.Second),
		S3URL:            s.presigner.ObjectURL(key),
		Headers:          signed.Headers,
	}, nil
}

// extension returns the text after the last dot of name, or "" without a dot.
func extension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx+1:]
}
