package models

// PresignRequest is the body of POST /products/upload.
type PresignRequest struct {
	FileName      string `json:"fileName" validate:"required"`
	FileType      string `json:"fileType" validate:"required"`
	ContentLength *int64 `json:"contentLength,omitempty" validate:"omitempty,gte=0"`
}

// PresignedUpload describes a single signed upload. It is never persisted.
type PresignedUpload struct {
	PresignedURL     string            `json:"presignedUrl"`
	Key              string            `json:"key"`
	FileName         string            `json:"fileName"`
	OriginalFileName string            `json:"originalFileName"`
	FileType         string            `json:"fileType"`
	ExpiresIn        int               `json:"expiresIn"`
	S3URL            string            `json:"s3Url"`
	Headers          map[string]string `json:"headers,omitempty"`
}
