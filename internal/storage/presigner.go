// Package storage signs direct-to-store image uploads. Upload bytes never pass
// through the request handlers; only signed descriptors do.
package storage

import (
	"context"
	"time"
)

// PutObjectRequest describes the object a signed PUT may create.
type PutObjectRequest struct {
	Key           string
	ContentType   string
	ContentLength *int64
	Metadata      map[string]string
	Expires       time.Duration
}

// SignedRequest is a time-limited request the client replays verbatim.
type SignedRequest struct {
	URL    string
	Method string
	// Headers must accompany the request because they are covered by the signature.
	Headers map[string]string
}

// Presigner signs uploads into an object store.
type Presigner interface {
	PresignPut(ctx context.Context, req PutObjectRequest) (*SignedRequest, error)
	// ObjectURL returns the public read URL of key.
	ObjectURL(key string) string
}
