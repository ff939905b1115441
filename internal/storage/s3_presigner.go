package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Presigner signs PutObject requests against a single bucket.
type S3Presigner struct {
	client        *s3.PresignClient
	bucket        string
	publicBaseURL string
}

// NewS3Presigner wraps client. An empty publicBaseURL yields virtual-hosted
// bucket URLs.
func NewS3Presigner(client *s3.Client, bucket, publicBaseURL string) *S3Presigner {
	return &S3Presigner{
		client:        s3.NewPresignClient(client),
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// PresignPut returns a signed PUT URL for req.Key.
func (p *S3Presigner) PresignPut(ctx context.Context, req PutObjectRequest) (*SignedRequest, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(req.Key),
		ContentType:   aws.String(req.ContentType),
		ContentLength: req.ContentLength,
		Metadata:      req.Metadata,
	}

	signed, err := p.client.PresignPutObject(ctx, input, s3.WithPresignExpires(req.Expires))
	if err != nil {
		return nil, fmt.Errorf("failed to presign put for %s: %w", req.Key, err)
	}

	headers := make(map[string]string, len(signed.SignedHeader))
	for name, values := range signed.SignedHeader {
		if strings.EqualFold(name, "Host") {
			continue
		}
		headers[http.CanonicalHeaderKey(name)] = strings.Join(values, ",")
	}

	return &SignedRequest{
		URL:     signed.URL,
		Method:  signed.Method,
		Headers: headers,
	}, nil
}

// ObjectURL returns the public URL of key.
func (p *S3Presigner) ObjectURL(key string) string {
	if p.publicBaseURL != "" {
		return p.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", p.bucket, key)
}
