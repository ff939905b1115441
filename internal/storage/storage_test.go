package storage

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Presigner_PresignPut(t *testing.T) {
	client := s3.New(s3.Options{
		Region:      "us-east-1",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", "")),
	})
	presigner := NewS3Presigner(client, "catalog-images", "")

	signed, err := presigner.PresignPut(context.Background(), PutObjectRequest{
		Key:         "products/abc.png",
		ContentType: "image/png",
		Metadata:    map[string]string{"original-name": "shoe.png"},
		Expires:     15 * time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, "PUT", signed.Method)
	assert.Contains(t, signed.URL, "products/abc.png")
	assert.Contains(t, signed.URL, "X-Amz-Signature=")
	assert.Contains(t, signed.URL, "X-Amz-Expires=900")
	assert.NotContains(t, signed.Headers, "Host")
}

func TestS3Presigner_ObjectURL(t *testing.T) {
	client := s3.New(s3.Options{Region: "us-east-1"})

	assert.Equal(t, "https://catalog-images.s3.amazonaws.com/products/a.png",
		NewS3Presigner(client, "catalog-images", "").ObjectURL("products/a.png"))
	assert.Equal(t, "https://cdn.example.com/products/a.png",
		NewS3Presigner(client, "catalog-images", "https://cdn.example.com/").ObjectURL("products/a.png"))
}

func signedParams(t *testing.T, signed *SignedRequest) url.Values {
	t.Helper()
	u, err := url.Parse(signed.URL)
	require.NoError(t, err)
	return u.Query()
}

func TestLocalStore_SignAndVerify(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "http://localhost:8080/", "test-secret")
	signed, err := store.PresignPut(context.Background(), PutObjectRequest{
		Key:         "products/abc.png",
		ContentType: "image/png",
		Expires:     15 * time.Minute,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signed.URL, "http://localhost:8080/uploads/products/abc.png?"))
	assert.Equal(t, "image/png", signed.Headers["Content-Type"])

	q := signedParams(t, signed)
	assert.NoError(t, store.Verify("products/abc.png", q.Get("exp"), q.Get("nonce"), q.Get("sig"), "image/png"))
	assert.ErrorIs(t, store.Verify("products/other.png", q.Get("exp"), q.Get("nonce"), q.Get("sig"), "image/png"), ErrInvalidSignature)
	assert.ErrorIs(t, store.Verify("products/abc.png", q.Get("exp"), q.Get("nonce"), q.Get("sig"), "image/gif"), ErrInvalidSignature)
	assert.ErrorIs(t, store.Verify("products/abc.png", "", q.Get("nonce"), q.Get("sig"), "image/png"), ErrMissingSignature)

	store.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	assert.ErrorIs(t, store.Verify("products/abc.png", q.Get("exp"), q.Get("nonce"), q.Get("sig"), "image/png"), ErrSignatureExpired)
}

func TestLocalStore_SaveOnce(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "http://localhost:8080", "test-secret")

	require.NoError(t, store.Save("products/abc.png", bytes.NewReader([]byte("png-bytes")), 1024))
	data, err := os.ReadFile(filepath.Join(dir, "products", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	assert.ErrorIs(t, store.Save("products/abc.png", bytes.NewReader([]byte("again")), 1024), ErrObjectExists)
}

func TestLocalStore_SaveRejects(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "http://localhost:8080", "test-secret")

	assert.ErrorIs(t, store.Save("products/big.png", bytes.NewReader(make([]byte, 11)), 10), ErrObjectTooLarge)
	_, err := os.Stat(filepath.Join(dir, "products", "big.png"))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, store.Save("../escape.png", bytes.NewReader(nil), 10), ErrInvalidKey)
	_, err = store.PresignPut(context.Background(), PutObjectRequest{Key: "/abs.png"})
	assert.ErrorIs(t, err, ErrInvalidKey)
}
