package storage

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingSignature = errors.New("missing upload signature parameters")
	ErrSignatureExpired = errors.New("upload link has expired")
	ErrInvalidSignature = errors.New("invalid upload signature")
	ErrObjectExists     = errors.New("object already uploaded")
	ErrObjectTooLarge   = errors.New("object exceeds size limit")
	ErrInvalidKey       = errors.New("invalid object key")
)

// LocalStore is a filesystem object store whose PUT URLs are HMAC-signed and
// expire. Each key can be written once.
type LocalStore struct {
	dir     string
	baseURL string
	secret  []byte
	now     func() time.Time
}

// NewLocalStore stores objects under dir and serves them below baseURL/uploads.
func NewLocalStore(dir, baseURL, secret string) *LocalStore {
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		now:     time.Now,
	}
}

// Dir is the root directory of stored objects.
func (s *LocalStore) Dir() string {
	return s.dir
}

// PresignPut signs a PUT for req.Key. The content type is part of the signature.
func (s *LocalStore) PresignPut(_ context.Context, req PutObjectRequest) (*SignedRequest, error) {
	if err := checkKey(req.Key); err != nil {
		return nil, err
	}

	expiration := s.now().Add(req.Expires).Unix()
	nonceBytes := make([]byte, 12)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(nonceBytes)

	query := url.Values{}
	query.Set("exp", strconv.FormatInt(expiration, 10))
	query.Set("nonce", nonce)
	query.Set("sig", s.sign(req.Key, expiration, nonce, req.ContentType))

	return &SignedRequest{
		URL:     s.ObjectURL(req.Key) + "?" + query.Encode(),
		Method:  http.MethodPut,
		Headers: map[string]string{"Content-Type": req.ContentType},
	}, nil
}

// ObjectURL returns the public URL of key.
func (s *LocalStore) ObjectURL(key string) string {
	return s.baseURL + "/uploads/" + key
}

// Verify checks the signature parameters of a PUT to key.
func (s *LocalStore) Verify(key, expStr, nonce, sig, contentType string) error {
	if key == "" || expStr == "" || nonce == "" || sig == "" {
		return ErrMissingSignature
	}
	expiration, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid expiration: %w", err)
	}
	if s.now().Unix() > expiration {
		return ErrSignatureExpired
	}

	expected := s.sign(key, expiration, nonce, contentType)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrInvalidSignature
	}
	return nil
}

// Save writes body to key, failing if the key was already written or the body
// is longer than limit bytes.
func (s *LocalStore) Save(key string, body io.Reader, limit int64) error {
	if err := checkKey(key); err != nil {
		return err
	}
	dst := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrObjectExists
		}
		return fmt.Errorf("failed to open %s: %w", key, err)
	}

	n, err := io.Copy(f, io.LimitReader(body, limit+1))
	closeErr := f.Close()
	if err == nil && n > limit {
		err = ErrObjectTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}

func (s *LocalStore) sign(key string, expiration int64, nonce, contentType string) string {
	payload := strings.Join([]string{key, strconv.FormatInt(expiration, 10), nonce, strings.ToLower(contentType)}, "|")
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	return nil
}
