package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store is the media collaborator: upload a photo payload and get back
// a durable URL plus the object name needed to delete it later.
// Failures are surfaced to the caller, never retried here.
type Store interface {
	Upload(ctx context.Context, payload []byte, contentType, folder string) (url string, objectName string, err error)
	Delete(ctx context.Context, objectName string) error
}

type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the externally reachable base URL for served objects,
	// e.g. "https://cdn.example.com". Defaults to the endpoint.
	PublicURL string
}

func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, payload []byte, contentType, folder string) (string, string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}

	now := time.Now()
	objectName := fmt.Sprintf("%s/%d/%02d/%s%s",
		folder,
		now.Year(),
		now.Month(),
		uuid.New().String(),
		extensionFor(contentType))

	_, err := s.client.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"uploaded-at": now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload object: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName), objectName, nil
}

func (s *MinioStore) Delete(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// DecodePhoto accepts either a bare base64 string or a data URI
// ("data:image/png;base64,....") and returns the raw bytes plus the
// declared content type.
func DecodePhoto(photo string) ([]byte, string, error) {
	contentType := ""
	if strings.HasPrefix(photo, "data:") {
		semi := strings.Index(photo, ";base64,")
		if semi < 0 {
			return nil, "", fmt.Errorf("malformed data URI")
		}
		contentType = photo[len("data:"):semi]
		photo = photo[semi+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(photo)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode photo payload: %w", err)
	}
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("empty photo payload")
	}
	return raw, contentType, nil
}
