package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/jeevamithra/internal/domain/chat"
)

// R2Config locates an S3-compatible bucket (Cloudflare R2, MinIO).
type R2Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	PublicBaseURL string
	PresignTTL    time.Duration
}

// R2Storage archives chat uploads in an S3-compatible bucket.
type R2Storage struct {
	client     *minio.Client
	cfg        R2Config
	logger     *slog.Logger
	bucketOnce sync.Once
	bucketErr  error
}

// NewR2Storage constructs the storage adapter.
func NewR2Storage(cfg R2Config, logger *slog.Logger) (*R2Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object storage bucket is required")
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 24 * time.Hour
	}
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "http://"),
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init r2 client: %w", err)
	}
	return &R2Storage{client: client, cfg: cfg, logger: logger.With("component", "blobstore.r2")}, nil
}

func (s *R2Storage) ensureBucket(ctx context.Context) error {
	s.bucketOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
		if err == nil && exists {
			return
		}
		err = s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			s.bucketErr = err
		}
	})
	return s.bucketErr
}

// Put uploads data and returns a URL for it: under PublicBaseURL when one is
// configured, a presigned GET otherwise.
func (s *R2Storage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket %s: %w", s.cfg.Bucket, err)
	}
	info, err := s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: len(data) < 5*1024*1024,
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	s.logger.Debug("object stored", "key", key, "size", info.Size, "etag", info.ETag)

	if base := strings.TrimRight(s.cfg.PublicBaseURL, "/"); base != "" {
		return base + "/" + key, nil
	}
	signed, err := s.client.PresignedGetObject(ctx, s.cfg.Bucket, key, s.cfg.PresignTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return signed.String(), nil
}

var _ chat.ImageStore = (*R2Storage)(nil)

// sanitizeEndpoint strips the scheme and any path; minio.New takes host[:port].
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	host, _, _ := strings.Cut(raw, "/")
	return host
}
