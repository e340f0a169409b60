// Package s3 keeps run artifacts in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
	"uistudio/internal/infrastructure/metrics"
)

const (
	storeName     = "s3"
	previewKey    = "preview.html"
	manifestKey   = "manifest.json"
	filesPrefix   = "files/"
	defaultRegion = "us-east-1"
)

type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type ArtifactStore struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

var _ repository.ArtifactStore = (*ArtifactStore)(nil)

func NewArtifactStore(cfg Config) (*ArtifactStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultRegion
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &ArtifactStore{client: client, bucket: bucket, region: region}, nil
}

func (s *ArtifactStore) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

type manifest struct {
	RunID     string           `json:"run_id"`
	TechStack entity.TechStack `json:"tech_stack"`
	Paths     []string         `json:"paths"`
}

func (s *ArtifactStore) Put(ctx context.Context, artifact entity.Artifact) error {
	metrics.IncStoreOp(storeName, "put")

	if strings.TrimSpace(artifact.RunID) == "" {
		return fmt.Errorf("run_id is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	m := manifest{RunID: artifact.RunID, TechStack: artifact.TechStack}
	for _, f := range artifact.Files {
		key := filesPrefix + strings.TrimLeft(f.Path, "/")
		if err := s.put(ctx, artifact.RunID, key, []byte(f.Content), contentType(f.Language)); err != nil {
			return err
		}
		m.Paths = append(m.Paths, f.Path)
	}
	if err := s.put(ctx, artifact.RunID, previewKey, []byte(artifact.Preview), "text/html; charset=utf-8"); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return s.put(ctx, artifact.RunID, manifestKey, data, "application/json")
}

func (s *ArtifactStore) Preview(ctx context.Context, runID string) (string, error) {
	metrics.IncStoreOp(storeName, "get")

	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(runID, previewKey), minio.GetObjectOptions{})
	if err != nil {
		return "", err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return "", repository.ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

func (s *ArtifactStore) Delete(ctx context.Context, runID string) error {
	metrics.IncStoreOp(storeName, "delete")

	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	prefix := strings.TrimSpace(runID) + "/"
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return obj.Err
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove %s: %w", obj.Key, err)
		}
	}
	return nil
}

func (s *ArtifactStore) put(ctx context.Context, runID, key string, content []byte, ctype string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectKey(runID, key), bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: ctype,
	})
	if err != nil {
		metrics.IncError("s3_artifact_store", "put_error")
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func objectKey(runID, path string) string {
	return strings.TrimSpace(runID) + "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
}

func contentType(language string) string {
	switch language {
	case "html":
		return "text/html; charset=utf-8"
	case "jsx", "tsx":
		return "text/javascript; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}
