// Package storage resolves filmwork media file references on local disk or S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// ErrFileNotFound is returned when a media file reference points nowhere.
var ErrFileNotFound = pkgerrors.NotFound("media file not found")

// Storage locates media files.
type Storage interface {
	Exists(ctx context.Context, key string) (bool, error)
	URL(ctx context.Context, key string) (string, error)
}

// cleanKey normalises a stored reference and rejects keys escaping the root.
func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", pkgerrors.BadRequest("empty media file reference")
	}
	return cleaned, nil
}

// LocalStorage serves files below a media root under a URL prefix.
type LocalStorage struct {
	basePath  string
	urlPrefix string
	logger    interfaces.Logger
}

// NewLocalStorage creates a local storage rooted at basePath. URLs are built
// as urlPrefix followed by the key.
func NewLocalStorage(basePath, urlPrefix string, logger interfaces.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}

	return &LocalStorage{
		basePath:  basePath,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/") + "/",
		logger:    logger,
	}, nil
}

// Root is the directory media files are served from.
func (s *LocalStorage) Root() string {
	return s.basePath
}

// Exists reports whether the file exists.
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(filepath.Join(s.basePath, filepath.FromSlash(cleaned)))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// URL returns the public URL of an existing file.
func (s *LocalStorage) URL(ctx context.Context, key string) (string, error) {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !exists {
		s.logger.Warn("Media file missing", interfaces.String("key", key))
		return "", ErrFileNotFound
	}

	cleaned, _ := cleanKey(key)
	return s.urlPrefix + (&url.URL{Path: cleaned}).EscapedPath(), nil
}

// S3Storage resolves media files to presigned S3 URLs.
type S3Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	prefix    string
	expiry    time.Duration
	logger    interfaces.Logger
}

// NewS3Storage creates an S3 storage using the default AWS credential chain.
func NewS3Storage(ctx context.Context, bucket, prefix, region string, expiry time.Duration, logger interfaces.Logger) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3StorageFromClient(s3.NewFromConfig(cfg), bucket, prefix, expiry, logger), nil
}

// NewS3StorageFromClient wraps an existing S3 client.
func NewS3StorageFromClient(client *s3.Client, bucket, prefix string, expiry time.Duration, logger interfaces.Logger) *S3Storage {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &S3Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		prefix:    prefix,
		expiry:    expiry,
		logger:    logger,
	}
}

func (s *S3Storage) fullKey(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if s.prefix == "" {
		return cleaned, nil
	}
	return strings.TrimSuffix(s.prefix, "/") + "/" + cleaned, nil
}

// Exists reports whether the object exists.
func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	fullKey, err := s.fullKey(key)
	if err != nil {
		return false, err
	}

	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err == nil {
		return true, nil
	}

	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return false, nil
	}
	return false, fmt.Errorf("failed to head S3 object: %w", err)
}

// URL returns a presigned GET URL for an existing object.
func (s *S3Storage) URL(ctx context.Context, key string) (string, error) {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !exists {
		s.logger.Warn("Media object missing", interfaces.String("key", key), interfaces.String("bucket", s.bucket))
		return "", ErrFileNotFound
	}

	fullKey, _ := s.fullKey(key)
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign S3 URL: %w", err)
	}
	return req.URL, nil
}
