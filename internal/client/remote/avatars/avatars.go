// Package avatars uploads profile photos to S3-compatible object storage
// through presigned PUT URLs.
package avatars

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/eden/internal/client/remote"
	"github.com/dmitrijs2005/eden/internal/netx"
	"github.com/google/uuid"
)

const defaultPresignExpiry = 15 * time.Minute

// Config describes the bucket avatars are written to.
type Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicBaseURL prefixes object keys to build the stored photo URL.
	// Empty means Endpoint/Bucket, or the AWS virtual-hosted address of
	// Bucket when no Endpoint is set.
	PublicBaseURL string
	PresignExpiry time.Duration
}

// Configured reports whether cfg names a bucket to upload to.
func (c Config) Configured() bool {
	return c.Bucket != ""
}

// seams for tests
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Storage presigns and performs avatar uploads.
type Storage struct {
	cfg     Config
	presign *s3.PresignClient
	http    *http.Client
	newKey  func(uid string) string
}

// New builds a Storage. It returns remote.ErrNotConfigured when no bucket is
// set.
func New(ctx context.Context, cfg Config, httpClient *http.Client) (*Storage, error) {
	if !cfg.Configured() {
		return nil, remote.ErrNotConfigured
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = defaultPresignExpiry
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Storage{
		cfg:     cfg,
		presign: s3.NewPresignClient(client),
		http:    httpClient,
		newKey:  ObjectKey,
	}, nil
}

// ObjectKey returns a fresh object key for an avatar of uid.
func ObjectKey(uid string) string {
	return fmt.Sprintf("avatars/%s/%s", uid, uuid.NewString())
}

// PresignUpload returns a new object key for uid and a URL the object can be
// PUT to until the presign expiry.
func (s *Storage) PresignUpload(ctx context.Context, uid, contentType string) (key, url string, err error) {
	key = s.newKey(uid)
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := s.presign.PresignPutObject(ctx, in, s3.WithPresignExpires(s.cfg.PresignExpiry))
	if err != nil {
		return "", "", fmt.Errorf("presign put: %w", err)
	}
	return key, req.URL, nil
}

// Upload stores data as a new avatar of uid and returns its public URL.
func (s *Storage) Upload(ctx context.Context, uid, contentType string, data []byte) (string, error) {
	key, url, err := s.PresignUpload(ctx, uid, contentType)
	if err != nil {
		return "", err
	}
	if err := netx.UploadToPresignedURL(ctx, s.http, url, contentType, data); err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

// PublicURL is the address an uploaded object is served from.
func (s *Storage) PublicURL(key string) string {
	base := s.cfg.PublicBaseURL
	switch {
	case base != "":
	case s.cfg.Endpoint != "":
		base = strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket
	case s.cfg.Region != "":
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.cfg.Bucket, s.cfg.Region)
	default:
		base = fmt.Sprintf("https://%s.s3.amazonaws.com", s.cfg.Bucket)
	}
	return strings.TrimRight(base, "/") + "/" + key
}
