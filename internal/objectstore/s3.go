// Package objectstore uploads scan photos to S3-compatible object storage
// (AWS S3, MinIO, Supabase storage) and builds their public URLs.
//
// Uploads use a presigned PUT so the same code path works against any
// endpoint that speaks SigV4.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/antiquary/internal/netx"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	putPresigned = netx.PutPresigned
)

// ErrNotConfigured is returned by Upload when no bucket is set.
var ErrNotConfigured = errors.New("object storage not configured")

// Config describes the bucket and credentials.
type Config struct {
	Region        string
	AccessKey     string
	SecretKey     string
	BaseEndpoint  string // empty means AWS
	Bucket        string
	PublicBaseURL string // optional CDN or public bucket prefix
	PresignExpiry time.Duration
}

type S3Store struct {
	cfg Config
}

func NewS3Store(cfg Config) *S3Store {
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = 15 * time.Minute
	}
	return &S3Store{cfg: cfg}
}

func (s *S3Store) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.AccessKey,
			s.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// Upload stores body under key and returns the object's public URL.
func (s *S3Store) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if s.cfg.Bucket == "" {
		return "", ErrNotConfigured
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("presign client: %w", err)
	}

	bucket := s.cfg.Bucket
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.cfg.PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}

	if err := putPresigned(ctx, req.URL, body, contentType); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}

	return s.PublicURL(key), nil
}

// PublicURL returns the address the object under key is served from.
func (s *S3Store) PublicURL(key string) string {
	key = strings.TrimLeft(key, "/")
	escaped := (&url.URL{Path: key}).EscapedPath()

	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + escaped
	}
	if s.cfg.BaseEndpoint != "" {
		return strings.TrimRight(s.cfg.BaseEndpoint, "/") + "/" + s.cfg.Bucket + "/" + escaped
	}
	region := s.cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, region, escaped)
}
