// Package storage hands out presigned URLs for PDFs kept in S3-compatible
// object storage, so clients upload and download without streaming through
// the API server.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PresignExpiry is how long presigned URLs stay usable.
const PresignExpiry = 15 * time.Minute

const keyPrefix = "users/"

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
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	now = time.Now
)

type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	Bucket    string
}

type S3Presigner struct {
	cfg Config
}

func NewS3Presigner(cfg Config) *S3Presigner {
	return &S3Presigner{cfg: cfg}
}

// NewKey returns a fresh object key for a PDF owned by userID:
// users/<userID>/<yyyy>/<mm>/<dd>/<uuid>.pdf
func NewKey(userID string) string {
	d := now().UTC()
	return fmt.Sprintf("%s%s/%04d/%02d/%02d/%s.pdf", keyPrefix, userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

// IsKey reports whether ref is an object key rather than an external URL.
func IsKey(ref string) bool {
	return strings.HasPrefix(ref, keyPrefix)
}

// IsOwnedKey reports whether key lives under userID's own prefix.
func IsOwnedKey(key, userID string) bool {
	if userID == "" || strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(key, keyPrefix+userID+"/")
}

func (p *S3Presigner) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.cfg.AccessKey,
			p.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if p.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(p.cfg.Endpoint)
			// MinIO and friends serve buckets under the path, not a subdomain
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// PresignPut returns a new object key for userID and a URL the client can PUT
// the file to.
func (p *S3Presigner) PresignPut(ctx context.Context, userID string) (string, string, error) {
	presignClient, err := p.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := p.cfg.Bucket
	key := NewKey(userID)
	contentType := "application/pdf"

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

func (p *S3Presigner) PresignGet(ctx context.Context, key string) (string, error) {
	presignClient, err := p.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := p.cfg.Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
