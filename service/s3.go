package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PosterContentTypes maps accepted poster MIME types to file extensions.
var PosterContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

const posterCacheControl = "private, max-age=86400"

type S3Options struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint points at an S3-compatible server such as MinIO. Empty means AWS.
	Endpoint string
}

// S3Service stores movie posters in a single bucket.
type S3Service struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewS3Service(ctx context.Context, o S3Options) (*S3Service, error) {
	if o.Bucket == "" {
		return nil, errors.New("AWS_S3_BUCKET is required")
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKeyID != "" && o.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	})
	return &S3Service{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  o.Bucket,
	}, nil
}

// posterKey returns posters/<movie id>/<random><ext>; a fresh name per upload
// keeps cached copies of an old poster from being served for the new one.
func posterKey(movieID, contentType string) (string, error) {
	ext, ok := PosterContentTypes[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("unsupported poster type %q", contentType)
	}
	return "posters/" + movieID + "/" + uuid.NewString() + ext, nil
}

// UploadPoster stores a poster image for movieID and returns its object key.
func (s *S3Service) UploadPoster(ctx context.Context, movieID string, body io.Reader, contentType string) (string, error) {
	key, err := posterKey(movieID, contentType)
	if err != nil {
		return "", err
	}
	in := &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(posterCacheControl),
		Metadata:     map[string]string{"movie-id": movieID},
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("upload poster %s: %w", key, err)
	}
	return key, nil
}

// Delete removes a poster object. Deleting a missing key is not an error.
func (s *S3Service) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete poster %s: %w", key, err)
	}
	return nil
}

// PresignedGetURL returns a URL that serves the poster for expiry without credentials.
func (s *S3Service) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign poster %s: %w", key, err)
	}
	return req.URL, nil
}
