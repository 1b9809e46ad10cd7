package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sony/gobreaker/v2"

	"travel-blog-server/config"
	"travel-blog-server/logging"
	"travel-blog-server/metrics"
)

// ErrForeignURL is returned by Delete for URLs this store did not produce.
var ErrForeignURL = errors.New("storage: url does not belong to this store")

// ObjectStore uploads and deletes binary objects addressed by key.
type ObjectStore interface {
	// Put stores body under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) (string, error)
	// Delete removes the object behind a URL previously returned by Put.
	Delete(ctx context.Context, objectURL string) error
}

type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	publicRead    bool
	breaker       *gobreaker.CircuitBreaker[any]
}

func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(baseURL, "/"),
		publicRead:    cfg.PublicReadACL,
		breaker:       newBreaker("object-storage"),
	}, nil
}

// newBreaker opens after five consecutive failures so a storage outage fails
// requests fast instead of stalling them. Calls are never retried.
func newBreaker(name string) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.ObjectStorageBreakerState.Set(float64(to))
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Object storage circuit breaker changed state")
		},
	})
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}
	if s.publicRead {
		input.ACL = types.ObjectCannedACLPublicRead
	}
	_, err := s.breaker.Execute(func() (any, error) {
		return s.client.PutObject(ctx, input)
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return objectURL(s.publicBaseURL, key), nil
}

func (s *S3Store) Delete(ctx context.Context, objectURL string) error {
	key, err := keyFromURL(s.publicBaseURL, objectURL)
	if err != nil {
		return err
	}
	_, err = s.breaker.Execute(func() (any, error) {
		return s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func objectURL(baseURL, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return baseURL + "/" + strings.Join(segments, "/")
}

func keyFromURL(baseURL, objectURL string) (string, error) {
	prefix := baseURL + "/"
	if !strings.HasPrefix(objectURL, prefix) {
		return "", ErrForeignURL
	}
	key, err := url.PathUnescape(strings.TrimPrefix(objectURL, prefix))
	if err != nil || key == "" {
		return "", ErrForeignURL
	}
	return key, nil
}
