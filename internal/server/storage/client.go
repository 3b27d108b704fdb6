package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sony/gobreaker"
)

// API is the subset of *s3.Client used by Client.
type API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Presigner is the subset of *s3.PresignClient used by Client.
type Presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Uploader is the subset of *manager.Uploader used by Client.
type Uploader interface {
	Upload(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Observer receives one call per finished operation and one per retry.
// outcome is "ok" or the Class of the final error.
type Observer interface {
	ObserveOperation(op, outcome string)
	ObserveRetry(op string)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, string) {}
func (nopObserver) ObserveRetry(string)             {}

// Client performs object operations against one bucket.
type Client struct {
	api           API
	presigner     Presigner
	uploader      Uploader
	httpClient    *http.Client
	bucket        string
	presignExpiry time.Duration
	retry         RetryPolicy
	observer      Observer
	breaker       *gobreaker.CircuitBreaker
}

// Option customises a Client.
type Option func(*Client)

// WithPresignExpiry sets how long presigned upload URLs stay valid.
func WithPresignExpiry(d time.Duration) Option {
	return func(c *Client) { c.presignExpiry = d }
}

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithObserver reports operation outcomes to o.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithHTTPClient sets the client used for presigned PUTs.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBreaker opens a circuit after failures consecutive store failures;
// calls then fail fast with ClassUnavailable until timeout has passed.
// Not-found and conflict outcomes count as successes. failures == 0
// disables the breaker.
func WithBreaker(name string, failures uint32, timeout time.Duration) Option {
	return func(c *Client) {
		if failures == 0 {
			c.breaker = nil
			return
		}
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				class := Classify(err)
				return class == ClassNotFound || class == ClassConflict
			},
		})
	}
}

const defaultPresignExpiry = time.Hour

// package-level seams for tests
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
	newS3PresignClient    = func(c *s3.Client) Presigner { return s3.NewPresignClient(c) }
	newS3Uploader         = func(c *s3.Client) Uploader { return manager.NewUploader(c) }
)

// NewClient validates s and builds a path-style S3 client with static
// credentials. The SDK retryer is disabled; RetryPolicy is the only retry.
func NewClient(ctx context.Context, s Settings, opts ...Option) (*Client, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.Endpoint)
		o.UsePathStyle = true
		o.Retryer = aws.NopRetryer{}
	})

	return newClient(api, newS3PresignClient(api), newS3Uploader(api), s.Bucket, opts...), nil
}

func newClient(api API, presigner Presigner, uploader Uploader, bucket string, opts ...Option) *Client {
	c := &Client{
		api:           api,
		presigner:     presigner,
		uploader:      uploader,
		httpClient:    http.DefaultClient,
		bucket:        bucket,
		presignExpiry: defaultPresignExpiry,
		retry:         DefaultRetryPolicy,
		observer:      nopObserver{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Bucket returns the bucket the client operates on.
func (c *Client) Bucket() string {
	return c.bucket
}
