// Package s3 implements a storage backend on Amazon S3 or S3-compatible
// object storage (MinIO, Localstack, Cubbit DS3, etc.).
//
// Mapping onto the backend contract:
//   - Pool: an S3 bucket
//   - Object id: the object key within the bucket
//   - Locator key: a key-prefix namespace — an object stored with locator
//     "rack1" lives under "rack1/<oid>", so a lookup with the wrong locator
//     does not find it, matching the other drivers
//   - Stat: HeadObject (Content-Length + Last-Modified)
//   - Read: ranged GetObject
//
// Asynchronous operations run on driver goroutines against the same client;
// the completion token is the synchronization point.
package s3

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// Options configures an S3 backend. Every field can be overridden per
// session through Cluster.ConfReadFile.
type Options struct {
	// Region is the AWS region. Required unless the default credential
	// chain provides one.
	Region string

	// Endpoint is a custom endpoint URL for S3-compatible storage.
	// When set, path-style addressing is forced.
	Endpoint string

	// AccessKeyID and SecretAccessKey select static credentials. When
	// empty, the default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// MaxRetries is the number of attempts for transient failures.
	// Defaults to 10.
	MaxRetries int

	// RequestTimeout bounds each backend call. Defaults to 30s.
	RequestTimeout time.Duration
}

func (o *Options) applyDefaults() {
	if o.MaxRetries == 0 {
		o.MaxRetries = 10
	}
	if o.RequestTimeout == 0 {
		o.RequestTimeout = 30 * time.Second
	}
}

// Backend is an S3-backed cluster fabric.
type Backend struct {
	opts Options
}

// New creates an S3 backend with the given base options. No network calls
// are made until a session connects.
func New(opts Options) *Backend {
	opts.applyDefaults()
	return &Backend{opts: opts}
}

// Name returns the driver name.
func (b *Backend) Name() string {
	return "s3"
}

// Version returns the driver implementation version.
func (b *Backend) Version() backend.Version {
	return backend.Version{Major: 1, Minor: 0, Extra: 0}
}

// NewCluster allocates an unconnected session handle carrying a copy of the
// backend options.
func (b *Backend) NewCluster(userID string) (backend.Cluster, backend.Status) {
	return &cluster{opts: b.opts}, backend.StatusOK
}

// buildClient constructs the AWS SDK client from resolved options.
func buildClient(ctx context.Context, opts Options) (*s3.Client, error) {
	var configOptions []func(*awsConfig.LoadOptions) error

	if opts.Region != "" {
		configOptions = append(configOptions, awsConfig.WithRegion(opts.Region))
	}

	// Custom endpoint for S3-compatible storage (MinIO, Localstack, etc.)
	if opts.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               opts.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, otherwise the default credential chain
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := opts.MaxRetries
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	cfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// Path-style addressing for compatibility with MinIO/Localstack
		if opts.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	return client, nil
}
