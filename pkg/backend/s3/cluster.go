package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// cluster is one session handle to an S3 backend. Options are resolved per
// session (base options from the Backend, overridden by ConfReadFile), and
// the SDK client is built at Connect.
type cluster struct {
	opts   Options
	client *s3.Client
}

// fileOptions is the shape of an s3 driver configuration file.
//
// Example:
//
//	region: eu-west-1
//	endpoint: http://localhost:9000
//	access_key_id: minioadmin
//	secret_access_key: minioadmin
//	max_retries: 5
//	request_timeout: 10s
type fileOptions struct {
	Region          string        `mapstructure:"region"`
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// ConfReadFile overrides session options from a YAML configuration file.
// An empty path is a successful no-op.
func (c *cluster) ConfReadFile(path string) backend.Status {
	if path == "" {
		return backend.StatusOK
	}

	fileOpts, err := readFileOptions(path)
	if err != nil {
		return backend.StatusInvalid
	}

	if fileOpts.Region != "" {
		c.opts.Region = fileOpts.Region
	}
	if fileOpts.Endpoint != "" {
		c.opts.Endpoint = fileOpts.Endpoint
	}
	if fileOpts.AccessKeyID != "" {
		c.opts.AccessKeyID = fileOpts.AccessKeyID
	}
	if fileOpts.SecretAccessKey != "" {
		c.opts.SecretAccessKey = fileOpts.SecretAccessKey
	}
	if fileOpts.MaxRetries != 0 {
		c.opts.MaxRetries = fileOpts.MaxRetries
	}
	if fileOpts.RequestTimeout != 0 {
		c.opts.RequestTimeout = fileOpts.RequestTimeout
	}

	return backend.StatusOK
}

func readFileOptions(path string) (*fileOptions, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var opts fileOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &opts,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &opts, nil
}

// Connect builds the SDK client from the resolved options and verifies the
// session by listing buckets.
func (c *cluster) Connect() backend.Status {
	ctx, cancel := c.requestContext()
	defer cancel()

	client, err := buildClient(ctx, c.opts)
	if err != nil {
		return backend.StatusInvalid
	}

	if _, err := client.ListBuckets(ctx, &s3.ListBucketsInput{}); err != nil {
		return statusFromError(err)
	}

	c.client = client
	return backend.StatusOK
}

// Shutdown tears down a connected session. The SDK client holds no
// resources beyond pooled connections, so dropping it is sufficient.
func (c *cluster) Shutdown() {
	c.client = nil
}

// Release frees a never-connected session handle.
func (c *cluster) Release() {
}

// OpenPool verifies the bucket exists and returns an I/O handle scoped to it.
func (c *cluster) OpenPool(name string) (backend.Pool, backend.Status) {
	ctx, cancel := c.requestContext()
	defer cancel()

	if _, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &name}); err != nil {
		return nil, statusFromError(err)
	}

	return &pool{cluster: c, bucket: name}, backend.StatusOK
}

func (c *cluster) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.opts.RequestTimeout)
}
