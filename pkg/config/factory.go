package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/iain-buclaw-sociomantic/go-rados/internal/logger"
	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend/badgerdb"
	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend/memory"
	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend/s3"
)

// CreateBackend creates a backend driver based on configuration.
//
// The Type field selects the driver; the matching type-specific option map
// is decoded and passed to the driver's constructor.
//
// Supported types:
//   - "memory": in-process storage (pkg/backend/memory)
//   - "s3": Amazon S3 or compatible storage (pkg/backend/s3)
//   - "badgerdb": embedded BadgerDB storage (pkg/backend/badgerdb)
//
// Returns the driver and a cleanup function releasing driver-owned
// resources; the cleanup must be called once all sessions are done.
func CreateBackend(cfg *BackendConfig) (backend.Interface, func() error, error) {
	switch cfg.Type {
	case "memory":
		return createMemoryBackend(cfg.Memory)
	case "s3":
		return createS3Backend(cfg.S3)
	case "badgerdb":
		return createBadgerBackend(cfg.Badger)
	default:
		return nil, nil, fmt.Errorf("unknown backend type: %q (supported: memory, s3, badgerdb)", cfg.Type)
	}
}

// noCleanup is returned for drivers without driver-owned resources.
func noCleanup() error { return nil }

func createMemoryBackend(options map[string]any) (backend.Interface, func() error, error) {
	type MemoryBackendOptions struct {
		Latency time.Duration `mapstructure:"latency"`
	}

	var opts MemoryBackendOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &opts,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return nil, nil, fmt.Errorf("failed to decode memory backend options: %w", err)
	}

	be := memory.New()
	if opts.Latency > 0 {
		be.SetLatency(opts.Latency)
	}

	return be, noCleanup, nil
}

func createS3Backend(options map[string]any) (backend.Interface, func() error, error) {
	type S3BackendOptions struct {
		Region          string        `mapstructure:"region"`
		Endpoint        string        `mapstructure:"endpoint"`
		AccessKeyID     string        `mapstructure:"access_key_id"`
		SecretAccessKey string        `mapstructure:"secret_access_key"`
		MaxRetries      int           `mapstructure:"max_retries"`
		RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	}

	var opts S3BackendOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &opts,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return nil, nil, fmt.Errorf("failed to decode s3 backend options: %w", err)
	}

	be := s3.New(s3.Options{
		Region:          opts.Region,
		Endpoint:        opts.Endpoint,
		AccessKeyID:     opts.AccessKeyID,
		SecretAccessKey: opts.SecretAccessKey,
		MaxRetries:      opts.MaxRetries,
		RequestTimeout:  opts.RequestTimeout,
	})

	logger.Info("S3 backend initialized: region=%s, endpoint=%s", opts.Region, opts.Endpoint)

	return be, noCleanup, nil
}

func createBadgerBackend(options map[string]any) (backend.Interface, func() error, error) {
	type BadgerBackendOptions struct {
		Path       string `mapstructure:"path"`
		InMemory   bool   `mapstructure:"in_memory"`
		SyncWrites bool   `mapstructure:"sync_writes"`
	}

	var opts BadgerBackendOptions
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, nil, fmt.Errorf("failed to decode badgerdb backend options: %w", err)
	}

	be, err := badgerdb.New(badgerdb.Options{
		Path:       opts.Path,
		InMemory:   opts.InMemory,
		SyncWrites: opts.SyncWrites,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create badgerdb backend: %w", err)
	}

	logger.Info("BadgerDB backend initialized: path=%s, in_memory=%v", opts.Path, opts.InMemory)

	return be, be.Close, nil
}
