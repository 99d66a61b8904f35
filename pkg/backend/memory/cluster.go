package memory

import (
	"fmt"
	"time"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// cluster is one session handle to an in-memory Backend.
type cluster struct {
	backend   *Backend
	userID    string
	connected bool
}

// seedConfig is the shape of a memory driver configuration file.
//
// Example:
//
//	latency: 5ms
//	pools:
//	  - name: data
//	    objects:
//	      - oid: greeting
//	        locator: rack1
//	        content: "hello world"
type seedConfig struct {
	Latency time.Duration `mapstructure:"latency"`
	Pools   []struct {
		Name    string `mapstructure:"name"`
		Objects []struct {
			Oid     string `mapstructure:"oid"`
			Locator string `mapstructure:"locator"`
			Content string `mapstructure:"content"`
		} `mapstructure:"objects"`
	} `mapstructure:"pools"`
}

// ConfReadFile seeds the backend from a YAML configuration file. An empty
// path is a successful no-op.
func (c *cluster) ConfReadFile(path string) backend.Status {
	if path == "" {
		return backend.StatusOK
	}

	cfg, err := readSeedConfig(path)
	if err != nil {
		return backend.StatusInvalid
	}

	if cfg.Latency > 0 {
		c.backend.SetLatency(cfg.Latency)
	}

	now := time.Now()
	for _, pool := range cfg.Pools {
		c.backend.CreatePool(pool.Name)
		for _, obj := range pool.Objects {
			c.backend.Put(pool.Name, obj.Locator, obj.Oid, []byte(obj.Content), now)
		}
	}

	return backend.StatusOK
}

func readSeedConfig(path string) (*seedConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var cfg seedConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &cfg,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	return &cfg, nil
}

// Connect establishes the session.
func (c *cluster) Connect() backend.Status {
	c.backend.mu.RLock()
	st := c.backend.connectStatus
	c.backend.mu.RUnlock()

	if !st.OK() {
		return st
	}

	c.connected = true
	return backend.StatusOK
}

// Shutdown tears down a connected session.
func (c *cluster) Shutdown() {
	c.backend.shutdownCalls.Add(1)
	c.connected = false
}

// Release frees a never-connected session handle.
func (c *cluster) Release() {
	c.backend.releaseCalls.Add(1)
}

// OpenPool opens an I/O handle scoped to the named pool.
func (c *cluster) OpenPool(name string) (backend.Pool, backend.Status) {
	if !c.backend.poolExists(name) {
		return nil, backend.StatusNotFound
	}

	return &pool{backend: c.backend, name: name}, backend.StatusOK
}
