package badgerdb

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// seedConfig is the shape of a badgerdb driver configuration file, matching
// the memory driver's seed schema:
//
//	pools:
//	  - name: data
//	    objects:
//	      - oid: greeting
//	        locator: rack1
//	        content: "hello world"
type seedConfig struct {
	Pools []struct {
		Name    string `mapstructure:"name"`
		Objects []struct {
			Oid     string `mapstructure:"oid"`
			Locator string `mapstructure:"locator"`
			Content string `mapstructure:"content"`
		} `mapstructure:"objects"`
	} `mapstructure:"pools"`
}

func readSeedConfig(path string) (*seedConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var cfg seedConfig
	if err := mapstructure.Decode(v.AllSettings(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	return &cfg, nil
}
