// Package config loads agentmd settings from .agentmd.yaml and AGENTMD_*
// environment variables. Everything here is a default that command-line
// flags can still override.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for agentmd
type Config struct {
	SkipSymlinks bool         `mapstructure:"skip_symlinks"`
	AutoConfirm  bool         `mapstructure:"auto_confirm"`
	Update       UpdateConfig `mapstructure:"update"`
}

// UpdateConfig controls the best-effort release check.
type UpdateConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

var defaultConfig = Config{
	SkipSymlinks: false,
	AutoConfirm:  false,
	Update: UpdateConfig{
		Enabled: true,
		Timeout: 2 * time.Second,
	},
}

// Load reads configuration for a target root. Search order: the target
// root itself, then $HOME. A missing config file is not an error; defaults
// apply.
func Load(targetRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("skip_symlinks", defaultConfig.SkipSymlinks)
	v.SetDefault("auto_confirm", defaultConfig.AutoConfirm)
	v.SetDefault("update.enabled", defaultConfig.Update.Enabled)
	v.SetDefault("update.timeout", defaultConfig.Update.Timeout)

	v.SetConfigName(".agentmd")
	v.SetConfigType("yaml")
	v.AddConfigPath(targetRoot)
	v.AddConfigPath("$HOME")

	v.SetEnvPrefix("AGENTMD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; defaults and environment still apply.
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}
	return &config, nil
}
