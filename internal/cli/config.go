package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// Environment overrides.
const (
	envStyles = "PVMVIZ_STYLES"
	envMode   = "PVMVIZ_MODE"
	envRedis  = "PVMVIZ_REDIS_ADDR"
)

const configFileName = "config.toml"

// Config holds settings read from the config file and the environment.
// Command-line flags take precedence over both.
type Config struct {
	Styles      string `toml:"styles"`
	Mode        string `toml:"mode"`
	Cache       *bool  `toml:"cache"`
	RedisAddr   string `toml:"redis_addr"`
	URLTemplate string `toml:"url_template"`
	Exceptions  *bool  `toml:"exceptions"`
}

// CacheEnabled reports whether artifact caching is on. It defaults to true.
func (c Config) CacheEnabled() bool { return c.Cache == nil || *c.Cache }

// ShowExceptions reports whether exception paths are highlighted. It
// defaults to true.
func (c Config) ShowExceptions() bool { return c.Exceptions == nil || *c.Exceptions }

// loadConfig reads path as TOML. An empty path means the default location,
// which may be absent; an explicit path must exist.
func loadConfig(path string) (Config, error) {
	var cfg Config
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFileName)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown keys %v", path, undecoded)
	}
	return cfg, nil
}

// applyEnv overrides file settings with environment variables.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(envStyles); v != "" {
		c.Styles = v
	}
	if v := getenv(envMode); v != "" {
		c.Mode = v
	}
	if v := getenv(envRedis); v != "" {
		c.RedisAddr = v
	}
}

// config loads the effective file and environment configuration.
func (c *CLI) config() (Config, error) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return Config{}, err
	}
	cfg.applyEnv(c.getenv)
	return cfg, nil
}

// overrideString replaces *dst with the flag value when the flag was set.
func overrideString(cmd *cobra.Command, name string, dst *string) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		*dst = f.Value.String()
	}
}

// overrideBoolPtr points *dst at the flag value when the flag was set.
func overrideBoolPtr(cmd *cobra.Command, name string, dst **bool) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		v := f.Value.String() == "true"
		*dst = &v
	}
}
