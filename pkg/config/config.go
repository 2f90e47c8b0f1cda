// Package config resolves hooksmith settings from defaults, an optional
// project file, and HOOKSMITH_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds all configuration for hooksmith
type Config struct {
	Generate GenerateConfig `mapstructure:"generate"`
	Merge    MergeConfig    `mapstructure:"merge"`
	Store    StoreConfig    `mapstructure:"store"`
}

// GenerateConfig holds generator defaults
type GenerateConfig struct {
	DefaultPriority int `mapstructure:"default_priority"`
	CommandTimeout  int `mapstructure:"command_timeout"`
}

// MergeConfig holds merge behavior defaults
type MergeConfig struct {
	DefaultPolicy string `mapstructure:"default_policy"`
}

// StoreConfig locates the persisted configuration document
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

var defaultConfig = Config{
	Generate: GenerateConfig{
		DefaultPriority: 100,
		CommandTimeout:  60,
	},
	Merge: MergeConfig{
		DefaultPolicy: "interactive",
	},
	Store: StoreConfig{
		Path: "", // resolved to $HOME/.hooksmith/hooks.json when empty
	},
}

// DefaultStorePath resolves the default persisted store location under
// the user's home directory.
func DefaultStorePath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".hooksmith", "hooks.json"), nil
}

// LoadConfig loads configuration from defaults, config file, and environment
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("generate.default_priority", defaultConfig.Generate.DefaultPriority)
	v.SetDefault("generate.command_timeout", defaultConfig.Generate.CommandTimeout)
	v.SetDefault("merge.default_policy", defaultConfig.Merge.DefaultPolicy)
	v.SetDefault("store.path", defaultConfig.Store.Path)

	// Configuration file search paths
	v.SetConfigName(".hooksmith")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	// Environment variables
	v.SetEnvPrefix("HOOKSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; fall back to defaults
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	if config.Store.Path == "" {
		path, err := DefaultStorePath()
		if err != nil {
			return nil, err
		}
		config.Store.Path = path
	}

	return &config, nil
}

// EnsureStoreDir creates the parent directory of the store path when it
// does not exist yet.
func EnsureStoreDir(storePath string) error {
	dir := filepath.Dir(storePath)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
