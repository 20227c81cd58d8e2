package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the base name of the configuration file, without extension.
const FileName = "feedsync"

// Config is the content of the configuration file.
type Config struct {
	Account  Account   `mapstructure:"account" yaml:"account"`
	Database string    `mapstructure:"database" yaml:"database,omitempty"`
	Log      LogConfig     `mapstructure:"log" yaml:"log,omitempty"`
	History  HistoryConfig `mapstructure:"history" yaml:"history,omitempty"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level,omitempty"`
}

// HistoryConfig controls the exchange journal.
type HistoryConfig struct {
	Disabled bool `mapstructure:"disabled" yaml:"disabled,omitempty"`
	// Keep is the number of entries kept after each command. Zero keeps all.
	Keep int `mapstructure:"keep" yaml:"keep,omitempty" validate:"min=0"`
}

var envKeys = []string{
	"account.host",
	"account.port",
	"account.install_path",
	"account.username",
	"account.password",
	"account.user_agent",
	"account.ignore_tls_errors",
	"database",
	"history.disabled",
	"history.keep",
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("account.use_ssl", true)
	v.SetDefault("account.timeout", "30s")
	v.SetDefault("log.level", "warn")
	v.SetDefault("history.keep", 1000)
}

// Init points v at the configuration file and environment. An explicit file
// wins over the search path. A missing file is not an error.
func Init(v *viper.Viper, file string) error {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if dir, err := DefaultDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("FEEDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Decode unmarshals v into a Config.
func Decode(v *viper.Viper) (*Config, error) {
	hooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hooks)); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// LoadAccount decodes v and returns its validated account.
func LoadAccount(v *viper.Viper) (*Account, error) {
	cfg, err := Decode(v)
	if err != nil {
		return nil, err
	}
	if cfg.Account.Host == "" {
		return nil, ErrNoAccount
	}
	if err := cfg.Account.Validate(); err != nil {
		return nil, err
	}
	return &cfg.Account, nil
}

// DefaultDir returns $HOME/.config/feedsync.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", FileName), nil
}

// Save writes cfg to path as YAML. The file holds a password and is only
// readable by its owner.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Read loads a Config previously written by Save.
func Read(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoAccount
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}
