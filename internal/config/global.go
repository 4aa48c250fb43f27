package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Quidge/uvn/internal/pathutil"
	"github.com/Quidge/uvn/internal/uv"
)

// EnvPrefix prefixes every environment variable uvn reads (UVN_DIR, ...).
const EnvPrefix = "UVN"

// ErrInvalid is returned when a config value fails validation.
var ErrInvalid = errors.New("invalid configuration")

// ErrExists is returned by WriteTemplate when the file already exists.
var ErrExists = errors.New("config file already exists")

// Path returns the path to the configuration file. UVN_CONFIG overrides the
// default ~/.config/uvn/config.yaml.
func Path() (string, error) {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return pathutil.Absolute(p)
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "uvn", "config.yaml"), nil
}

// Load layers defaults, the config file at path, environment variables and
// flags into a Config. path may be empty to use Path(). flags maps config
// keys to flags; flags only take effect when set on the command line.
// A missing config file is not an error.
func Load(path string, flags map[string]*pflag.Flag) (Config, error) {
	v := viper.New()
	v.SetDefault(KeyDir, DefaultDir)
	v.SetDefault(KeyPython, "")
	v.SetDefault(KeyLinkMode, "")
	v.SetDefault(KeyUV, DefaultUV)
	v.SetDefault(KeyShell, "")
	v.SetDefault(KeyJournal, true)
	v.SetDefault(KeyJournalPath, "")

	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return Config{}, err
		}
	}
	if pathutil.ExistsAndIsFile(path) {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// uv's own variables are honoured so uvn behaves like plain uv.
	if err := v.BindEnv(KeyPython, "UVN_PYTHON", "UV_PYTHON"); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv(KeyLinkMode, "UVN_LINK_MODE", "UV_LINK_MODE"); err != nil {
		return Config{}, err
	}

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return Config{}, fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	return finalize(cfg)
}

// finalize expands paths and validates values.
func finalize(cfg Config) (Config, error) {
	dir, err := pathutil.Absolute(cfg.Dir)
	if err != nil {
		return Config{}, fmt.Errorf("%w: dir: %w", ErrInvalid, err)
	}
	cfg.Dir = dir

	if !uv.IsValidLinkMode(cfg.LinkMode) {
		return Config{}, fmt.Errorf("%w: link_mode %q (valid: %v)", ErrInvalid, cfg.LinkMode, uv.LinkModes)
	}

	if cfg.UV == "" {
		cfg.UV = DefaultUV
	}

	if cfg.JournalPath != "" {
		cfg.JournalPath, err = pathutil.Absolute(cfg.JournalPath)
		if err != nil {
			return Config{}, fmt.Errorf("%w: journal_path: %w", ErrInvalid, err)
		}
	}

	return cfg, nil
}

// YAML renders cfg as a YAML document.
func (c Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// WriteTemplate writes the commented default config to path, creating parent
// directories. An existing file is only replaced when force is set.
func WriteTemplate(path string, force bool) error {
	if !force && pathutil.Exists(path) {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
