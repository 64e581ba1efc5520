package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultStatePath is where the workspace snapshot lives unless configured otherwise
	DefaultStatePath = ".pairide/state.json"
	// DefaultConfigPath is the optional YAML config file
	DefaultConfigPath = ".pairide/config.yaml"
	// DefaultPreviewLimit is the number of rows previewed when no limit is given
	DefaultPreviewLimit = 5

	envPrefix = "PAIRIDE"
)

// ExecutionConfig tunes the execution engine
type ExecutionConfig struct {
	MaxSteps uint64        `yaml:"max_steps"`
	Timeout  time.Duration `yaml:"timeout"`
}

// PreviewConfig tunes dataset previews
type PreviewConfig struct {
	DefaultLimit int `yaml:"default_limit"`
}

// Config is the resolved runtime configuration
type Config struct {
	StatePath string          `yaml:"state"`
	Store     string          `yaml:"store"`
	AutoSave  bool            `yaml:"auto_save"`
	Execution ExecutionConfig `yaml:"execution"`
	Preview   PreviewConfig   `yaml:"preview"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	return Config{
		StatePath: DefaultStatePath,
		Store:     StoreDriverJSON,
		AutoSave:  true,
		Preview:   PreviewConfig{DefaultLimit: DefaultPreviewLimit},
	}
}

// flagKeys maps command-line flags onto config keys
var flagKeys = map[string]string{
	"state":       "state",
	"store":       "store",
	"max-steps":   "execution.max_steps",
	"timeout":     "execution.timeout",
	"no-autosave": "",
}

// LoadConfig resolves configuration from defaults, the optional YAML file at path,
// PAIRIDE_* environment variables and explicitly set flags, in increasing priority.
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("state", cfg.StatePath)
	v.SetDefault("store", cfg.Store)
	v.SetDefault("auto_save", cfg.AutoSave)
	v.SetDefault("execution.max_steps", cfg.Execution.MaxSteps)
	v.SetDefault("execution.timeout", cfg.Execution.Timeout)
	v.SetDefault("preview.default_limit", cfg.Preview.DefaultLimit)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		LogDebug("config loaded", "path", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if name == "no-autosave" {
				v.Set("auto_save", f.Value.String() != "true")
				continue
			}
			v.Set(key, f.Value.String())
		}
	}

	cfg.StatePath = v.GetString("state")
	cfg.Store = strings.ToLower(v.GetString("store"))
	cfg.AutoSave = v.GetBool("auto_save")
	cfg.Execution.MaxSteps = v.GetUint64("execution.max_steps")
	cfg.Execution.Timeout = v.GetDuration("execution.timeout")
	cfg.Preview.DefaultLimit = v.GetInt("preview.default_limit")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the workspace cannot run with
func (c Config) Validate() error {
	if c.StatePath == "" {
		return &ValidationError{Op: "load config", Reason: "state path must not be empty"}
	}
	switch c.Store {
	case StoreDriverJSON, StoreDriverSQLite:
	default:
		return &ValidationError{Op: "load config", Reason: fmt.Sprintf("unsupported store %q (supported: json, sqlite)", c.Store)}
	}
	if c.Execution.Timeout < 0 {
		return &ValidationError{Op: "load config", Reason: "execution.timeout must not be negative"}
	}
	return nil
}

// WriteConfig writes cfg as YAML, refusing to overwrite an existing file
func WriteConfig(path string, cfg Config) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
