// Package config resolves souljournal settings from flags, environment,
// config file and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/csheth/souljournal/internal/analysis"
	"github.com/csheth/souljournal/internal/storage"
)

// DefaultEndpoint is the analysis endpoint baked in at build time:
//
//	go build -ldflags "-X github.com/csheth/souljournal/internal/config.DefaultEndpoint=https://..."
var DefaultEndpoint = ""

const (
	EnvPrefix = "SOULJOURNAL"
	AppDir    = ".souljournal"
	FileName  = "config.yaml"

	LogFileName = "souljournal.log"
)

type Config struct {
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Backend  string        `yaml:"backend" mapstructure:"backend"`
	// Timeout is in seconds; 0 selects the analysis backend's default.
	Timeout  int           `yaml:"timeout" mapstructure:"timeout"`
	Storage  StorageConfig `yaml:"storage" mapstructure:"storage"`
	Ollama   OllamaConfig  `yaml:"ollama" mapstructure:"ollama"`
	OpenAI   OpenAIConfig  `yaml:"openai" mapstructure:"openai"`
	Log      LogConfig     `yaml:"log" mapstructure:"log"`
}

type StorageConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
}

type OllamaConfig struct {
	Host  string `yaml:"host" mapstructure:"host"`
	Model string `yaml:"model" mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

// Dir returns ~/.souljournal, or a relative fallback when there is no home.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return AppDir
	}
	return filepath.Join(home, AppDir)
}

// Default returns the built-in configuration.
func Default() Config {
	dir := Dir()
	return Config{
		Endpoint: DefaultEndpoint,
		Backend:  analysis.BackendHTTP,
		Timeout:  0,
		Storage: StorageConfig{
			Backend: storage.BackendFile,
			Dir:     dir,
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "ministral-3:latest",
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers every key so env overrides work without a config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("ollama.host", d.Ollama.Host)
	v.SetDefault("ollama.model", d.Ollama.Model)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", d.OpenAI.BaseURL)
	v.SetDefault("openai.model", d.OpenAI.Model)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// BindEnv wires SOULJOURNAL_* variables, mapping nested keys with
// underscores (storage.dir -> SOULJOURNAL_STORAGE_DIR).
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes the resolved settings from v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if cfg.Timeout < 0 {
		return Config{}, fmt.Errorf("timeout must not be negative, got %d", cfg.Timeout)
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = Dir()
	}
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	// Logs live next to the history unless pointed elsewhere.
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.Storage.Dir, LogFileName)
	}
	cfg.Log.File = expandHome(cfg.Log.File)
	return cfg, nil
}

// Analysis converts the settings into an analyzer configuration.
func (c Config) Analysis() analysis.Config {
	return analysis.Config{
		Backend:       c.Backend,
		Endpoint:      c.Endpoint,
		Timeout:       time.Duration(c.Timeout) * time.Second,
		OllamaHost:    c.Ollama.Host,
		OllamaModel:   c.Ollama.Model,
		OpenAIKey:     c.OpenAI.APIKey,
		OpenAIBaseURL: c.OpenAI.BaseURL,
		OpenAIModel:   c.OpenAI.Model,
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
