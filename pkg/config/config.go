package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/andrew/ragchat/pkg/backend"
	"github.com/andrew/ragchat/pkg/logging"
)

// UI modes
const (
	UIAuto    = "auto"
	UITUI     = "tui"
	UIConsole = "console"
)

// Config holds everything the chat widget needs at startup
type Config struct {
	BaseURL  string        `yaml:"base_url" env:"RAGCHAT_BASE_URL"`
	Timeout  time.Duration `yaml:"timeout" env:"RAGCHAT_TIMEOUT"`
	Locale   string        `yaml:"locale" env:"RAGCHAT_LOCALE"`
	UI       string        `yaml:"ui" env:"RAGCHAT_UI"`
	Markdown bool          `yaml:"markdown" env:"RAGCHAT_MARKDOWN"`
	NoColor  bool          `yaml:"no_color" env:"RAGCHAT_NO_COLOR"`
	Log      LogConfig     `yaml:"log"`
}

// LogConfig controls the diagnostic log
type LogConfig struct {
	Level string `yaml:"level" env:"RAGCHAT_LOG_LEVEL"`
	File  string `yaml:"file" env:"RAGCHAT_LOG_FILE"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		BaseURL:  backend.DefaultBaseURL,
		Locale:   "am",
		UI:       UIAuto,
		Markdown: true,
		Log:      LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order. A .env file in the working directory is loaded
// into the environment first if present.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	// NO_COLOR is honoured regardless of prefix
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.NoColor = true
	}

	return cfg, nil
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base URL %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base URL %q: missing host", c.BaseURL)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s: must not be negative", c.Timeout)
	}

	switch strings.ToLower(c.UI) {
	case UIAuto, UITUI, UIConsole:
	default:
		return fmt.Errorf("invalid ui %q: want %s, %s or %s", c.UI, UIAuto, UITUI, UIConsole)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}
