package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Run     RunConfig     `mapstructure:"run"`
	Logging LoggingConfig `mapstructure:"logging"`
	Journal JournalConfig `mapstructure:"journal"`
}

// ServerConfig holds photo server connection settings
type ServerConfig struct {
	URLFile    string        `mapstructure:"url_file"`     // File holding the base URL
	APIKeyFile string        `mapstructure:"api_key_file"` // File holding the API key
	URL        string        `mapstructure:"url"`          // Overrides URLFile when set
	APIKey     string        `mapstructure:"api_key"`      // Overrides APIKeyFile when set
	Timeout    time.Duration `mapstructure:"timeout"`      // 0 = no client timeout
}

// RunConfig controls what a run does
type RunConfig struct {
	AssumeYes  bool `mapstructure:"assume_yes"`
	DryRun     bool `mapstructure:"dry_run"`
	SkipDedupe bool `mapstructure:"skip_dedupe"`
	SkipStack  bool `mapstructure:"skip_stack"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"` // empty = console
	Level string `mapstructure:"level"`
}

// JournalConfig holds the audit journal location
type JournalConfig struct {
	File string `mapstructure:"file"` // empty = disabled
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URLFile:    "base_url.txt",
			APIKeyFile: "api_key.txt",
		},
		Logging: LoggingConfig{
			Level: "WARN",
		},
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "photodedup")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "photodedup")
	}
}

// setDefaults registers every key so environment overrides resolve
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.url_file", cfg.Server.URLFile)
	v.SetDefault("server.api_key_file", cfg.Server.APIKeyFile)
	v.SetDefault("server.url", cfg.Server.URL)
	v.SetDefault("server.api_key", cfg.Server.APIKey)
	v.SetDefault("server.timeout", cfg.Server.Timeout)

	v.SetDefault("run.assume_yes", cfg.Run.AssumeYes)
	v.SetDefault("run.dry_run", cfg.Run.DryRun)
	v.SetDefault("run.skip_dedupe", cfg.Run.SkipDedupe)
	v.SetDefault("run.skip_stack", cfg.Run.SkipStack)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)

	v.SetDefault("journal.file", cfg.Journal.File)
}

// LoadConfig loads configuration from file, environment and any flags
// already bound to v. configFile, when non-empty, must exist.
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides: PHOTODEDUP_SERVER_URL etc.
	v.SetEnvPrefix("PHOTODEDUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Credentials are the values needed to talk to the server
type Credentials struct {
	BaseURL string
	APIKey  string
}

// LoadCredentials resolves the base URL and API key, preferring values set
// directly in the config over the credential files. Both are required.
func (c *Config) LoadCredentials() (*Credentials, error) {
	baseURL, err := resolve(c.Server.URL, c.Server.URLFile, "base URL")
	if err != nil {
		return nil, err
	}
	apiKey, err := resolve(c.Server.APIKey, c.Server.APIKeyFile, "API key")
	if err != nil {
		return nil, err
	}

	return &Credentials{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
	}, nil
}

func resolve(value, file, what string) (string, error) {
	if v := strings.TrimSpace(value); v != "" {
		return v, nil
	}
	if file == "" {
		return "", fmt.Errorf("no %s configured", what)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s file: %w", what, err)
	}

	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", fmt.Errorf("%s file %s is empty", what, file)
	}
	return v, nil
}
