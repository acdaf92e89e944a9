package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Storage      StorageConfig      `toml:"storage"`
	Database     DatabaseConfig     `toml:"database"`
	Server       ServerConfig       `toml:"server"`
	Upload       UploadConfig       `toml:"upload"`
	Destinations DestinationsConfig `toml:"destinations"`
}

// StorageConfig contains the filesystem layout the pipeline operates on.
// All paths are scoped per upload id except the archive, whose date/DJ
// directories may be shared across uploads.
type StorageConfig struct {
	IncomingDir string `toml:"incoming_dir"`
	ArtifactDir string `toml:"artifact_dir"`
	StatusDir   string `toml:"status_dir"`
	ArchiveDir  string `toml:"archive_dir"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP status server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// UploadConfig tunes the orchestrator and destination retry policy.
type UploadConfig struct {
	Default           string  `toml:"default_destination"`
	MaxRetries        int     `toml:"max_retries"`
	RetryDelaySeconds int     `toml:"retry_delay_seconds"`
	PollSeconds       int     `toml:"poll_interval_seconds"`
	RateLimit         float64 `toml:"rate_limit"`
}

// RetryDelay returns the fixed delay between destination upload attempts.
func (u UploadConfig) RetryDelay() time.Duration {
	return time.Duration(u.RetryDelaySeconds) * time.Second
}

// PollInterval returns how often the watch command scans the incoming directory.
func (u UploadConfig) PollInterval() time.Duration {
	return time.Duration(u.PollSeconds) * time.Second
}

// DestinationsConfig contains per-platform credentials and endpoints.
type DestinationsConfig struct {
	Mixcloud MixcloudConfig `toml:"mixcloud"`
	Radioco  RadiocoConfig  `toml:"radioco"`
}

// MixcloudConfig contains Mixcloud API credentials.
type MixcloudConfig struct {
	AccessToken string `toml:"access_token"`
	BaseURL     string `toml:"base_url"`
}

// RadiocoConfig contains Radio.co API credentials.
type RadiocoConfig struct {
	APIKey     string `toml:"api_key"`
	StationID  string `toml:"station_id"`
	PlaylistID string `toml:"playlist_id"`
	BaseURL    string `toml:"base_url"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
