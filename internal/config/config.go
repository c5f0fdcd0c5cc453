// Package config provides configuration management for the Soundvault
// Agent. Settings come from an optional YAML file with environment
// variable overrides on top; environment always wins.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Default values
	DefaultPort           = 8790
	DefaultLogLevel       = "info"
	DefaultDataDir        = ".soundvault"
	DefaultAudioExtension = ".wav"
	DefaultMaxUploadMB    = 64

	// Environment variable names
	EnvPort           = "SOUNDVAULT_PORT"
	EnvLogLevel       = "SOUNDVAULT_LOG_LEVEL"
	EnvDataDir        = "SOUNDVAULT_DATA_DIR"
	EnvDatasetDir     = "SOUNDVAULT_DATASET_DIR"
	EnvAudioExtension = "SOUNDVAULT_AUDIO_EXT"
	EnvMaxUploadMB    = "SOUNDVAULT_MAX_UPLOAD_MB"
	EnvAllowedOrigins = "SOUNDVAULT_ALLOWED_ORIGINS"
	EnvConfigFile     = "SOUNDVAULT_CONFIG"

	// Database filename
	DBFilename = "soundvault.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	DatasetDir() string
	AudioExtension() string
	MaxUploadBytes() int64
	AllowedOrigins() []string
}

// fileConfig is the YAML config file shape. Every field is optional.
type fileConfig struct {
	Port           int      `yaml:"port"`
	LogLevel       string   `yaml:"log_level"`
	DataDir        string   `yaml:"data_dir"`
	DatasetDir     string   `yaml:"dataset_dir"`
	AudioExtension string   `yaml:"audio_extension"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// EnvConfig layers environment variables over an optional config file
type EnvConfig struct {
	port           int
	logLevel       string
	dataDir        string
	datasetDir     string
	audioExtension string
	maxUploadMB    int
	allowedOrigins []string
}

// New creates a new EnvConfig with defaults, config file values, and
// environment variable overrides applied in that order.
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:           DefaultPort,
		logLevel:       DefaultLogLevel,
		dataDir:        defaultDataDir(),
		audioExtension: DefaultAudioExtension,
		maxUploadMB:    DefaultMaxUploadMB,
		allowedOrigins: []string{"*"},
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if dd := os.Getenv(EnvDatasetDir); dd != "" {
		cfg.datasetDir = dd
	}

	if ext := os.Getenv(EnvAudioExtension); ext != "" {
		cfg.audioExtension = ext
	}

	if m := os.Getenv(EnvMaxUploadMB); m != "" {
		mb, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvMaxUploadMB, err)
		}
		cfg.maxUploadMB = mb
	}

	if ao := os.Getenv(EnvAllowedOrigins); ao != "" {
		var origins []string
		for _, o := range strings.Split(ao, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.allowedOrigins = origins
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EnvConfig) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Port != 0 {
		c.port = fc.Port
	}
	if fc.LogLevel != "" {
		c.logLevel = fc.LogLevel
	}
	if fc.DataDir != "" {
		c.dataDir = fc.DataDir
	}
	if fc.DatasetDir != "" {
		c.datasetDir = fc.DatasetDir
	}
	if fc.AudioExtension != "" {
		c.audioExtension = fc.AudioExtension
	}
	if fc.MaxUploadMB != 0 {
		c.maxUploadMB = fc.MaxUploadMB
	}
	if len(fc.AllowedOrigins) > 0 {
		c.allowedOrigins = fc.AllowedOrigins
	}
	return nil
}

func (c *EnvConfig) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.port)
	}
	if c.maxUploadMB < 1 {
		return fmt.Errorf("invalid max upload size %dMB: must be at least 1", c.maxUploadMB)
	}
	if !strings.HasPrefix(c.audioExtension, ".") {
		return fmt.Errorf("invalid audio extension %q: must start with a dot", c.audioExtension)
	}
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// DatasetDir returns the dataset root directory. Defaults to a
// "dataset" directory under the data dir.
func (c *EnvConfig) DatasetDir() string {
	if c.datasetDir != "" {
		return c.datasetDir
	}
	return filepath.Join(c.dataDir, "dataset")
}

// AudioExtension returns the container extension stored samples use
func (c *EnvConfig) AudioExtension() string {
	return c.audioExtension
}

// MaxUploadBytes returns the upload request body cap in bytes
func (c *EnvConfig) MaxUploadBytes() int64 {
	return int64(c.maxUploadMB) * 1024 * 1024
}

// AllowedOrigins returns the CORS origins allowed to reach the API
func (c *EnvConfig) AllowedOrigins() []string {
	return c.allowedOrigins
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
