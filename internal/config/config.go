// Package config loads pasosync settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thenoetrevino/pasosync/internal/config/colors"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig       `yaml:"server"`
	Client      ClientConfig       `yaml:"client"`
	Logging     LoggingConfig      `yaml:"logging"`
	ColorScheme colors.ColorScheme `yaml:"theme"`
}

// ServerConfig configures `pasosync serve`
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	WSPath            string        `yaml:"ws_path"`
	DBPath            string        `yaml:"db_path"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	ClientBuffer      int           `yaml:"client_buffer"`
	WriteWait         time.Duration `yaml:"write_wait"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// ClientConfig configures the socket service and the CRUD client
type ClientConfig struct {
	URL                  string        `yaml:"url"`
	APIURL               string        `yaml:"api_url"`
	HeartbeatInterval    time.Duration `yaml:"heartbeat_interval"`
	ReconnectBase        time.Duration `yaml:"reconnect_base"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	DialTimeout          time.Duration `yaml:"dial_timeout"`
	LastActionTTL        time.Duration `yaml:"last_action_ttl"`
}

// LoggingConfig selects the log level and sink. File "-" means stderr.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in configuration
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads config from the user's config directory.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		config := Default()
		config.finish()
		return config, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads config from path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		config := Default()
		config.finish()
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	config.applyDefaults()
	config.finish()
	return &config, nil
}

// finish layers the theme file and environment over the loaded values
func (c *Config) finish() {
	loadThemeFile(c)
	c.applyEnv()
}

// loadThemeFile loads and merges theme from PASOSYNC_THEME_FILE environment variable
func loadThemeFile(config *Config) {
	themeFile := os.Getenv("PASOSYNC_THEME_FILE")
	if themeFile == "" {
		return
	}

	themeData, err := os.ReadFile(themeFile)
	if err != nil {
		return
	}

	var themeConfig struct {
		Theme colors.ColorScheme `yaml:"theme"`
	}

	if yaml.Unmarshal(themeData, &themeConfig) == nil {
		config.ColorScheme.MergeFrom(themeConfig.Theme)
	}
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "pasosync", "config.yaml"), nil
	}

	// Fall back to ~/.config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "pasosync", "config.yaml"), nil
}

// DefaultDataDir returns ~/.pasosync, where the database and logs live
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pasosync"
	}
	return filepath.Join(homeDir, ".pasosync")
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	s := &c.Server
	setString(&s.Addr, ":3000")
	setString(&s.WSPath, "/ws")
	setString(&s.DBPath, filepath.Join(DefaultDataDir(), "pasosync.db"))
	setDuration(&s.HeartbeatInterval, 30*time.Second)
	setInt(&s.ClientBuffer, 64)
	setDuration(&s.WriteWait, 10*time.Second)
	setDuration(&s.ShutdownTimeout, 5*time.Second)

	cl := &c.Client
	setString(&cl.URL, "ws://localhost:3000/ws")
	setString(&cl.APIURL, "http://localhost:3000")
	setDuration(&cl.HeartbeatInterval, 25*time.Second)
	setDuration(&cl.ReconnectBase, time.Second)
	setInt(&cl.MaxReconnectAttempts, 5)
	setDuration(&cl.DialTimeout, 10*time.Second)
	setDuration(&cl.LastActionTTL, 2*time.Second)

	setString(&c.Logging.Level, "info")
	setString(&c.Logging.File, filepath.Join(DefaultDataDir(), "logs", "pasosync.log"))

	c.ColorScheme.ApplyDefaults()
}

// applyEnv applies PASOSYNC_* overrides
func (c *Config) applyEnv() {
	c.Server.Addr = getEnvString("PASOSYNC_ADDR", c.Server.Addr)
	c.Server.DBPath = getEnvString("PASOSYNC_DB_PATH", c.Server.DBPath)
	c.Server.HeartbeatInterval = getEnvDuration("PASOSYNC_HEARTBEAT_INTERVAL", c.Server.HeartbeatInterval)
	c.Server.ClientBuffer = getEnvInt("PASOSYNC_CLIENT_BUFFER_SIZE", c.Server.ClientBuffer)
	if origins := os.Getenv("PASOSYNC_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	c.Client.URL = getEnvString("PASOSYNC_URL", c.Client.URL)
	c.Client.APIURL = getEnvString("PASOSYNC_API_URL", c.Client.APIURL)
	c.Client.MaxReconnectAttempts = getEnvInt("PASOSYNC_MAX_RECONNECT_ATTEMPTS", c.Client.MaxReconnectAttempts)

	c.Logging.Level = getEnvString("PASOSYNC_LOG_LEVEL", c.Logging.Level)
	c.Logging.File = getEnvString("PASOSYNC_LOG_FILE", c.Logging.File)
}

// getEnvInt reads an integer from an environment variable, returning defaultVal if not set or invalid
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func setString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if *dst <= 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if *dst <= 0 {
		*dst = v
	}
}
