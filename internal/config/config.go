package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/upwork/coursera/internal/startup"
)

const (
	defaultPort           = "8080"
	defaultContextPath    = "/"
	defaultLogLevel       = "info"
	defaultLogEncoding    = "console"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > Environment variables > Profile YAML > YAML config > Defaults
type Config struct {
	ApplicationName      string
	Profiles             []string
	Port                 string
	ContextPath          string
	KeyStore             string
	ConfigServerStatus   string
	APIDocsEnabled       bool
	LogLevel             string
	LogEncoding          string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	App          yamlApp          `yaml:"app"`
	Server       yamlServer       `yaml:"server"`
	ConfigServer yamlConfigServer `yaml:"config_server"`
	APIDocs      yamlAPIDocs      `yaml:"api_docs"`
	Log          yamlLog          `yaml:"log"`
}

type yamlApp struct {
	Name     string   `yaml:"name"`
	Profiles []string `yaml:"profiles"`
}

type yamlServer struct {
	Port                 string        `yaml:"port"`
	ContextPath          string        `yaml:"context_path"`
	TLS                  yamlTLS       `yaml:"tls"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

type yamlTLS struct {
	KeyStore string `yaml:"key_store"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

type yamlConfigServer struct {
	Status string `yaml:"status"`
}

type yamlAPIDocs struct {
	Enabled *bool `yaml:"enabled"`
}

type yamlLog struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile         string
	ApplicationName    *string
	Port               *string
	ContextPath        *string
	KeyStore           *string
	Profiles           []string
	ConfigServerStatus *string
	APIDocsEnabled     *bool
	LogLevel           *string
	LogEncoding        *string
	RateLimitRPS       *float64
	RateLimitBurst     *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > Environment variables > Profile YAML > YAML config > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	var configFile string
	if overrides != nil {
		configFile = overrides.ConfigFile
	}

	// Load from YAML file if specified
	if configFile != "" {
		yamlCfg, err := loadFromFile(configFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	// Profiles decide which overlay files apply, so resolve them before the overlays.
	cfg.Profiles = activeProfiles(cfg.Profiles, overrides)

	if configFile != "" {
		for _, profile := range cfg.Profiles {
			if err := applyProfileFile(&cfg, configFile, profile); err != nil {
				return Config{}, fmt.Errorf("load profile %q config: %w", profile, err)
			}
		}
	}

	// Apply environment variables (override YAML)
	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	cfg.ContextPath = normalizeContextPath(cfg.ContextPath)

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Properties exposes the configuration as named properties.
func (c Config) Properties() map[string]string {
	return map[string]string{
		startup.PropertyApplicationName:    c.ApplicationName,
		startup.PropertyServerPort:         c.ListenPort(),
		startup.PropertyKeyStore:           c.KeyStore,
		startup.PropertyContextPath:        c.ContextPath,
		startup.PropertyConfigServerStatus: c.ConfigServerStatus,
	}
}

// Snapshot captures the values rendered in the startup trace.
func (c Config) Snapshot() startup.Snapshot {
	return startup.NewSnapshot(c.Properties(), c.Profiles)
}

// ListenPort returns the port part of Port, which may also be given as host:port.
func (c Config) ListenPort() string {
	if _, port, err := net.SplitHostPort(c.Port); err == nil {
		return port
	}
	return c.Port
}

// TLSEnabled reports whether the server should terminate TLS.
func (c Config) TLSEnabled() bool {
	return strings.TrimSpace(c.KeyStore) != ""
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		ContextPath:          defaultContextPath,
		APIDocsEnabled:       true,
		LogLevel:             defaultLogLevel,
		LogEncoding:          defaultLogEncoding,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyProfileFile applies <name>-<profile><ext> next to the base file when it exists.
// Overlays cannot change the active profiles.
func applyProfileFile(cfg *Config, base, profile string) error {
	path := profileFile(base, profile)
	yamlCfg, err := loadFromFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	profiles := cfg.Profiles
	applyYAMLConfig(cfg, yamlCfg)
	cfg.Profiles = profiles
	return nil
}

func profileFile(base, profile string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + profile + ext
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.App.Name != "" {
		cfg.ApplicationName = yamlCfg.App.Name
	}

	if len(yamlCfg.App.Profiles) > 0 {
		cfg.Profiles = cleanProfiles(yamlCfg.App.Profiles)
	}

	server := yamlCfg.Server
	if server.Port != "" {
		cfg.Port = server.Port
	}

	if server.ContextPath != "" {
		cfg.ContextPath = server.ContextPath
	}

	if server.TLS.KeyStore != "" {
		cfg.KeyStore = server.TLS.KeyStore
	}

	applyDuration(&cfg.ShutdownGracePeriod, server.ShutdownGracePeriod)
	applyDuration(&cfg.ReadHeaderTimeout, server.ReadHeaderTimeout)
	applyDuration(&cfg.WriteTimeout, server.WriteTimeout)
	applyDuration(&cfg.IdleTimeout, server.IdleTimeout)

	if server.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *server.EnableRequestLogging
	}

	if rps := server.RateLimit.RPS; rps != nil && *rps >= 0 {
		cfg.RateLimitRPS = *rps
	}

	if burst := server.RateLimit.Burst; burst != nil && *burst >= 0 {
		cfg.RateLimitBurst = *burst
	}

	if yamlCfg.ConfigServer.Status != "" {
		cfg.ConfigServerStatus = yamlCfg.ConfigServer.Status
	}

	if yamlCfg.APIDocs.Enabled != nil {
		cfg.APIDocsEnabled = *yamlCfg.APIDocs.Enabled
	}

	if yamlCfg.Log.Level != "" {
		cfg.LogLevel = yamlCfg.Log.Level
	}

	if yamlCfg.Log.Encoding != "" {
		cfg.LogEncoding = yamlCfg.Log.Encoding
	}
}

func applyDuration(target *time.Duration, raw string) {
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil {
		*target = d
	}
}

// activeProfiles picks the profile list from the highest-precedence source that sets one.
func activeProfiles(fromFile []string, overrides *CLIOverrides) []string {
	if overrides != nil && len(overrides.Profiles) > 0 {
		return cleanProfiles(overrides.Profiles)
	}
	if raw := strings.TrimSpace(os.Getenv("APP_PROFILES")); raw != "" {
		return cleanProfiles([]string{raw})
	}
	return fromFile
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	if name := strings.TrimSpace(os.Getenv("APP_NAME")); name != "" {
		cfg.ApplicationName = name
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if path := strings.TrimSpace(os.Getenv("CONTEXT_PATH")); path != "" {
		cfg.ContextPath = path
	}

	if keyStore := strings.TrimSpace(os.Getenv("TLS_KEY_STORE")); keyStore != "" {
		cfg.KeyStore = keyStore
	}

	if status := strings.TrimSpace(os.Getenv("CONFIG_SERVER_STATUS")); status != "" {
		cfg.ConfigServerStatus = status
	}

	if raw := strings.TrimSpace(os.Getenv("API_DOCS_ENABLED")); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse API_DOCS_ENABLED: %w", err)
		}
		cfg.APIDocsEnabled = enabled
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if encoding := strings.TrimSpace(os.Getenv("LOG_ENCODING")); encoding != "" {
		cfg.LogEncoding = encoding
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.ApplicationName != nil && *overrides.ApplicationName != "" {
		cfg.ApplicationName = *overrides.ApplicationName
	}

	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.ContextPath != nil && *overrides.ContextPath != "" {
		cfg.ContextPath = *overrides.ContextPath
	}

	if overrides.KeyStore != nil && *overrides.KeyStore != "" {
		cfg.KeyStore = *overrides.KeyStore
	}

	if overrides.ConfigServerStatus != nil && *overrides.ConfigServerStatus != "" {
		cfg.ConfigServerStatus = *overrides.ConfigServerStatus
	}

	if overrides.APIDocsEnabled != nil {
		cfg.APIDocsEnabled = *overrides.APIDocsEnabled
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.LogEncoding != nil && *overrides.LogEncoding != "" {
		cfg.LogEncoding = *overrides.LogEncoding
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Port) == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if err := ValidateContextPath(cfg.ContextPath); err != nil {
		return err
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if cfg.LogEncoding != "json" && cfg.LogEncoding != "console" {
		return fmt.Errorf("log encoding must be json or console, got %q", cfg.LogEncoding)
	}
	return nil
}

// cleanProfiles splits comma-separated entries, trims them and drops blanks and duplicates.
func cleanProfiles(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	profiles := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			profiles = append(profiles, part)
		}
	}
	return profiles
}

// ValidateContextPath rejects paths that cannot be used verbatim as a route prefix.
// Only unreserved characters, sub-delimiters, ':', '@' and '/' are allowed.
func ValidateContextPath(path string) error {
	for _, r := range path {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-._~!$&'()*+,;=:@/", r):
		default:
			return fmt.Errorf("context path %q contains invalid character %q", path, r)
		}
	}
	return nil
}

// normalizeContextPath returns path with exactly one leading and one trailing slash.
func normalizeContextPath(path string) string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return "/"
	}
	return "/" + path + "/"
}
