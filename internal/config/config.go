// Package config provides Viper-based configuration loading for the damage engine,
// its CLI and its HTTP server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// DataConfig locates the game data on disk.
type DataConfig struct {
	// Gamemaster is the path of the merged gamemaster JSON document.
	Gamemaster string `mapstructure:"gamemaster"`
	// LeaguesDir holds the per-league meta roster files.
	LeaguesDir string `mapstructure:"leagues_dir"`
}

// EngineConfig tunes roster enumeration.
type EngineConfig struct {
	// Workers is the number of goroutines used per enumeration.
	Workers int `mapstructure:"workers"`
	// CacheRosters keeps enumerated rosters for reuse per species form and cap.
	CacheRosters bool `mapstructure:"cache_rosters"`
}

// ScriptingConfig holds Lua report-script settings.
type ScriptingConfig struct {
	ScriptDir string `mapstructure:"script_dir"`
	// InstructionLimit bounds each script run in Lua opcodes; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// DatabaseConfig holds PostgreSQL connection settings for report storage.
type DatabaseConfig struct {
	// Enabled turns report persistence on. The remaining fields are only
	// validated when it is set.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// HTTPConfig holds the JSON API listener settings.
type HTTPConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// AdvisorConfig holds settings for LLM-written report summaries.
type AdvisorConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Model     string `mapstructure:"model"`
	MaxTokens int64  `mapstructure:"max_tokens"`
	// APIKey is normally supplied through PVP_ADVISOR_API_KEY.
	APIKey string `mapstructure:"api_key"`
}

// FetchConfig holds the gamemaster download source.
type FetchConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Data      DataConfig      `mapstructure:"data"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Database  DatabaseConfig  `mapstructure:"database"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Advisor   AdvisorConfig   `mapstructure:"advisor"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateLogging(c.Logging),
		validateData(c.Data),
		validateEngine(c.Engine),
		validateScripting(c.Scripting),
		validateDatabase(c.Database),
		validateHTTP(c.HTTP),
		validateAdvisor(c.Advisor),
		validateFetch(c.Fetch),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateData(d DataConfig) error {
	if d.Gamemaster == "" {
		return errors.New("data.gamemaster must not be empty")
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	if e.Workers < 1 {
		return fmt.Errorf("engine.workers must be >= 1, got %d", e.Workers)
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	if !d.Enabled {
		return nil
	}
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHTTP(h HTTPConfig) error {
	var errs []string
	if h.Port < 1 || h.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be 1-65535, got %d", h.Port))
	}
	if h.ReadTimeout < 0 {
		errs = append(errs, "http.read_timeout must not be negative")
	}
	if h.WriteTimeout < 0 {
		errs = append(errs, "http.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAdvisor(a AdvisorConfig) error {
	if !a.Enabled {
		return nil
	}
	var errs []string
	if a.Model == "" {
		errs = append(errs, "advisor.model must not be empty")
	}
	if a.MaxTokens < 1 {
		errs = append(errs, fmt.Sprintf("advisor.max_tokens must be >= 1, got %d", a.MaxTokens))
	}
	if a.APIKey == "" {
		errs = append(errs, "advisor.api_key must be set when the advisor is enabled")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateFetch(f FetchConfig) error {
	var errs []string
	if !strings.HasPrefix(f.BaseURL, "http://") && !strings.HasPrefix(f.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("fetch.base_url must be an http(s) URL, got %q", f.BaseURL))
	}
	if f.Timeout <= 0 {
		errs = append(errs, "fetch.timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path loads defaults and environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and PVP_-prefixed environment
// overrides applied.
func NewViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with PVP_ prefix
	v.SetEnvPrefix("PVP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("data.gamemaster", "data/gamemaster.json")
	v.SetDefault("data.leagues_dir", "data/leagues")

	v.SetDefault("engine.workers", 8)
	v.SetDefault("engine.cache_rosters", true)

	v.SetDefault("scripting.script_dir", "content/scripts")
	v.SetDefault("scripting.instruction_limit", 10_000_000)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "pvp")
	v.SetDefault("database.password", "pvp")
	v.SetDefault("database.name", "pvp")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", "30s")
	v.SetDefault("http.write_timeout", "2m")

	v.SetDefault("advisor.enabled", false)
	v.SetDefault("advisor.model", "claude-sonnet-4-5")
	v.SetDefault("advisor.max_tokens", 1024)
	v.SetDefault("advisor.api_key", "")

	v.SetDefault("fetch.base_url", "https://raw.githubusercontent.com/pvpoke/pvpoke/master/src/data/gamemaster")
	v.SetDefault("fetch.timeout", "30s")
}
