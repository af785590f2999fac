package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/saranrapjs/quarterly-statements/pkg/extract"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. STMT_DB.
	EnvPrefix = "STMT"

	DefaultDBPath   = "statements.db"
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 8080
	DefaultLogLevel = "info"
	DefaultMaxAge   = 0
)

// Config holds the settings shared by the extract and server binaries
type Config struct {
	// Storage
	DBPath string

	// Extraction
	Manifest    string
	PatternsDir string // empty uses the embedded pattern sets
	Workers     int
	MaxAge      time.Duration // skip documents extracted more recently; 0 re-extracts everything

	// Server
	Host string
	Port int

	LogLevel string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		DBPath:   DefaultDBPath,
		Workers:  extract.DefaultWorkers,
		MaxAge:   DefaultMaxAge,
		Host:     DefaultHost,
		Port:     DefaultPort,
		LogLevel: DefaultLogLevel,
	}
}

// Load parses args (without the program name) on top of the defaults and
// the STMT_ environment
func Load(name string, args []string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("db", cfg.DBPath, "Path of the sqlite database")
	fs.String("manifest", cfg.Manifest, "YAML manifest of documents to extract")
	fs.String("patterns", cfg.PatternsDir, "Directory of company pattern sets (default: embedded)")
	fs.Int("workers", cfg.Workers, "Documents extracted in parallel")
	fs.Duration("maxage", cfg.MaxAge, "Skip documents whose stored draft is younger than this")
	fs.String("host", cfg.Host, "Server host address")
	fs.Int("port", cfg.Port, "Server port")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n\n", name)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEvery flag can also be set as %s_<FLAG>, e.g. %s_DB.\n", EnvPrefix, EnvPrefix)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg.DBPath = v.GetString("db")
	cfg.Manifest = v.GetString("manifest")
	cfg.PatternsDir = v.GetString("patterns")
	cfg.Workers = v.GetInt("workers")
	cfg.MaxAge = v.GetDuration("maxage")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.LogLevel = v.GetString("loglevel")

	if cfg.PatternsDir != "" {
		if abs, err := filepath.Abs(cfg.PatternsDir); err == nil {
			cfg.PatternsDir = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("database path cannot be empty")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.MaxAge < 0 {
		return errors.New("maxage cannot be negative")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.PatternsDir != "" {
		info, err := os.Stat(c.PatternsDir)
		if err != nil {
			return fmt.Errorf("cannot access patterns directory %s: %w", c.PatternsDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("patterns path %s is not a directory", c.PatternsDir)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Logger returns a console logger at the configured level
func (c *Config) Logger(w io.Writer) *log.Logger {
	return &log.Logger{
		Level:  log.ParseLevel(c.LogLevel),
		Writer: &log.ConsoleWriter{Writer: w},
	}
}
