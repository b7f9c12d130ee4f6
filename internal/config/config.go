package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"distresscli/internal/distress"
	apperrors "distresscli/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. DISTRESS_SERVER_PORT
const EnvPrefix = "DISTRESS"

// FileEnvVar names an explicit configuration file
const FileEnvVar = EnvPrefix + "_CONFIG"

// Report formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatBoth = "both"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Engine    EngineConfig    `yaml:"engine" envconfig:"ENGINE"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration   `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxBodyBytes    int64           `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
	MaxBatchSize    int             `yaml:"max_batch_size" envconfig:"MAX_BATCH_SIZE"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// EngineConfig contains scoring engine configuration.
// Quarters is file-only; leave it empty to use the default calendar.
type EngineConfig struct {
	Concurrency int                      `yaml:"concurrency" envconfig:"CONCURRENCY"`
	Quarters    []distress.QuarterTarget `yaml:"quarters" ignored:"true"`
}

// ReportConfig contains report export configuration
type ReportConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	Format    string `yaml:"format" envconfig:"FORMAT"`
	Summary   bool   `yaml:"summary" envconfig:"SUMMARY"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
	MetricsEnabled bool    `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, the first config file found
// and DISTRESS_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit file path; an empty path skips the file
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, err
		}
	}

	// Unset variables leave file and default values untouched
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file on cfg. Relative output paths are
// resolved against the directory holding the file.
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("read config file %s", path), err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("parse config file %s", path), err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("parse config file %s", path), err)
	}

	base := filepath.Dir(path)
	if fileCfg.Report.OutputDir != "" {
		c.Report.OutputDir = resolvePath(base, fileCfg.Report.OutputDir)
	}
	if fileCfg.Logging.FilePath != "" {
		c.Logging.FilePath = resolvePath(base, fileCfg.Logging.FilePath)
	}
	return nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Calendar builds the scoring calendar from Engine.Quarters
func (c *Config) Calendar() (distress.Calendar, error) {
	if len(c.Engine.Quarters) == 0 {
		return distress.DefaultCalendar(), nil
	}
	cal, err := distress.NewCalendar(c.Engine.Quarters)
	if err != nil {
		return distress.Calendar{}, apperrors.NewConfigError("engine.quarters", err)
	}
	return cal, nil
}

// Address returns the listen address for the HTTP server
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// WantCSV reports whether the configured report format includes CSV
func (c *Config) WantCSV() bool {
	return c.Report.Format == FormatCSV || c.Report.Format == FormatBoth
}

// WantXLSX reports whether the configured report format includes Excel
func (c *Config) WantXLSX() bool {
	return c.Report.Format == FormatXLSX || c.Report.Format == FormatBoth
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return apperrors.NewConfigError(fmt.Sprintf("invalid server port: %d", c.Server.Port), nil)
	}

	for name, d := range map[string]time.Duration{
		"read_timeout":     c.Server.ReadTimeout,
		"write_timeout":    c.Server.WriteTimeout,
		"idle_timeout":     c.Server.IdleTimeout,
		"shutdown_timeout": c.Server.ShutdownTimeout,
		"request_timeout":  c.Server.RequestTimeout,
	} {
		if d <= 0 {
			return apperrors.NewConfigError(fmt.Sprintf("server %s must be positive, got %s", name, d), nil)
		}
	}

	if c.Server.MaxBodyBytes <= 0 {
		return apperrors.NewConfigError("server max_body_bytes must be positive", nil)
	}
	if c.Server.MaxBatchSize < 1 {
		return apperrors.NewConfigError("server max_batch_size must be at least 1", nil)
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.RPS <= 0 || c.Server.RateLimit.Burst < 1) {
		return apperrors.NewConfigError("rate limit needs positive rps and burst", nil)
	}

	if !oneOf(c.Logging.Level, "debug", "info", "warn", "warning", "error") {
		return apperrors.NewConfigError(fmt.Sprintf("invalid log level: %s", c.Logging.Level), nil)
	}
	if !oneOf(c.Logging.Output, "console", "file", "both") {
		return apperrors.NewConfigError(fmt.Sprintf("invalid log output: %s", c.Logging.Output), nil)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return apperrors.NewConfigError("log file_path is required when output is file or both", nil)
	}

	if c.Engine.Concurrency < 1 {
		return apperrors.NewConfigError(fmt.Sprintf("engine concurrency must be at least 1, got %d", c.Engine.Concurrency), nil)
	}
	if _, err := c.Calendar(); err != nil {
		return err
	}

	if !oneOf(c.Report.Format, FormatCSV, FormatXLSX, FormatBoth) {
		return apperrors.NewConfigError(fmt.Sprintf("invalid report format: %s", c.Report.Format), nil)
	}
	if c.Report.OutputDir == "" {
		return apperrors.NewConfigError("report output_dir is required", nil)
	}

	if !oneOf(c.Telemetry.TraceExporter, "none", "stdout") {
		return apperrors.NewConfigError(fmt.Sprintf("unsupported trace exporter: %s", c.Telemetry.TraceExporter), nil)
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return apperrors.NewConfigError("telemetry sample_ratio must be within [0, 1]", nil)
	}

	return nil
}

func oneOf(v string, allowed ...string) bool {
	v = strings.ToLower(v)
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// getConfigFilePath returns the configuration file path, or "" when none exists
func getConfigFilePath() string {
	if p := os.Getenv(FileEnvVar); p != "" {
		return p
	}

	locations := []string{
		"distress.yaml",
		"config.yaml",
		filepath.Join("configs", "distress.yaml"),
		filepath.Join("configs", "config.yaml"),
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  20 * time.Second,
			MaxBodyBytes:    10 << 20,
			MaxBatchSize:    200,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: filepath.Join("logs", "distress.log"),
		},
		Engine: EngineConfig{
			Concurrency: distress.DefaultConcurrency,
		},
		Report: ReportConfig{
			OutputDir: "reports",
			Format:    FormatCSV,
			Summary:   true,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "distress-engine",
			Environment:    "development",
			TraceExporter:  "none",
			SampleRatio:    1.0,
			MetricsEnabled: true,
		},
	}
}
