package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/microstack/microstack/pkg/telemetry"
)

// EnvAPIKey is the environment variable that overrides the LLM API key.
const EnvAPIKey = "DEEPSEEK_API_KEY"

var validate = validator.New()

// Config is the top-level application configuration.
type Config struct {
	// LLM configures the language model client used for query parsing
	// and script generation.
	LLM LLMConfig `yaml:"llm"`

	// Relaxation configures the geometry relaxation engine.
	Relaxation RelaxationConfig `yaml:"relaxation"`

	// Structure configures slab generation.
	Structure StructureConfig `yaml:"structure"`

	// References configures the experimental reference store.
	References ReferencesConfig `yaml:"references"`

	// Output configures where run artifacts are written.
	Output OutputConfig `yaml:"output"`

	// Microscopy holds default parameters for simulated measurements.
	Microscopy MicroscopyConfig `yaml:"microscopy"`

	// Telemetry configures logging, metrics, and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LLMConfig configures the language model client.
type LLMConfig struct {
	// BaseURL is the API root.
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	// APIKey is the bearer token. Usually supplied via DEEPSEEK_API_KEY
	// rather than the config file.
	APIKey string `yaml:"api_key"`

	// Model is the model identifier.
	Model string `yaml:"model"`

	// Timeout bounds a single API request.
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`
}

// RelaxationConfig configures the relaxation engine.
type RelaxationConfig struct {
	// Steps is the maximum number of minimization steps.
	Steps int `yaml:"steps" validate:"gt=0"`

	// ScriptTimeout bounds generated-script execution.
	ScriptTimeout time.Duration `yaml:"script_timeout" validate:"min=0"`
}

// StructureConfig configures slab generation.
type StructureConfig struct {
	// Vacuum is the vacuum padding above the surface, in angstroms.
	Vacuum float64 `yaml:"vacuum" validate:"gte=0"`
}

// ReferencesConfig configures the reference data store.
type ReferencesConfig struct {
	// DBPath is the SQLite database path. Empty means the in-memory
	// curated data set is used instead.
	DBPath string `yaml:"db_path"`
}

// OutputConfig configures artifact output.
type OutputConfig struct {
	// Dir is the directory run artifacts are written to.
	Dir string `yaml:"dir" validate:"required"`
}

// MicroscopyConfig holds default measurement parameters. Zero values fall
// back to the compiled defaults of each technique.
type MicroscopyConfig struct {
	STM  STMDefaults  `yaml:"stm"`
	AFM  AFMDefaults  `yaml:"afm"`
	IETS IETSDefaults `yaml:"iets"`
}

// STMDefaults overrides scanning tunneling microscopy parameters.
type STMDefaults struct {
	Bias       float64 `yaml:"bias"`
	Height     float64 `yaml:"height" validate:"gte=0"`
	Resolution int     `yaml:"resolution" validate:"gte=0,lte=1024"`
}

// AFMDefaults overrides atomic force microscopy parameters.
type AFMDefaults struct {
	Amplitude  float64 `yaml:"amplitude" validate:"gte=0"`
	MinHeight  float64 `yaml:"min_height" validate:"gte=0"`
	MaxHeight  float64 `yaml:"max_height" validate:"gte=0"`
	Resolution int     `yaml:"resolution" validate:"gte=0,lte=1024"`
}

// IETSDefaults overrides inelastic tunneling spectroscopy parameters.
type IETSDefaults struct {
	Bias       float64 `yaml:"bias"`
	Modulation float64 `yaml:"modulation" validate:"gte=0"`
	Height     float64 `yaml:"height" validate:"gte=0"`
}

// TelemetryConfig configures the observability stack.
type TelemetryConfig struct {
	// LogLevel is the minimum log level (trace, debug, info, warn, error, fatal).
	LogLevel string `yaml:"log_level" validate:"oneof=trace debug info warn error fatal"`

	// LogFormat is console or json.
	LogFormat string `yaml:"log_format" validate:"oneof=console json"`

	// MetricsEnabled turns on the Prometheus /metrics endpoint.
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// MetricsAddress is the listen address for the metrics endpoint.
	MetricsAddress string `yaml:"metrics_address"`

	// TracingEnabled turns on OpenTelemetry tracing.
	TracingEnabled bool `yaml:"tracing_enabled"`

	// TracingExporter is the trace exporter (otlp, stdout, none).
	TracingExporter string `yaml:"tracing_exporter" validate:"omitempty,oneof=otlp stdout none"`

	// TracingEndpoint is the OTLP collector endpoint.
	TracingEndpoint string `yaml:"tracing_endpoint"`
}

// DefaultConfig returns the compiled defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL: "https://api.deepseek.com/v1",
			Model:   "deepseek-chat",
			Timeout: 60 * time.Second,
		},
		Relaxation: RelaxationConfig{
			Steps:         200,
			ScriptTimeout: 30 * time.Second,
		},
		Structure: StructureConfig{
			Vacuum: 10.0,
		},
		References: ReferencesConfig{
			DBPath: "",
		},
		Output: OutputConfig{
			Dir: "output",
		},
		Telemetry: TelemetryConfig{
			LogLevel:        "info",
			LogFormat:       "console",
			MetricsEnabled:  false,
			MetricsAddress:  ":9090",
			TracingEnabled:  false,
			TracingExporter: "stdout",
		},
	}
}

// Load reads the configuration from path, merged over defaults. A missing
// file is not an error: defaults plus environment overrides are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.LLM.APIKey = key
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Microscopy.AFM.MaxHeight != 0 && c.Microscopy.AFM.MaxHeight <= c.Microscopy.AFM.MinHeight {
		return fmt.Errorf("invalid configuration: afm max_height must exceed min_height")
	}
	return nil
}

// ToTelemetryConfig converts the flat telemetry settings into the full
// telemetry configuration.
func (c *Config) ToTelemetryConfig(version string) *telemetry.Config {
	tel := telemetry.DefaultConfig()
	tel.ServiceVersion = version
	tel.Logging.Level = c.Telemetry.LogLevel
	tel.Logging.Format = c.Telemetry.LogFormat
	tel.Metrics.Enabled = c.Telemetry.MetricsEnabled
	tel.Metrics.ListenAddress = c.Telemetry.MetricsAddress
	tel.Tracing.Enabled = c.Telemetry.TracingEnabled
	if c.Telemetry.TracingExporter != "" {
		tel.Tracing.Exporter = c.Telemetry.TracingExporter
	}
	tel.Tracing.Endpoint = c.Telemetry.TracingEndpoint
	return tel
}
