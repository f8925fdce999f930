// Package config loads satcov settings from built-in defaults, an optional
// YAML file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/signalsfoundry/satcov/core"
	"github.com/signalsfoundry/satcov/internal/logging"
	"github.com/signalsfoundry/satcov/internal/observability"
	"github.com/signalsfoundry/satcov/overlay"
)

// ErrConfig marks configuration that could not be loaded or is invalid.
var ErrConfig = errors.New("configuration error")

// PathEnvVar names the environment variable holding the config file path.
const PathEnvVar = "SATCOV_CONFIG"

// DefaultPath is picked up from the working directory when no path is given.
const DefaultPath = "satcov.yaml"

// Config is the full set of run settings.
type Config struct {
	Logging LoggingConfig `koanf:"logging"`
	Tracing TracingConfig `koanf:"tracing"`
	Metrics MetricsConfig `koanf:"metrics"`
	Regions RegionsConfig `koanf:"regions"`
	Overlay OverlayConfig `koanf:"overlay"`
}

type LoggingConfig struct {
	Level     string `koanf:"level" validate:"oneof=debug info warn warning error"`
	Format    string `koanf:"format" validate:"oneof=text json"`
	AddSource bool   `koanf:"add_source"`
}

type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Exporter    string  `koanf:"exporter" validate:"oneof=stdout otlp otlpgrpc"`
	Endpoint    string  `koanf:"endpoint" validate:"omitempty,hostname_port"`
	ServiceName string  `koanf:"service_name" validate:"required"`
	SampleRatio float64 `koanf:"sample_ratio" validate:"gte=0,lte=1"`
}

type MetricsConfig struct {
	// TextfilePath, when set, receives the run metrics in Prometheus text
	// format after each run.
	TextfilePath string `koanf:"textfile_path"`
}

type RegionsConfig struct {
	LabelFields []string `koanf:"label_fields" validate:"min=1,dive,required"`
}

// OverlayConfig holds KML presentation settings. Colors are aabbggrr hex.
type OverlayConfig struct {
	LineColor   string  `koanf:"line_color" validate:"len=8,hexadecimal"`
	LineWidth   float64 `koanf:"line_width" validate:"gt=0"`
	FillColor   string  `koanf:"fill_color" validate:"len=8,hexadecimal"`
	MarkerColor string  `koanf:"marker_color" validate:"len=8,hexadecimal"`
	MarkerScale float64 `koanf:"marker_scale" validate:"gt=0"`
	MarkerIcon  string  `koanf:"marker_icon" validate:"required,url"`
	Open        bool    `koanf:"open"`
}

// Options selects the files Load reads.
type Options struct {
	// Path is an explicit config file; it must exist when set.
	Path string
	// EnvFile is a dotenv file loaded before the environment layer; a missing
	// file is ignored. Defaults to ".env".
	EnvFile string
}

// Default returns the built-in settings.
func Default() Config {
	styles := overlay.DefaultStyles()
	return Config{
		Logging: LoggingConfig{Level: "warn", Format: "text"},
		Tracing: TracingConfig{
			Exporter:    "stdout",
			Endpoint:    "localhost:4317",
			ServiceName: "satcov",
			SampleRatio: 1,
		},
		Regions: RegionsConfig{LabelFields: append([]string(nil), core.DefaultLabelFields...)},
		Overlay: OverlayConfig{
			LineColor:   styles.LineColor,
			LineWidth:   styles.LineWidth,
			FillColor:   styles.FillColor,
			MarkerColor: styles.MarkerColor,
			MarkerScale: styles.MarkerScale,
			MarkerIcon:  styles.MarkerIcon,
			Open:        styles.Open,
		},
	}
}

// Load layers defaults, the config file and environment variables (highest
// priority) and validates the result.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: load %s: %v", ErrConfig, envFile, err)
	}

	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("%w: load defaults: %v", ErrConfig, err)
	}

	path, err := findConfigFile(opts.Path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: load config file %s: %v", ErrConfig, path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("%w: load environment: %v", ErrConfig, err)
	}
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile resolves the config file: an explicit path must exist, the
// SATCOV_CONFIG path and DefaultPath are used only when present.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil {
			return "", fmt.Errorf("%w: config file %s: %v", ErrConfig, explicit, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%w: config file %s is a directory", ErrConfig, explicit)
		}
		return explicit, nil
	}
	for _, p := range []string{os.Getenv(PathEnvVar), DefaultPath} {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", nil
}

// envMappings maps environment variable names (lowercased) to config paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"log_level":      "logging.level",
	"log_format":     "logging.format",
	"log_add_source": "logging.add_source",

	"satcov_tracing_enabled":      "tracing.enabled",
	"satcov_tracing_exporter":     "tracing.exporter",
	"satcov_otlp_endpoint":        "tracing.endpoint",
	"satcov_tracing_service_name": "tracing.service_name",
	"satcov_tracing_sample_ratio": "tracing.sample_ratio",

	"satcov_metrics_textfile": "metrics.textfile_path",

	"satcov_label_fields": "regions.label_fields",

	"satcov_line_color":   "overlay.line_color",
	"satcov_line_width":   "overlay.line_width",
	"satcov_fill_color":   "overlay.fill_color",
	"satcov_marker_color": "overlay.marker_color",
	"satcov_marker_scale": "overlay.marker_scale",
	"satcov_marker_icon":  "overlay.marker_icon",
	"satcov_open":         "overlay.open",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set from the
// environment.
var sliceConfigPaths = []string{"regions.label_fields"}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section and reports all failing fields at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("%w: %s", ErrConfig, strings.Join(msgs, "; "))
}

// LoggerConfig converts the logging section for logging.New.
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.AddSource,
	}
}

// TracerConfig converts the tracing section for observability.InitTracing.
func (c *Config) TracerConfig() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.Tracing.Enabled,
		ServiceName: c.Tracing.ServiceName,
		Exporter:    c.Tracing.Exporter,
		Endpoint:    c.Tracing.Endpoint,
		SampleRatio: c.Tracing.SampleRatio,
	}
}

// Styles converts the overlay section into KML styles.
func (c *Config) Styles() overlay.Styles {
	return overlay.Styles{
		LineColor:   c.Overlay.LineColor,
		LineWidth:   c.Overlay.LineWidth,
		FillColor:   c.Overlay.FillColor,
		MarkerColor: c.Overlay.MarkerColor,
		MarkerScale: c.Overlay.MarkerScale,
		MarkerIcon:  c.Overlay.MarkerIcon,
		Open:        c.Overlay.Open,
	}
}
