package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"movrec/internal/errors"
	"movrec/pkg/contracts/domain"
)

// EnvPrefix is the prefix of every environment variable read by Load
const EnvPrefix = "MOVREC"

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" split_words:"true"`
	Logging   LoggingConfig   `yaml:"logging" split_words:"true"`
	Telemetry TelemetryConfig `yaml:"telemetry" split_words:"true"`
	Storage   StorageConfig   `yaml:"storage" split_words:"true"`
}

// PipelineConfig describes one cleaning run: where reviews come from, how
// they are laid out, and where the cleaned table goes.
type PipelineConfig struct {
	InputFiles     []string `yaml:"input_files" split_words:"true" validate:"required_without=InputDir,dive,required"`
	InputDir       string   `yaml:"input_dir" split_words:"true"`
	InputPattern   string   `yaml:"input_pattern" split_words:"true" validate:"required_with=InputDir"`
	Columns        []string `yaml:"columns" split_words:"true" validate:"min=1,unique,dive,required"`
	OutputFile     string   `yaml:"output_file" split_words:"true" validate:"required"`
	SanitizeColumn string   `yaml:"sanitize_column" split_words:"true" validate:"required"`
	DuplicateKey   string   `yaml:"duplicate_key" split_words:"true" validate:"required"`
	ReportFile     string   `yaml:"report_file" split_words:"true"`
	WorkbookFile   string   `yaml:"workbook_file" split_words:"true"`
	ManifestFile   string   `yaml:"manifest_file" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" split_words:"true" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" split_words:"true" validate:"oneof=json text"`
	Output      string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
	Development bool   `yaml:"development" split_words:"true"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" split_words:"true" validate:"required"`
	Environment   string `yaml:"environment" split_words:"true"`
	TraceExporter string `yaml:"trace_exporter" split_words:"true" validate:"oneof=none stdout"`
	MetricsFile   string `yaml:"metrics_file" split_words:"true"`
}

// StorageConfig contains the optional database sinks of the cleaned table
type StorageConfig struct {
	Table      string         `yaml:"table" split_words:"true" validate:"required"`
	SQLitePath string         `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	Postgres   PostgresConfig `yaml:"postgres" split_words:"true"`
}

// PostgresConfig enables the PostgreSQL sink and holds its connection
type PostgresConfig struct {
	Enabled  bool     `yaml:"enabled" split_words:"true"`
	Database DBConfig `yaml:"database" split_words:"true"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host" split_words:"true"`
	Port     int    `yaml:"port" split_words:"true" validate:"min=0,max=65535"`
	Name     string `yaml:"name" split_words:"true"`
	User     string `yaml:"user" split_words:"true"`
	Password string `yaml:"password" split_words:"true"`
	SSLMode  string `yaml:"ssl_mode" split_words:"true" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns int    `yaml:"max_conns" split_words:"true"`
	MinConns int    `yaml:"min_conns" split_words:"true"`
}

// Override mutates a loaded configuration before it is validated. Command
// line flags are applied this way.
type Override func(*Config)

// Load builds the configuration from defaults, an optional YAML file and
// MOVREC_* environment variables, in that order of increasing precedence.
// An empty path looks for config.yaml in the usual locations.
func Load(path string, overrides ...Override) (*Config, error) {
	cfg := Default()

	configFile := path
	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, errors.NewConfigError("failed to load config from file", err).
				WithContext("path", configFile)
		}
	}

	// fields without a matching variable keep their file or default value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from env", err)
	}

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use YAML key names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Validate checks struct constraints and the rules that span several fields
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.NewConfigError("config validation failed", err)
		}

		messages := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			messages = append(messages, formatValidationError(fe))
		}
		return errors.NewConfigError(strings.Join(messages, "; "), nil).
			WithContext("fields", len(messages))
	}

	if c.Storage.Postgres.Enabled {
		if err := c.Storage.Postgres.Database.validate("storage.postgres.database"); err != nil {
			return errors.NewConfigError(err.Error(), nil)
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Port < 1 {
		return fmt.Errorf("%s.port is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

// formatValidationError formats validation error messages
func formatValidationError(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_without":
		return fmt.Sprintf("%s is required when %s is empty", field, param)
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", field, param)
	case "required_unless":
		return fmt.Sprintf("%s is required unless %s", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// fieldPath turns "Config.pipeline.output_file" into "pipeline.output_file"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			InputFiles:     []string{"data/movrec_mtan.tsv", "data/movrec_emre.tsv"},
			InputPattern:   "*.tsv",
			Columns:        append([]string(nil), domain.ReviewColumns...),
			OutputFile:     "data/movie_data.tsv",
			SanitizeColumn: domain.ColumnUserReview,
			DuplicateKey:   domain.ColumnUserName,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/movrec.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "movrec",
			Environment:   "local",
			TraceExporter: "none",
		},
		Storage: StorageConfig{
			Table: "movie_reviews",
			Postgres: PostgresConfig{
				Database: DBConfig{
					Host:     "localhost",
					Port:     5432,
					SSLMode:  "prefer",
					MaxConns: 4,
					MinConns: 1,
				},
			},
		},
	}
}
