package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Workbook WorkbookConfig `yaml:"workbook" envconfig:"WORKBOOK"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// WorkbookConfig locates the source workbook and the output artifacts
type WorkbookConfig struct {
	Input        string `yaml:"input" envconfig:"INPUT"`
	Output       string `yaml:"output" envconfig:"OUTPUT"`             // empty: write back to Input
	RatiosSheet  string `yaml:"ratios_sheet" envconfig:"RATIOS_SHEET"` // sheet name for results
	CSVPath      string `yaml:"csv_path" envconfig:"CSV_PATH"`         // optional CSV artifact
	GeometryFile string `yaml:"geometry_file" envconfig:"GEOMETRY_FILE"`
}

// PipelineConfig contains extraction and computation policy knobs
type PipelineConfig struct {
	// PeriodPolicy controls the merge consistency check: "identity"
	// requires all four statements to carry the same period sequence,
	// "intersection" keeps the ordered common subset of income-statement
	// and balance-sheet periods.
	PeriodPolicy string `yaml:"period_policy" envconfig:"PERIOD_POLICY" validate:"oneof=identity intersection"`
	// PurchasesProxy selects the A/P Turnover numerator when no explicit
	// purchases line exists: "cogs" or "cogs_plus_inventory_change".
	PurchasesProxy string `yaml:"purchases_proxy" envconfig:"PURCHASES_PROXY" validate:"oneof=cogs cogs_plus_inventory_change"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Defaults returns the baseline configuration before file and
// environment overrides are applied.
func Defaults() Config {
	return Config{
		Workbook: WorkbookConfig{
			RatiosSheet: "RATIOS",
		},
		Pipeline: PipelineConfig{
			PeriodPolicy:   "identity",
			PurchasesProxy: "cogs",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/ratios.log",
		},
	}
}

// Load assembles the configuration: defaults, then the YAML file at
// configPath if it exists, then RATIOS_* environment variables on top.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := loadFromFile(configPath, &cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	if err := envconfig.Process("RATIOS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile overlays configuration from a YAML file
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration for structural problems
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %q requires a file path", c.Logging.Output)
	}
	return nil
}

// OutputPath returns the workbook path results are saved to. An empty
// Output writes the RATIOS sheet back into the source workbook.
func (c *Config) OutputPath() string {
	if c.Workbook.Output != "" {
		return c.Workbook.Output
	}
	return c.Workbook.Input
}

// validate is the shared validator instance for this package
var validate = validator.New()
