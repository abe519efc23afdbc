package config

import (
	"bytes"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyServerHost          = "server.host"
	KeyServerPort          = "server.port"
	KeySessionTimeoutHours = "server.session_timeout_hours"
	KeyStorageDB           = "storage.db"
	KeyStorageUploadDir    = "storage.upload_dir"
	KeyStorageOutputDir    = "storage.output_dir"
	KeyBreakTiers          = "rules.break_tiers"
	KeyBreakMarkers        = "rules.break_markers"
	KeyLunchMarkers        = "rules.lunch_markers"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Rules   RulesConfig   `mapstructure:"rules" validate:"required"`
	Audit   AuditConfig   `mapstructure:"audit"`
}

type ServerConfig struct {
	Host                string `mapstructure:"host" validate:"required"`
	Port                int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	SessionTimeoutHours int    `mapstructure:"session_timeout_hours" validate:"min=1"`
}

type StorageConfig struct {
	DBPath    string `mapstructure:"db" validate:"required"`
	UploadDir string `mapstructure:"upload_dir" validate:"required"`
	OutputDir string `mapstructure:"output_dir" validate:"required"`
}

// RulesConfig is the table-driven rule data: break entitlement tiers plus the
// marker substrings that classify procedure codes. Jurisdiction changes are a
// YAML edit, not a code change.
type RulesConfig struct {
	BreakTiers   []Tier   `mapstructure:"break_tiers" validate:"required,min=1"`
	BreakMarkers []string `mapstructure:"break_markers" validate:"required,min=1"`
	LunchMarkers []string `mapstructure:"lunch_markers" validate:"required,min=1"`
}

// Tier grants BreakMinutes once the day's work hours reach MinHours. The
// lower bound is inclusive.
type Tier struct {
	MinHours     float64 `mapstructure:"min_hours"`
	BreakMinutes int     `mapstructure:"break_minutes"`
}

type AuditConfig struct {
	DurationToleranceMinutes int     `mapstructure:"duration_tolerance_minutes" validate:"min=0"`
	ShiftGapMinutes          int     `mapstructure:"shift_gap_minutes" validate:"min=1"`
	DeficitHighMinutes       int     `mapstructure:"deficit_high_minutes" validate:"min=1"`
	MaxBreakRatio            float64 `mapstructure:"max_break_ratio" validate:"gt=0"`
	LongBreakMinutes         int     `mapstructure:"long_break_minutes" validate:"min=1"`
	ShortBreakMinutes        int     `mapstructure:"short_break_minutes" validate:"min=1"`
	LongLunchMinutes         int     `mapstructure:"long_lunch_minutes" validate:"min=1"`
	ShortLunchMinutes        int     `mapstructure:"short_lunch_minutes" validate:"min=1"`
	MinWorkHoursWithBreaks   float64 `mapstructure:"min_work_hours_with_breaks" validate:"gt=0"`
}

// SetDefaults sets default values if not provided.
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it.
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# breakaudit configuration
server:
  host: "127.0.0.1"
  port: 8000
  session_timeout_hours: 8

storage:
  db: "./breakaudit.db"
  upload_dir: "./uploads"
  output_dir: "./output"

# Break entitlement tiers: the highest tier whose min_hours is at or below
# the day's work hours applies. Below the lowest tier no break is required.
rules:
  break_tiers:
    - min_hours: 3.5
      break_minutes: 10
    - min_hours: 6
      break_minutes: 20
    - min_hours: 10
      break_minutes: 30
  break_markers: ["break"]
  lunch_markers: ["lunch"]

audit:
  duration_tolerance_minutes: 5
  shift_gap_minutes: 60
  deficit_high_minutes: 20
  max_break_ratio: 0.3
  long_break_minutes: 30
  short_break_minutes: 6
  long_lunch_minutes: 120
  short_lunch_minutes: 15
  min_work_hours_with_breaks: 2.0
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateTiers(cfg.Rules.BreakTiers); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerHost, "127.0.0.1")
	v.SetDefault(KeyServerPort, 8000)
	v.SetDefault(KeySessionTimeoutHours, 8)
	v.SetDefault(KeyStorageDB, "./breakaudit.db")
	v.SetDefault(KeyStorageUploadDir, "./uploads")
	v.SetDefault(KeyStorageOutputDir, "./output")
	v.SetDefault(KeyBreakTiers, []map[string]any{
		{"min_hours": 3.5, "break_minutes": 10},
		{"min_hours": 6.0, "break_minutes": 20},
		{"min_hours": 10.0, "break_minutes": 30},
	})
	v.SetDefault(KeyBreakMarkers, []string{"break"})
	v.SetDefault(KeyLunchMarkers, []string{"lunch"})
	v.SetDefault("audit.duration_tolerance_minutes", 5)
	v.SetDefault("audit.shift_gap_minutes", 60)
	v.SetDefault("audit.deficit_high_minutes", 20)
	v.SetDefault("audit.max_break_ratio", 0.3)
	v.SetDefault("audit.long_break_minutes", 30)
	v.SetDefault("audit.short_break_minutes", 6)
	v.SetDefault("audit.long_lunch_minutes", 120)
	v.SetDefault("audit.short_lunch_minutes", 15)
	v.SetDefault("audit.min_work_hours_with_breaks", 2.0)
}

func validateTiers(tiers []Tier) error {
	previous := -1.0
	for i, tier := range tiers {
		if tier.MinHours < 0 {
			return fmt.Errorf("validation failed: rules.break_tiers[%d].min_hours must not be negative", i)
		}
		if tier.MinHours <= previous {
			return fmt.Errorf("validation failed: rules.break_tiers[%d].min_hours must be greater than the previous tier", i)
		}
		if tier.BreakMinutes <= 0 {
			return fmt.Errorf("validation failed: rules.break_tiers[%d].break_minutes must be positive", i)
		}
		previous = tier.MinHours
	}
	return nil
}
