package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Overlay key matching modes for reconciliation imports.
const (
	MatchFolded = "folded"
	MatchExact  = "exact"
)

// Config holds all configuration for the application
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Policy         PolicyConfig         `mapstructure:"policy"`
	Calendar       CalendarConfig       `mapstructure:"calendar"`
	Shifts         []ShiftConfig        `mapstructure:"shifts"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	RabbitMQ       RabbitMQConfig       `mapstructure:"rabbitmq"`
}

// AppConfig holds process-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	OutputDir   string `mapstructure:"output_dir"`
}

// PolicyConfig holds the attendance policy thresholds
type PolicyConfig struct {
	RequiredHours             float64 `mapstructure:"required_hours"`
	ViolationThresholdMinutes int     `mapstructure:"violation_threshold_minutes"`
	WorkedOffMinHours         float64 `mapstructure:"worked_off_min_hours"`
	HalfDayMinHours           float64 `mapstructure:"half_day_min_hours"`
	ShiftMismatchMinutes      int     `mapstructure:"shift_mismatch_minutes"`
}

// CalendarConfig holds weekly-off weekdays and holiday dates
type CalendarConfig struct {
	WeeklyOff []string        `mapstructure:"weekly_off"`
	Holidays  []HolidayConfig `mapstructure:"holidays"`
}

// HolidayConfig is one configured holiday (date in DD-MMM-YYYY)
type HolidayConfig struct {
	Date  string `mapstructure:"date"`
	Label string `mapstructure:"label"`
}

// ShiftConfig is one configured work schedule
type ShiftConfig struct {
	ID                   string `mapstructure:"id"`
	Name                 string `mapstructure:"name"`
	Start                string `mapstructure:"start"`
	End                  string `mapstructure:"end"`
	EarlyInGraceMinutes  int    `mapstructure:"early_in_grace_minutes"`
	LateInGraceMinutes   int    `mapstructure:"late_in_grace_minutes"`
	EarlyOutGraceMinutes int    `mapstructure:"early_out_grace_minutes"`
	AllowedLateCount     int    `mapstructure:"allowed_late_count"`
}

// ReconciliationConfig holds ledger behaviour settings
type ReconciliationConfig struct {
	OverlayKeyMatch string        `mapstructure:"overlay_key_match"`
	AutosaveDelay   time.Duration `mapstructure:"autosave_delay"`
	DefaultShiftID  string        `mapstructure:"default_shift_id"`
}

// RabbitMQConfig holds RabbitMQ connection configuration.
// An empty URL disables event publishing.
type RabbitMQConfig struct {
	URL            string        `mapstructure:"url"`
	Exchange       string        `mapstructure:"exchange"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	MaxRetries     int           `mapstructure:"max_retries"`
}

// Validate checks cross-field constraints viper cannot express.
func (c *Config) Validate() error {
	if c.Policy.RequiredHours <= 0 {
		return errors.New("policy.required_hours must be positive")
	}
	if c.Policy.ViolationThresholdMinutes < 0 {
		return errors.New("policy.violation_threshold_minutes must not be negative")
	}
	switch c.Reconciliation.OverlayKeyMatch {
	case MatchFolded, MatchExact:
	default:
		return fmt.Errorf("reconciliation.overlay_key_match must be %q or %q, got %q",
			MatchFolded, MatchExact, c.Reconciliation.OverlayKeyMatch)
	}
	if len(c.Shifts) == 0 {
		return errors.New("at least one shift must be configured")
	}
	if c.App.Environment == EnvProduction && strings.Contains(c.RabbitMQ.URL, "localhost") {
		return errors.New("ROLLCALL_RABBITMQ_URL must not point at localhost in " + c.App.Environment)
	}
	return nil
}

// Load reads configuration from defaults, an optional .env file, environment
// variables and an optional rollcall.yaml. configFile overrides the search path.
func Load(appName, configFile, envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, appName)

	v.SetEnvPrefix("ROLLCALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/rollcall")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.App.Environment = strings.ToLower(cfg.App.Environment)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads KEY=VALUE pairs without overriding variables already set.
// A missing default .env is not an error; a missing explicit file is.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper, appName string) {
	v.SetDefault("app.name", appName)
	v.SetDefault("app.environment", EnvDevelopment)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.output_dir", ".")

	v.SetDefault("policy.required_hours", 8.0)
	v.SetDefault("policy.violation_threshold_minutes", 60)
	v.SetDefault("policy.worked_off_min_hours", 4.0)
	v.SetDefault("policy.half_day_min_hours", 4.0)
	v.SetDefault("policy.shift_mismatch_minutes", 240)

	v.SetDefault("calendar.weekly_off", []string{"sunday"})
	v.SetDefault("calendar.holidays", []map[string]any{})

	v.SetDefault("shifts", []map[string]any{
		{
			"id":                      "GEN",
			"name":                    "General",
			"start":                   "09:00",
			"end":                     "18:00",
			"early_in_grace_minutes":  30,
			"late_in_grace_minutes":   10,
			"early_out_grace_minutes": 10,
			"allowed_late_count":      3,
		},
	})

	v.SetDefault("reconciliation.overlay_key_match", MatchFolded)
	v.SetDefault("reconciliation.autosave_delay", 1500*time.Millisecond)
	v.SetDefault("reconciliation.default_shift_id", "GEN")

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "attendance.events")
	v.SetDefault("rabbitmq.reconnect_delay", 5*time.Second)
	v.SetDefault("rabbitmq.max_retries", 5)
}
