package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Storage backends for the distribution ledger
const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
)

// CycleAnchorLayout is the date format of balanceCycleAnchor
const CycleAnchorLayout = "2006-01-02"

// DatabaseConfig selects where the distribution ledger is stored
type DatabaseConfig struct {
	Backend     string `yaml:"backend" validate:"required,oneof=sheets postgres"`
	SheetID     string `yaml:"sheetID,omitempty" validate:"required_if=Backend sheets"`
	PostgresURL string `yaml:"postgresURL,omitempty" env:"AD_DISTRIBUTOR_POSTGRES_URL" validate:"required_if=Backend postgres"`
}

// Config represents the application configuration
type Config struct {
	MarketingSheetID string         `yaml:"marketingSheetID" validate:"required"`
	ProjectsTab      string         `yaml:"projectsTab" validate:"required"`
	EmployeesTab     string         `yaml:"employeesTab" validate:"required"`
	RegionsTab       string         `yaml:"regionsTab" validate:"required"`
	Database         DatabaseConfig `yaml:"database"`

	// DefaultAdsAllowance is granted to employees without an AdsAllowance cell each balance cycle
	DefaultAdsAllowance int `yaml:"defaultAdsAllowance" validate:"min=0"`

	// BalanceCycle is an RRULE (e.g. "FREQ=MONTHLY;BYMONTHDAY=1") marking when balances reset
	BalanceCycle       string `yaml:"balanceCycle" validate:"required"`
	BalanceCycleAnchor string `yaml:"balanceCycleAnchor" validate:"required,datetime=2006-01-02"`

	NotifyEmployees bool   `yaml:"notifyEmployees,omitempty"`
	GmailSender     string `yaml:"gmailSender,omitempty" env:"AD_DISTRIBUTOR_GMAIL_SENDER" validate:"required_if=NotifyEmployees true"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads the configuration for an environment, e.g. env="prod" reads
// ad_distributor_config.prod.yaml from the current directory or the user's home directory
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Environment variables named in `env` tags override values from the file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks the balance cycle rule
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := cfg.BalanceCycleRule(); err != nil {
		return err
	}

	return nil
}

// BalanceCycleRule builds the balance cycle recurrence, starting at the anchor date (UTC midnight)
func (cfg *Config) BalanceCycleRule() (*rrule.RRule, error) {
	anchor, err := cfg.cycleAnchor()
	if err != nil {
		return nil, err
	}

	opt, err := rrule.StrToROption(cfg.BalanceCycle)
	if err != nil {
		return nil, fmt.Errorf("invalid rrule in balanceCycle: %w", err)
	}
	opt.Dtstart = anchor

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("invalid rrule in balanceCycle: %w", err)
	}

	return rule, nil
}

// CurrentCycleStart returns the start of the balance cycle containing now
func (cfg *Config) CurrentCycleStart(now time.Time) (time.Time, error) {
	rule, err := cfg.BalanceCycleRule()
	if err != nil {
		return time.Time{}, err
	}

	start := rule.Before(now, true)
	if start.IsZero() {
		// now precedes the first occurrence
		return cfg.cycleAnchor()
	}
	return start, nil
}

func (cfg *Config) cycleAnchor() (time.Time, error) {
	anchor, err := time.Parse(CycleAnchorLayout, cfg.BalanceCycleAnchor)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid balanceCycleAnchor: %w", err)
	}
	return anchor, nil
}

// findConfigFile searches for the environment's config file in the current directory and home directory
func findConfigFile(env string) (string, error) {
	name := "ad_distributor_config.yaml"
	if env != "" {
		name = "ad_distributor_config." + env + ".yaml"
	}
	return findInSearchPath(name)
}

// findInSearchPath returns the first existing path for name, checking the current directory then the home directory
func findInSearchPath(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
