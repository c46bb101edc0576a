package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	BotToken        string  `yaml:"botToken" validate:"required"`
	DatabaseURL     string  `yaml:"databaseURL" validate:"required"`
	Language        string  `yaml:"language,omitempty" validate:"omitempty,oneof=ru en"`
	Superusers      []int64 `yaml:"superusers,omitempty"`
	CredentialsFile string  `yaml:"credentialsFile" validate:"required"`

	SpreadsheetID string `yaml:"spreadsheetID" validate:"required"`
	ResultSheet   string `yaml:"resultSheet" validate:"required"`
	ResultAnchor  string `yaml:"resultAnchor,omitempty"`
	BacklogSheet  string `yaml:"backlogSheet" validate:"required"`
	BacklogRange  string `yaml:"backlogRange,omitempty"`
	UserSheet     string `yaml:"userSheet" validate:"required"`
	AdminSheet    string `yaml:"adminSheet" validate:"required"`

	// ResyncRule is an RRULE string controlling the automatic backlog resync
	// cadence, e.g. "FREQ=DAILY;BYHOUR=6".
	ResyncRule string `yaml:"resyncRule,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from taskbot_config.yaml.
// It looks for the config file in the current directory first, then in the
// user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks the resync rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := rrule.StrToRRule(cfg.ResyncRule); err != nil {
		return fmt.Errorf("invalid resyncRule: %w", err)
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Language == "" {
		cfg.Language = "ru"
	}
	if cfg.ResultAnchor == "" {
		cfg.ResultAnchor = "A1"
	}
	if cfg.BacklogRange == "" {
		cfg.BacklogRange = "A2:K"
	}
	if cfg.ResyncRule == "" {
		cfg.ResyncRule = "FREQ=DAILY;BYHOUR=6;BYMINUTE=0"
	}
}

// findConfigFile searches for taskbot_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "taskbot_config.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
