package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Defaults applied by Load when a field is left empty
const (
	DefaultBaselineLevel = "N"
	DefaultSolverBackend = "flow"
	DefaultSolverTimeout = 60 * time.Second
	DefaultManagerTab    = "manager"
	DefaultCategoryTab   = "category"
	DefaultLevelTab      = "level"
)

// SolverConfig selects the solver backend and its time budget
type SolverConfig struct {
	Backend string `yaml:"backend,omitempty" validate:"omitempty,oneof=flow simplex"`
	Timeout string `yaml:"timeout,omitempty"`
}

// OverlayConfig points at the configuration overlay, either a YAML file or a
// spreadsheet with manager, category and level tabs
type OverlayConfig struct {
	Path        string `yaml:"path,omitempty"`
	SheetID     string `yaml:"sheetID,omitempty"`
	ManagerTab  string `yaml:"managerTab,omitempty"`
	CategoryTab string `yaml:"categoryTab,omitempty"`
	LevelTab    string `yaml:"levelTab,omitempty"`
}

// ReportConfig controls where allocation reports are published
type ReportConfig struct {
	SheetID         string   `yaml:"sheetID,omitempty"`
	EmailRecipients []string `yaml:"emailRecipients,omitempty" validate:"omitempty,dive,email"`
	GmailUserID     string   `yaml:"gmailUserID,omitempty"`
	GmailSender     string   `yaml:"gmailSender,omitempty"`
}

// Config represents the application configuration
type Config struct {
	AppID               string        `yaml:"appID" validate:"required"`
	DatabaseURL         string        `yaml:"databaseURL" validate:"required"`
	Window              Window        `yaml:"window,omitempty"`
	BaselineLevel       string        `yaml:"baselineLevel,omitempty"`
	Solver              SolverConfig  `yaml:"solver,omitempty"`
	Overlay             OverlayConfig `yaml:"overlay,omitempty"`
	Report              ReportConfig  `yaml:"report,omitempty"`
	PersistRuns         bool          `yaml:"persistRuns,omitempty"`
	SessionPasswordHash string        `yaml:"sessionPasswordHash,omitempty"`
}

// SolverTimeout returns the configured time budget
func (c *Config) SolverTimeout() time.Duration {
	if c.Solver.Timeout == "" {
		return DefaultSolverTimeout
	}
	d, err := time.ParseDuration(c.Solver.Timeout)
	if err != nil {
		return DefaultSolverTimeout
	}
	return d
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from lead_allocator_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration with an environment suffix
// For example, env="test" will look for "lead_allocator_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
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

func applyDefaults(cfg *Config) {
	if cfg.BaselineLevel == "" {
		cfg.BaselineLevel = DefaultBaselineLevel
	}
	if cfg.Solver.Backend == "" {
		cfg.Solver.Backend = DefaultSolverBackend
	}
	if cfg.Overlay.ManagerTab == "" {
		cfg.Overlay.ManagerTab = DefaultManagerTab
	}
	if cfg.Overlay.CategoryTab == "" {
		cfg.Overlay.CategoryTab = DefaultCategoryTab
	}
	if cfg.Overlay.LevelTab == "" {
		cfg.Overlay.LevelTab = DefaultLevelTab
	}
}

// Validate validates the configuration struct and the fields tags cannot express
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.Window.Validate(); err != nil {
		return fmt.Errorf("invalid window: %w", err)
	}

	if cfg.Solver.Timeout != "" {
		d, err := time.ParseDuration(cfg.Solver.Timeout)
		if err != nil {
			return fmt.Errorf("invalid solver timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("solver timeout must be positive, got %s", cfg.Solver.Timeout)
		}
	}

	if cfg.Overlay.Path != "" && cfg.Overlay.SheetID != "" {
		return fmt.Errorf("overlay must set either path or sheetID, not both")
	}

	if len(cfg.Report.EmailRecipients) > 0 && cfg.Report.GmailUserID == "" {
		return fmt.Errorf("report.gmailUserID is required when emailRecipients are set")
	}

	if cfg.SessionPasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.SessionPasswordHash)); err != nil {
			return fmt.Errorf("invalid sessionPasswordHash: %w", err)
		}
	}

	return nil
}

func configFileName(env string) string {
	if env == "" {
		return "lead_allocator_config.yaml"
	}
	return "lead_allocator_config." + env + ".yaml"
}

func findConfigFile(env string) (string, error) {
	return locate(configFileName(env))
}

// locate returns name from the working directory, falling back to the home directory
func locate(name string) (string, error) {
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
