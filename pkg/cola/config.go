package cola

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cola-bdd/cola/pkg/binding"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration settings for cola.
// Settings are merged from all discovered config functions (last wins).
type Config struct {
	// FailFast stops execution on first scenario failure.
	FailFast bool `yaml:"fail_fast"`

	// DisableLog replaces the logger with one that discards all messages.
	DisableLog bool `yaml:"disable_log"`

	// Report prints the results of each run to stdout.
	Report bool `yaml:"report"`

	// NoColor disables ANSI colors in the report.
	NoColor bool `yaml:"no_color"`

	// HTMLReport is the path of an HTML report written after each run.
	HTMLReport string `yaml:"html_report"`

	// Tags is a tag expression selecting the scenarios to run
	// (e.g. "@smoke and not @slow"). Empty runs everything.
	Tags string `yaml:"tags"`

	// Features lists the directories searched for .feature files.
	// Default: the working directory.
	Features []string `yaml:"features"`

	// Dialect is the regular expression dialect of step patterns:
	// "re2" (default) or "java".
	Dialect string `yaml:"dialect" validate:"omitempty,oneof=re2 java"`

	// ExactTypes coerces step arguments by the declared parameter kind
	// instead of by assignability.
	ExactTypes bool `yaml:"exact_types"`

	// MatchTimeout bounds a single pattern match of the java dialect.
	MatchTimeout time.Duration `yaml:"match_timeout" validate:"gte=0"`

	// Logger sets a custom logger. If nil, slog.Default() is used.
	Logger Logger `yaml:"-"`
}

var validate = validator.New()

// DefaultConfigFile is read from the working directory when no other
// config file is set.
const DefaultConfigFile = "cola.yaml"

// LoadConfig reads a YAML config file. A missing file yields an empty config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// EngineOptions returns the binding options the config selects.
func (c *Config) EngineOptions() ([]binding.Option, error) {
	dialect, err := binding.ParseDialect(c.Dialect)
	if err != nil {
		return nil, err
	}

	opts := []binding.Option{binding.WithDialect(dialect)}
	if c.ExactTypes {
		opts = append(opts, binding.WithExactTypes())
	}
	if c.MatchTimeout > 0 {
		opts = append(opts, binding.WithMatchTimeout(c.MatchTimeout))
	}
	return opts, nil
}

// MergeConfigs combines multiple configs into one.
// Later configs override earlier ones (last wins).
func MergeConfigs(configs ...*Config) *Config {
	result := &Config{}

	for _, cfg := range configs {
		if cfg == nil {
			continue
		}

		if cfg.FailFast {
			result.FailFast = true
		}
		if cfg.DisableLog {
			result.DisableLog = true
		}
		if cfg.ExactTypes {
			result.ExactTypes = true
		}
		if cfg.Report {
			result.Report = true
		}
		if cfg.NoColor {
			result.NoColor = true
		}
		if cfg.HTMLReport != "" {
			result.HTMLReport = cfg.HTMLReport
		}
		if cfg.Tags != "" {
			result.Tags = cfg.Tags
		}
		if len(cfg.Features) > 0 {
			result.Features = cfg.Features
		}
		if cfg.Dialect != "" {
			result.Dialect = cfg.Dialect
		}
		if cfg.MatchTimeout > 0 {
			result.MatchTimeout = cfg.MatchTimeout
		}
		if cfg.Logger != nil {
			result.Logger = cfg.Logger
		}
	}

	return result
}
