// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/scanbridge/scanbridge/internal/engine"
	"github.com/scanbridge/scanbridge/internal/props"
)

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// DefaultEngineCommand runs the SonarScanner CLI on the written file.
	DefaultEngineCommand = "sonar-scanner -Dproject.settings=$" + engine.PropertiesEnv
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level of log output.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Workers bounds concurrent module resolution; 0 uses every CPU.
		Workers int `json:"workers" mapstructure:"workers"`
		// LogLevel sets the minimum log level
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// ScanAll collects files outside the known source directories
		ScanAll bool `json:"scan_all" mapstructure:"scan_all"`
		// Skip lists module paths that emit no properties of their own.
		Skip []string `json:"skip" mapstructure:"skip"`
		// Exclusions are glob patterns ignored by scan-all collection.
		Exclusions []string `json:"exclusions" mapstructure:"exclusions"`
		// AndroidVariant selects the variant of modules that do not set one.
		AndroidVariant string `json:"android_variant" mapstructure:"android_variant"`
		// Properties are root overrides. They are kept out of Viper, which
		// would lowercase and split dotted keys.
		Properties map[string]string `json:"properties" mapstructure:"-"`
		// Engine configures the external analysis engine
		Engine EngineConfig `json:"engine" mapstructure:"engine"`
		// Output configures printed property maps
		Output OutputConfig `json:"output" mapstructure:"output"`
		// Path is the file the configuration was loaded from, if any.
		Path string `json:"-" mapstructure:"-"`
	}

	// EngineConfig configures the process engine.
	EngineConfig struct {
		// Command is the scanner command line, split with shell quoting rules
		Command string `json:"command" mapstructure:"command"`
		// PropertiesFile is written into WorkingDir before Command runs
		PropertiesFile string `json:"properties_file" mapstructure:"properties_file"`
		// WorkingDir overrides sonar.working.directory as the scanner's directory
		WorkingDir string `json:"working_dir" mapstructure:"working_dir"`
	}

	// OutputConfig configures how property maps are printed.
	OutputConfig struct {
		Format props.Format `json:"format" mapstructure:"format"`
	}
)

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// IsValid checks what the CUE schema cannot: glob syntax and values set
// through the environment.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if _, err := props.ParseFormat(string(c.Output.Format)); err != nil {
		errs = append(errs, err)
	}
	for _, s := range c.Skip {
		if !strings.HasPrefix(s, ":") {
			errs = append(errs, fmt.Errorf("skip: %q is not a module path (paths start with \":\")", s))
		}
	}
	for _, pattern := range c.Exclusions {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("exclusions: invalid glob %q", pattern))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Workers:    0,
		LogLevel:   LogLevelInfo,
		Skip:       []string{},
		Exclusions: []string{},
		Properties: map[string]string{},
		Engine: EngineConfig{
			Command:        DefaultEngineCommand,
			PropertiesFile: engine.DefaultPropertiesFile,
		},
		Output: OutputConfig{
			Format: props.FormatProperties,
		},
	}
}
