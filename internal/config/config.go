// Package config loads stylecheck settings: a global YAML file deep-merged
// with an optional project file, then filled with defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxFileSize = int64(10_000_000)
	DefaultProvider    = "anthropic"
	DefaultModel       = "claude-sonnet-4-5"
	DefaultMaxTokens   = 2048
	DefaultTemperature = 0.2
	DefaultProfile     = "standard"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

const (
	globalDirName   = "stylecheck"
	globalFileName  = "config.yaml"
	projectFileName = ".stylecheck.yaml"
)

// Settings holds the merged configuration.
type Settings struct {
	Debug       bool          `yaml:"debug,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
	MaxFileSize int64         `yaml:"max_file_size,omitempty" validate:"gte=0"`
	Color       string        `yaml:"color,omitempty" validate:"omitempty,oneof=auto always never"`
	Review      Review        `yaml:"review,omitempty"`
}

// Review configures the optional LLM feedback command.
type Review struct {
	Provider  string `yaml:"provider,omitempty" validate:"omitempty,oneof=anthropic openai google"`
	Model     string `yaml:"model,omitempty"`
	MaxTokens int    `yaml:"max_tokens,omitempty" validate:"gte=0"`
	// Temperature is a pointer so an explicit 0 survives defaulting.
	Temperature *float64 `yaml:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	Profile     string   `yaml:"profile,omitempty"`
}

// EffectiveTemperature returns the configured temperature, or
// DefaultTemperature when unset.
func (r Review) EffectiveTemperature() float64 {
	if r.Temperature == nil {
		return DefaultTemperature
	}
	return *r.Temperature
}

// GlobalConfigFile returns the user-global config path
// (~/.config/stylecheck/config.yaml on Linux).
func GlobalConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", globalDirName, globalFileName)
	}
	return filepath.Join(dir, globalDirName, globalFileName)
}

// ProjectConfigFile returns the project-local config path.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(projectRoot, projectFileName)
}

// Load reads settings. When explicit is non-empty only that file is read and
// it must exist; otherwise global and project files are merged, and either
// may be absent.
func Load(explicit, projectRoot string) (*Settings, error) {
	if explicit != "" {
		s, err := loadFile(explicit)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		return withDefaults(s), nil
	}

	global, err := loadFile(GlobalConfigFile())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: loading global config: %w", err)
	}
	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: loading project config: %w", err)
	}
	return withDefaults(merge(global, project)), nil
}

// loadFile reads Settings from a YAML file. A missing file yields an error
// wrapping os.ErrNotExist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// settingsValidate checks Settings struct tags. Field names in errors are
// the YAML keys.
var settingsValidate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Settings) validate() error {
	err := settingsValidate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := strings.TrimPrefix(fe.Namespace(), "Settings.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %v fails %s=%s", key, fe.Value(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %v fails %s", key, fe.Value(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}

// merge deep-merges project settings onto global settings.
// Non-zero project values override global values.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global
	if project.Debug {
		result.Debug = true
	}
	if project.Timeout != 0 {
		result.Timeout = project.Timeout
	}
	if project.MaxFileSize != 0 {
		result.MaxFileSize = project.MaxFileSize
	}
	if project.Color != "" {
		result.Color = project.Color
	}
	if project.Review.Provider != "" {
		result.Review.Provider = project.Review.Provider
	}
	if project.Review.Model != "" {
		result.Review.Model = project.Review.Model
	}
	if project.Review.MaxTokens != 0 {
		result.Review.MaxTokens = project.Review.MaxTokens
	}
	if project.Review.Temperature != nil {
		result.Review.Temperature = project.Review.Temperature
	}
	if project.Review.Profile != "" {
		result.Review.Profile = project.Review.Profile
	}
	return &result
}

// withDefaults fills zero values with defaults.
func withDefaults(s *Settings) *Settings {
	if s == nil {
		s = &Settings{}
	}
	out := *s
	if out.Timeout == 0 {
		out.Timeout = DefaultTimeout
	}
	if out.MaxFileSize == 0 {
		out.MaxFileSize = DefaultMaxFileSize
	}
	if out.Color == "" {
		out.Color = ColorAuto
	}
	if out.Review.Provider == "" {
		out.Review.Provider = DefaultProvider
	}
	if out.Review.Model == "" {
		out.Review.Model = DefaultModel
	}
	if out.Review.MaxTokens == 0 {
		out.Review.MaxTokens = DefaultMaxTokens
	}
	if out.Review.Temperature == nil {
		t := DefaultTemperature
		out.Review.Temperature = &t
	}
	if out.Review.Profile == "" {
		out.Review.Profile = DefaultProfile
	}
	return &out
}
