// Package config loads spinup's own settings: built-in defaults, an optional
// YAML settings file, a .env file and SPINUP_* environment variables, in
// increasing order of precedence.
//
// Settings never describe a single instance. The per-run request comes from
// the command line; settings only supply the defaults it falls back to.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/jbweber/spinup/internal/logger"
	"github.com/jbweber/spinup/internal/multipass"
	"github.com/jbweber/spinup/internal/output"
	"github.com/jbweber/spinup/internal/request"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfig        = "SPINUP_CONFIG"
	EnvMultipass     = "SPINUP_MULTIPASS"
	EnvImage         = "SPINUP_IMAGE"
	EnvCPUs          = "SPINUP_CPUS"
	EnvMemory        = "SPINUP_MEMORY"
	EnvDisk          = "SPINUP_DISK"
	EnvLaunchTimeout = "SPINUP_LAUNCH_TIMEOUT"
	EnvInitTimeout   = "SPINUP_INIT_TIMEOUT"
	EnvCheckConflict = "SPINUP_CHECK_CONFLICT"
	EnvLogLevel      = "SPINUP_LOG_LEVEL"
	EnvLogFormat     = "SPINUP_LOG_FORMAT"
	EnvOutput        = "SPINUP_OUTPUT"
)

// DotEnvFile is the .env file read from the working directory.
const DotEnvFile = ".env"

const (
	// DefaultLaunchTimeout covers slow image downloads and first boot.
	DefaultLaunchTimeout = time.Hour

	// DefaultInitTimeout bounds the wait for cloud-init.
	DefaultInitTimeout = 30 * time.Minute
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Settings are the tool-wide settings.
type Settings struct {
	MultipassPath     string        `yaml:"multipass_path"`
	Defaults          Defaults      `yaml:"defaults"`
	LaunchTimeout     time.Duration `yaml:"launch_timeout"`
	InitTimeout       time.Duration `yaml:"init_timeout"`
	CheckNameConflict *bool         `yaml:"check_name_conflict,omitempty"` // Pointer to distinguish unset vs false
	LogLevel          string        `yaml:"log_level"`
	LogFormat         string        `yaml:"log_format"`
	Output            string        `yaml:"output"`
}

// Defaults are the resource defaults applied to positional arguments that
// were not given.
type Defaults struct {
	ImageVersion string `yaml:"image_version"`
	CPUs         int    `yaml:"cpus"`
	Memory       string `yaml:"memory"`
	Disk         string `yaml:"disk"`
}

// Default returns the built-in settings.
func Default() *Settings {
	d := request.BuiltinDefaults()
	check := true
	return &Settings{
		MultipassPath: multipass.DefaultBinary,
		Defaults: Defaults{
			ImageVersion: d.ImageVersion,
			CPUs:         d.CPUs,
			Memory:       d.Memory,
			Disk:         d.Disk,
		},
		LaunchTimeout:     DefaultLaunchTimeout,
		InitTimeout:       DefaultInitTimeout,
		CheckNameConflict: &check,
		LogLevel:          "info",
		LogFormat:         "text",
		Output:            string(output.FormatText),
	}
}

// DefaultPath returns the settings file location: $SPINUP_CONFIG if set,
// otherwise spinup/config.yaml under the user config directory.
func DefaultPath(lookup LookupFunc) string {
	if p, ok := lookup(EnvConfig); ok && p != "" {
		return p
	}
	if xdg, ok := lookup("XDG_CONFIG_HOME"); ok && xdg != "" {
		return filepath.Join(xdg, "spinup", "config.yaml")
	}
	if home, ok := lookup("HOME"); ok && home != "" {
		return filepath.Join(home, ".config", "spinup", "config.yaml")
	}
	return ""
}

// LoadFromFile loads settings from a YAML file on top of the built-in
// defaults. Keys absent from the file keep their default values.
func LoadFromFile(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	defer func() { _ = f.Close() }()

	s := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Normalize user input before validation
	s.Normalize()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	return s, nil
}

// Load builds the effective settings. A missing settings file is not an
// error. Environment variables from lookup override the file.
func Load(path string, lookup LookupFunc) (*Settings, error) {
	log := logger.WithComponent("config")

	s := Default()
	if path != "" {
		loaded, err := LoadFromFile(path)
		switch {
		case err == nil:
			log.Debugf("loaded settings from %s", path)
			s = loaded
		case errors.Is(err, fs.ErrNotExist):
			log.Debugf("no settings file at %s, using defaults", path)
		default:
			return nil, err
		}
	}

	if err := s.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables that are already set are not overridden. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from SPINUP_* variables.
func (s *Settings) ApplyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
		}
		*dst = d
		return nil
	}

	str(EnvMultipass, &s.MultipassPath)
	str(EnvImage, &s.Defaults.ImageVersion)
	str(EnvMemory, &s.Defaults.Memory)
	str(EnvDisk, &s.Defaults.Disk)
	str(EnvLogLevel, &s.LogLevel)
	str(EnvLogFormat, &s.LogFormat)
	str(EnvOutput, &s.Output)

	if v, ok := lookup(EnvCPUs); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q: %w", EnvCPUs, v, err)
		}
		s.Defaults.CPUs = n
	}

	if err := dur(EnvLaunchTimeout, &s.LaunchTimeout); err != nil {
		return err
	}
	if err := dur(EnvInitTimeout, &s.InitTimeout); err != nil {
		return err
	}

	if v, ok := lookup(EnvCheckConflict); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q: %w", EnvCheckConflict, v, err)
		}
		s.CheckNameConflict = &b
	}

	return nil
}

// Normalize sanitizes user input to consistent formats.
// This is called automatically by LoadFromFile before validation.
func (s *Settings) Normalize() {
	s.MultipassPath = strings.TrimSpace(s.MultipassPath)
	if s.MultipassPath == "" {
		s.MultipassPath = multipass.DefaultBinary
	}

	s.Defaults.ImageVersion = strings.TrimSpace(s.Defaults.ImageVersion)
	s.Defaults.Memory = strings.ToUpper(strings.TrimSpace(s.Defaults.Memory))
	s.Defaults.Disk = strings.ToUpper(strings.TrimSpace(s.Defaults.Disk))

	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	s.LogFormat = strings.ToLower(strings.TrimSpace(s.LogFormat))
	s.Output = strings.ToLower(strings.TrimSpace(s.Output))

	if s.CheckNameConflict == nil {
		check := true
		s.CheckNameConflict = &check
	}
}

// Validate checks the settings for errors.
func (s *Settings) Validate() error {
	if s.Defaults.ImageVersion == "" {
		return fmt.Errorf("defaults.image_version is required")
	}
	if s.Defaults.CPUs <= 0 {
		return fmt.Errorf("defaults.cpus must be > 0, got %d", s.Defaults.CPUs)
	}
	if err := request.ValidateSize(s.Defaults.Memory); err != nil {
		return fmt.Errorf("defaults.memory %w", err)
	}
	if err := request.ValidateSize(s.Defaults.Disk); err != nil {
		return fmt.Errorf("defaults.disk %w", err)
	}
	if s.LaunchTimeout <= 0 {
		return fmt.Errorf("launch_timeout must be > 0, got %s", s.LaunchTimeout)
	}
	if s.InitTimeout <= 0 {
		return fmt.Errorf("init_timeout must be > 0, got %s", s.InitTimeout)
	}
	if s.LogLevel != "" {
		if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	switch s.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", s.LogFormat)
	}
	if s.Output != "" {
		if err := output.ValidateFormat(s.Output); err != nil {
			return fmt.Errorf("output: %w", err)
		}
	}
	return nil
}

// ResolverDefaults returns the defaults in the form the request resolver takes.
func (s *Settings) ResolverDefaults() request.Defaults {
	return request.Defaults{
		ImageVersion: s.Defaults.ImageVersion,
		CPUs:         s.Defaults.CPUs,
		Memory:       s.Defaults.Memory,
		Disk:         s.Defaults.Disk,
	}
}

// ConflictCheckEnabled reports whether to look for an existing instance
// with the same name before launching.
func (s *Settings) ConflictCheckEnabled() bool {
	return s.CheckNameConflict == nil || *s.CheckNameConflict
}
