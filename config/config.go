// Package config loads the settings of a test run.
//
// Settings are read, in increasing order of priority, from built-in defaults, an optional
// YAML file, environment variables prefixed with ARTEMIS_, and command-line overrides.
// Nested keys are separated by a double underscore in environment variable names, so
// ARTEMIS_COMMANDS__READ_DATA sets commands.read_data.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the prefix of the environment variables that are read.
const DefaultEnvPrefix = "ARTEMIS_"

const (
	KeyURL               = "url"
	KeyResponseFilePath  = "response_file_path"
	KeyReferenceFilePath = "reference_file_path"
	KeyStatusTimeout     = "status_timeout"
)

// ErrNoResponseFilePath is returned by Validate when RESPONSE_FILE_PATH is not set.
var ErrNoResponseFilePath = errors.New("RESPONSE_FILE_PATH is required (set response_file_path or ARTEMIS_RESPONSE_FILE_PATH)")

// Config holds the settings of a test run.
type Config struct {
	// URL is the API root point that test URLs are relative to.
	URL string `koanf:"url"`
	// ResponseFilePath is the directory where responses are recorded.
	ResponseFilePath string `koanf:"response_file_path"`
	// ReferenceFilePath is the directory of the reference responses. If empty, responses are
	// only recorded.
	ReferenceFilePath string `koanf:"reference_file_path"`
	// StatusTimeout is how long to wait for the service to answer before running the tests.
	StatusTimeout time.Duration `koanf:"status_timeout"`
	Commands      Commands      `koanf:"commands"`
}

// Commands are the external commands bound to the bootstrap hooks of every fixture. Each is a
// program followed by its arguments.
type Commands struct {
	Tyr                []string   `koanf:"tyr"`
	AdditionalServices [][]string `koanf:"additional_services"`
	ReadData           []string   `koanf:"read_data"`
	Kraken             []string   `koanf:"kraken"`
	Jormungandr        []string   `koanf:"jormungandr"`
	Teardown           []string   `koanf:"teardown"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		KeyURL:           "http://localhost:5000",
		KeyStatusTimeout: "10s",
	}
}

// Validate checks the settings that the test run cannot do without.
func (c Config) Validate() error {
	if c.ResponseFilePath == "" {
		return ErrNoResponseFilePath
	}
	if c.StatusTimeout < 0 {
		return fmt.Errorf("status_timeout must not be negative, got %s", c.StatusTimeout)
	}
	return nil
}

// Loader reads settings from all sources.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
}

// Option configures a Loader.
type Option func(*Loader)

func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads all sources, with overrides taking precedence over everything else, and returns
// the validated settings.
func (l *Loader) Load(overrides map[string]any) (Config, error) {
	if err := l.k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if l.filePath != "" {
		if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", l.filePath, err)
		}
	}
	if err := l.k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}
	if len(overrides) > 0 {
		if err := l.k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return Config{}, fmt.Errorf("load overrides: %w", err)
		}
	}

	var c Config
	if err := l.k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// envKey turns ARTEMIS_COMMANDS__READ_DATA into commands.read_data.
func (l *Loader) envKey(s string) string {
	s = strings.TrimPrefix(s, l.envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}
