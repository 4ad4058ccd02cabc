package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "github.com/alexisbeaulieu97/snippetrunner/pkg/errors"
)

// Environment variables that override file settings.
const (
	EnvStoreURL      = "SNIPPET_MANAGER_URL"
	EnvAddress       = "SNIPPETRUNNER_ADDR"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
	EnvKafkaBrokers  = "KAFKA_BROKERS"
	EnvKafkaTopic    = "KAFKA_TOPIC"
	EnvEngineVersion = "ENGINE_VERSION"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Loader assembles a Config from defaults, an optional YAML file and the environment.
type Loader struct {
	lookup  func(string) (string, bool)
	envFile string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLookup replaces os.LookupEnv.
func WithLookup(lookup func(string) (string, bool)) LoaderOption {
	return func(l *Loader) {
		if lookup != nil {
			l.lookup = lookup
		}
	}
}

// WithEnvFile loads variables from path before overrides are applied. A
// missing file is ignored.
func WithEnvFile(path string) LoaderOption {
	return func(l *Loader) {
		l.envFile = path
	}
}

// NewLoader returns a Loader reading the process environment.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load is shorthand for NewLoader(WithEnvFile(".env")).Load(path).
func Load(path string) (*Config, error) {
	return NewLoader(WithEnvFile(".env")).Load(path)
}

// Load reads path (skipped when empty), applies overrides and validates the result.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.NewParseError(path, 0, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, apperrors.NewParseError(path, extractLine(err), err)
		}
	}

	if err := l.loadEnvFile(); err != nil {
		return nil, err
	}
	l.applyOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *Loader) loadEnvFile() error {
	if l.envFile == "" {
		return nil
	}
	values, err := godotenv.Read(l.envFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return apperrors.NewParseError(l.envFile, 0, err)
	}

	base := l.lookup
	l.lookup = func(key string) (string, bool) {
		if v, ok := base(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}
	return nil
}

func (l *Loader) applyOverrides(cfg *Config) {
	if v, ok := l.value(EnvStoreURL); ok {
		cfg.Store.BaseURL = v
	}
	if v, ok := l.value(EnvAddress); ok {
		cfg.Server.Address = v
	}
	if v, ok := l.value(EnvLogLevel); ok {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := l.value(EnvLogFormat); ok {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v, ok := l.value(EnvKafkaBrokers); ok {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v, ok := l.value(EnvKafkaTopic); ok {
		cfg.Kafka.Topic = v
	}
	if v, ok := l.value(EnvEngineVersion); ok {
		cfg.Engine.Version = v
	}
}

func (l *Loader) value(key string) (string, bool) {
	v, ok := l.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}
