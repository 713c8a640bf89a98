package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/docscache/cache"
	"github.com/jonwraymond/docscache/observe"
)

// Environment variable names.
const (
	EnvCacheDir        = "CACHE_DIR"
	EnvCacheTTL        = "CACHE_TTL"
	EnvCacheErrors     = "CACHE_ERRORS"
	EnvLogLevel        = "LOG_LEVEL"
	EnvServiceName     = "OTEL_SERVICE_NAME"
	EnvTracingExporter = "TRACING_EXPORTER"
	EnvMetricsExporter = "METRICS_EXPORTER"
	EnvListenAddr      = "LISTEN_ADDR"
)

// DefaultEnvFile is the .env file read when none is named.
const DefaultEnvFile = ".env"

// Settings is the resolved process configuration.
type Settings struct {
	CacheDir string `yaml:"cache_dir"`

	// CacheTTL is kept raw; Policy parses it so that a bad value falls back
	// to the default TTL instead of failing startup.
	CacheTTL    string `yaml:"cache_ttl"`
	CacheErrors bool   `yaml:"cache_errors"`

	LogLevel        string `yaml:"log_level"`
	ServiceName     string `yaml:"service_name"`
	TracingExporter string `yaml:"tracing_exporter"`
	MetricsExporter string `yaml:"metrics_exporter"`
	ListenAddr      string `yaml:"listen_addr"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		CacheDir:        cache.DefaultRoot,
		LogLevel:        "info",
		ServiceName:     "docscache",
		TracingExporter: "none",
		MetricsExporter: "none",
		ListenAddr:      ":8080",
	}
}

// Loader reads Settings from files and the environment.
type Loader struct {
	// ConfigFile is an optional YAML file. A named file that does not exist
	// is an error. ${VAR} references in it are expanded from the environment
	// and the .env file before parsing.
	ConfigFile string

	// EnvFile is an optional .env file. A missing file is ignored.
	EnvFile string

	// LookupEnv reads the process environment. Nil means os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// Load resolves Settings using configFile and the default .env file.
func Load(configFile string) (Settings, error) {
	return Loader{ConfigFile: configFile, EnvFile: DefaultEnvFile}.Load()
}

// Load resolves and validates Settings.
func (l Loader) Load() (Settings, error) {
	s := Defaults()

	dotenv := map[string]string{}
	if l.EnvFile != "" {
		m, err := godotenv.Read(l.EnvFile)
		switch {
		case err == nil:
			dotenv = m
		case !errors.Is(err, fs.ErrNotExist):
			return Settings{}, fmt.Errorf("config: reading %s: %w", l.EnvFile, err)
		}
	}

	lookupEnv := l.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	// real environment wins over .env
	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if l.ConfigFile != "" {
		data, err := os.ReadFile(l.ConfigFile)
		if err != nil {
			return Settings{}, fmt.Errorf("config: reading %s: %w", l.ConfigFile, err)
		}
		expanded, err := expandStrict(string(data), lookup)
		if err != nil {
			return Settings{}, fmt.Errorf("config: %s: %w", l.ConfigFile, err)
		}
		if err := yaml.Unmarshal([]byte(expanded), &s); err != nil {
			return Settings{}, fmt.Errorf("config: parsing YAML %s: %w", l.ConfigFile, err)
		}
	}

	if err := s.applyEnv(lookup); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvCacheDir:        &s.CacheDir,
		EnvCacheTTL:        &s.CacheTTL,
		EnvLogLevel:        &s.LogLevel,
		EnvServiceName:     &s.ServiceName,
		EnvTracingExporter: &s.TracingExporter,
		EnvMetricsExporter: &s.MetricsExporter,
		EnvListenAddr:      &s.ListenAddr,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvCacheErrors); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidCacheErrors, v)
		}
		s.CacheErrors = b
	}
	return nil
}

// Validate checks the settings. CacheTTL is never rejected.
func (s Settings) Validate() error {
	if s.CacheDir == "" {
		return ErrMissingCacheDir
	}
	if s.ListenAddr == "" {
		return ErrInvalidListenAddr
	}
	cfg := s.Observe("")
	return cfg.Validate()
}

// Policy resolves the caching policy.
func (s Settings) Policy() cache.Policy {
	return cache.Policy{
		TTL:         cache.ParseTTL(s.CacheTTL),
		CacheErrors: s.CacheErrors,
	}
}

// Observe builds the observer configuration. Tracing and metrics are
// enabled unless their exporter is "none" or empty.
func (s Settings) Observe(version string) observe.Config {
	return observe.Config{
		ServiceName: s.ServiceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   exporterEnabled(s.TracingExporter),
			Exporter:  s.TracingExporter,
			SamplePct: 1.0,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  exporterEnabled(s.MetricsExporter),
			Exporter: s.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   s.LogLevel,
		},
	}
}

func exporterEnabled(name string) bool {
	return name != "" && name != "none"
}
