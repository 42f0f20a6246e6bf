// Package config loads wiregen settings from an optional YAML file, WIREGEN_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/guregu/null.v3"
	"gopkg.in/yaml.v3"

	"github.com/wham/wiregen/internal/mapper"
)

// DefaultFile is read from the working directory when no file is named.
const DefaultFile = "wiregen.yaml"

const (
	CompilerProtoc     = "protoc"
	CompilerProtoparse = "protoparse"

	minWatchInterval = 100 * time.Millisecond
)

type Config struct {
	Compiler       string        `yaml:"compiler"`
	Protoc         string        `yaml:"protoc"`
	IncludePaths   []string      `yaml:"include_paths"`
	OutDir         string        `yaml:"out_dir"`
	Package        string        `yaml:"package"`
	FloatByteOrder string        `yaml:"float_byte_order"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	TempDir        string        `yaml:"temp_dir"`
	WatchInterval  time.Duration `yaml:"watch_interval"`
}

// envConfig mirrors Config for the environment layer; only variables that
// are set override the lower layers.
type envConfig struct {
	Compiler       null.String `envconfig:"WIREGEN_COMPILER"`
	Protoc         null.String `envconfig:"WIREGEN_PROTOC"`
	IncludePaths   null.String `envconfig:"WIREGEN_INCLUDE_PATHS"`
	OutDir         null.String `envconfig:"WIREGEN_OUT_DIR"`
	Package        null.String `envconfig:"WIREGEN_PACKAGE"`
	FloatByteOrder null.String `envconfig:"WIREGEN_FLOAT_BYTE_ORDER"`
	LogLevel       null.String `envconfig:"WIREGEN_LOG_LEVEL"`
	LogFormat      null.String `envconfig:"WIREGEN_LOG_FORMAT"`
	TempDir        null.String `envconfig:"WIREGEN_TEMP_DIR"`
	WatchInterval  null.String `envconfig:"WIREGEN_WATCH_INTERVAL"`
}

func Default() Config {
	return Config{
		Compiler:       CompilerProtoc,
		OutDir:         ".",
		FloatByteOrder: mapper.LittleEndian.String(),
		LogLevel:       logrus.InfoLevel.String(),
		LogFormat:      "text",
		WatchInterval:  time.Second,
	}
}

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// Load builds the configuration from the defaults, the file at path and the
// environment. A missing file is not an error unless required is set.
func Load(fs afero.Fs, path string, required bool, lookup LookupFunc, logger logrus.FieldLogger) (Config, error) {
	cfg := Default()
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if path != "" {
		if err := cfg.loadFile(fs, path, required, logger); err != nil {
			return cfg, err
		}
	}

	var env envConfig
	if err := envconfig.Process("", &env, lookup); err != nil {
		return cfg, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.applyEnv(env); err != nil {
		return cfg, err
	}

	cfg.normalize(logger)
	return cfg, nil
}

func (c *Config) loadFile(fs afero.Fs, path string, required bool, logger logrus.FieldLogger) error {
	logger.WithField("path", path).Debug("Trying to load configuration file")
	f, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			logger.WithField("path", path).Debug("Configuration file not found")
			return nil
		}
		return fmt.Errorf("failed to open configuration file %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(env envConfig) error {
	setString := func(dst *string, v null.String) {
		if v.Valid {
			*dst = v.String
		}
	}
	setString(&c.Compiler, env.Compiler)
	setString(&c.Protoc, env.Protoc)
	setString(&c.OutDir, env.OutDir)
	setString(&c.Package, env.Package)
	setString(&c.FloatByteOrder, env.FloatByteOrder)
	setString(&c.LogLevel, env.LogLevel)
	setString(&c.LogFormat, env.LogFormat)
	setString(&c.TempDir, env.TempDir)
	if env.IncludePaths.Valid {
		c.IncludePaths = filepath.SplitList(env.IncludePaths.String)
	}
	if env.WatchInterval.Valid {
		d, err := time.ParseDuration(env.WatchInterval.String)
		if err != nil {
			return fmt.Errorf("WIREGEN_WATCH_INTERVAL: %w", err)
		}
		c.WatchInterval = d
	}
	return nil
}

func (c *Config) normalize(logger logrus.FieldLogger) {
	c.Compiler = strings.ToLower(strings.TrimSpace(c.Compiler))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.FloatByteOrder = strings.TrimSpace(c.FloatByteOrder)

	if c.OutDir == "" {
		c.OutDir = "."
	}
	if cleaned := filepath.Clean(c.OutDir); cleaned != c.OutDir {
		logger.Debugf("out_dir normalized from %q to %q", c.OutDir, cleaned)
		c.OutDir = cleaned
	}

	seen := map[string]bool{}
	includes := make([]string, 0, len(c.IncludePaths))
	for _, inc := range c.IncludePaths {
		inc = strings.TrimSpace(inc)
		if inc == "" {
			continue
		}
		inc = filepath.Clean(inc)
		if seen[inc] {
			continue
		}
		seen[inc] = true
		includes = append(includes, inc)
	}
	if len(includes) == 0 {
		includes = nil
	}
	c.IncludePaths = includes

	if c.WatchInterval < minWatchInterval {
		logger.Debugf("watch_interval raised from %s to %s", c.WatchInterval, minWatchInterval)
		c.WatchInterval = minWatchInterval
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Compiler {
	case CompilerProtoc, CompilerProtoparse:
	default:
		errs = append(errs, fmt.Errorf("compiler %q is not supported, use %s or %s", c.Compiler, CompilerProtoc, CompilerProtoparse))
	}
	if _, err := mapper.ParseByteOrder(c.FloatByteOrder); err != nil {
		errs = append(errs, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format %q is not supported, use text or json", c.LogFormat))
	}
	return errors.Join(errs...)
}

// MapOptions returns the mapper settings. Validate must have passed.
func (c Config) MapOptions() mapper.Options {
	order, _ := mapper.ParseByteOrder(c.FloatByteOrder)
	return mapper.Options{FloatByteOrder: order}
}
