// Package config loads the YAML configuration of the luajit runner.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/feather-lang/luajit"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "luajit.yaml"

// Config describes how the runner prepares an interpreter.
//
//	libraries: [base, string, table, math]
//	package_path:
//	  - ./lib/?.lua
//	globals:
//	  debug_mode: true
//	  retries: 3
//	log_level: debug
type Config struct {
	// Libraries to open. Empty means all of them.
	Libraries []string `yaml:"libraries"`

	// PackagePath entries are appended to package.path.
	PackagePath []string `yaml:"package_path"`

	// Globals are set before any script runs. Only strings, numbers and
	// booleans are allowed.
	Globals map[string]any `yaml:"globals"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Libraries: luajit.LibraryNames(),
		LogLevel:  "info",
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document. Missing fields take their
// values from [Default].
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if len(cfg.Libraries) == 0 {
		cfg.Libraries = luajit.LibraryNames()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks library names, global values and the log level, and
// drops duplicate libraries.
func (c *Config) Validate() error {
	known := luajit.LibraryNames()
	c.Libraries = lo.Uniq(c.Libraries)
	unknown := lo.Filter(c.Libraries, func(name string, _ int) bool {
		return !lo.Contains(known, name)
	})
	if len(unknown) > 0 {
		return errors.Errorf("unknown libraries %s (known: %s)",
			strings.Join(unknown, ", "), strings.Join(known, ", "))
	}

	for name, v := range c.Globals {
		switch v.(type) {
		case nil, string, int, float64, bool:
		default:
			return errors.Errorf("global %q: unsupported value of type %T", name, v)
		}
	}

	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, errors.Wrap(err, "log_level")
	}
	return lvl, nil
}

// Apply opens the configured libraries, extends package.path and sets the
// globals on l.
func (c *Config) Apply(l *luajit.State) error {
	for _, name := range c.Libraries {
		if err := l.OpenLibrary(name); err != nil {
			return err
		}
	}

	if len(c.PackagePath) > 0 {
		if err := appendPackagePath(l, c.PackagePath); err != nil {
			return err
		}
	}

	// Sorted for deterministic application order.
	names := lo.Keys(c.Globals)
	sort.Strings(names)
	for _, name := range names {
		l.Push(c.Globals[name])
		if err := l.SetGlobal(name); err != nil {
			return errors.Wrapf(err, "set global %q", name)
		}
	}

	l.Logger().Debug("configuration applied",
		zap.Stringer("id", l.ID()),
		zap.Strings("libraries", c.Libraries),
		zap.Int("globals", len(names)))
	return nil
}

func appendPackagePath(l *luajit.State, entries []string) error {
	top := l.Top()
	defer l.SetTop(top)

	if err := l.GetGlobal(luajit.PackageLibraryName); err != nil {
		return errors.Wrap(err, "package_path")
	}
	if !l.IsTable(-1) {
		return errors.New("package_path: the package library is not open")
	}
	if err := l.GetField(-1, "path"); err != nil {
		return errors.Wrap(err, "package_path")
	}
	current, _ := l.ToString(-1)
	l.Pop(1)

	l.PushString(fmt.Sprintf("%s;%s", current, strings.Join(entries, ";")))
	if err := l.SetField(-2, "path"); err != nil {
		return errors.Wrap(err, "package_path")
	}
	return nil
}
