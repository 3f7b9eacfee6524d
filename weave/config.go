package weave

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = ".weave.yaml"
	DefaultCacheDir   = ".weave-cache"
)

// Config represents the overall configuration with a name, a cache directory
// and the ordered list of rules.
type Config struct {
	Name  string `yaml:"name" toml:"name"`
	Cache string `yaml:"cache,omitempty" toml:"cache,omitempty"`
	Rules []Rule `yaml:"rules" toml:"rules"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// Rule applies one script to the files matched by Include.
type Rule struct {
	Name string `yaml:"name" toml:"name"`
	// Script is the path of a script file. Source holds an inline script and
	// wins over Script.
	Script string `yaml:"script,omitempty" toml:"script,omitempty"`
	Source string `yaml:"source,omitempty" toml:"source,omitempty"`
	// Include lists glob patterns of target files. "**" matches any number
	// of directories. An empty list matches every file.
	Include []string `yaml:"include,omitempty" toml:"include,omitempty"`
	// Language overrides the analyzer chosen from the file extension.
	Language string `yaml:"language,omitempty" toml:"language,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Name:  "weave",
		Cache: DefaultCacheDir,
		Rules: []Rule{},
	}
}

// LoadConfig reads a YAML or TOML configuration, chosen by the extension of
// path. Relative script and cache paths are resolved against the directory of
// path.
func LoadConfig(path string) (Config, error) {
	var config Config
	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &config); err != nil {
			return config, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	config.dir = filepath.Dir(path)

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// Validate checks that every rule is named once and has a script.
func (c Config) Validate() error {
	seen := map[string]bool{}
	for i, r := range c.Rules {
		if r.Name == "" {
			return fmt.Errorf("rule %d has no name", i+1)
		}
		if seen[r.Name] {
			return fmt.Errorf("rule %q is defined twice", r.Name)
		}
		seen[r.Name] = true
		if r.Script == "" && r.Source == "" {
			return fmt.Errorf("rule %q has neither script nor source", r.Name)
		}
	}
	return nil
}

// WriteConfig encodes config to path, as TOML when path ends in .toml and as
// YAML otherwise.
func WriteConfig(path string, config Config) error {
	var buf bytes.Buffer
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		if err := toml.NewEncoder(&buf).Encode(config); err != nil {
			return err
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(config); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func (c Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// CacheDir returns the cache directory, resolved against the configuration
// file. It is empty when caching is off.
func (c Config) CacheDir() string {
	return c.resolve(c.Cache)
}
