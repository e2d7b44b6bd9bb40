// Package config loads server settings from an optional YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the server configuration. Environment variables win over the
// file, which wins over Default.
type Config struct {
	Addr            string   `yaml:"addr" json:"addr" env:"PF_ADDR"`
	OriginAllowlist []string `yaml:"origin_allowlist" json:"origin_allowlist" env:"PF_ORIGIN_ALLOWLIST" envSeparator:","`
	DefaultRuleset  string   `yaml:"default_ruleset" json:"default_ruleset" env:"PF_DEFAULT_RULESET"`
	RulesDir        string   `yaml:"rules_dir" json:"rules_dir" env:"PF_RULES_DIR"`
	Animations      bool     `yaml:"animations" json:"animations" env:"PF_ANIMATIONS"`
	LogLevel        string   `yaml:"log_level" json:"log_level" env:"PF_LOG_LEVEL"`
}

// PathEnv names the variable holding the config file path.
const PathEnv = "PF_CONFIG"

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:           ":8080",
		DefaultRuleset: "klondike",
		RulesDir:       "rules",
		LogLevel:       "info",
	}
}

// Load reads path over Default and applies environment overrides. An empty
// path or a missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.OriginAllowlist = trim(cfg.OriginAllowlist)
	return cfg, cfg.Validate()
}

// FromEnv loads the file named by PF_CONFIG, if any.
func FromEnv() (Config, error) {
	return Load(os.Getenv(PathEnv))
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("config: addr is empty")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	if strings.TrimSpace(c.DefaultRuleset) == "" {
		return errors.New("config: default_ruleset is empty")
	}
	return nil
}

// Level returns the parsed log level. Validate has already vetted it.
func (c Config) Level() zapcore.Level {
	l, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// AllowedOrigins returns the allowlist, falling back to the local origins of
// Addr's port when none is configured.
func (c Config) AllowedOrigins() []string {
	if len(c.OriginAllowlist) > 0 {
		return c.OriginAllowlist
	}
	port := c.Addr[strings.LastIndex(c.Addr, ":")+1:]
	return []string{"http://localhost:" + port, "http://127.0.0.1:" + port}
}

func trim(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
