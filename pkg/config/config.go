package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// DefaultFile is read from the working directory when --config is unset.
	DefaultFile = "org-budget.toml"

	envPrefix = "ORG_BUDGET_"
)

// Config holds all configuration for the application
type Config struct {
	Input           string   `koanf:"input"`
	WebMode         bool     `koanf:"web"`
	Port            int      `koanf:"port"`
	Watch           bool     `koanf:"watch"`
	CaseInsensitive bool     `koanf:"case-insensitive"`
	Budgets         []string `koanf:"budget"`
	Format          string   `koanf:"format"`
	Verbosity       string   `koanf:"verbosity"`
	VerboseCnt      int      `koanf:"verbose"`
	JSONLogs        bool     `koanf:"json-logs"`
}

// RegisterFlags defines the flags Load understands on f.
func RegisterFlags(f *pflag.FlagSet) {
	f.String("config", DefaultFile, "Path to a TOML config file")
	f.StringP("input", "i", "", "Employee records file (tab-separated id,managerId,salary records)")
	f.Bool("web", false, "Serve the HTTP API instead of printing a report")
	f.Int("port", 8080, "Port for the HTTP API (with --web)")
	f.Bool("watch", false, "Rebuild the hierarchy when the input file changes (with --web)")
	f.Bool("case-insensitive", false, "Treat employee ids case-insensitively")
	f.StringSliceP("budget", "b", nil, "Only print budgets for these manager ids")
	f.String("format", "text", "Report format: text or json")
	f.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	f.Bool("json-logs", false, "Emit logs as JSON")
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"input":            "",
		"web":              false,
		"port":             8080,
		"watch":            false,
		"case-insensitive": false,
		"budget":           []string{},
		"format":           "text",
		"verbosity":        "",
		"verbose":          0,
		"json-logs":        false,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file. A missing default file is fine, a missing explicit one is not.
	path, explicit := configPath(f)
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// 3. Environment Variables
	// Prefix: ORG_BUDGET_ (e.g., ORG_BUDGET_CASE_INSENSITIVE=true)
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, envPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that koanf cannot.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("no input file given (use --input or ORG_BUDGET_INPUT)")
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("unknown format %q, want text or json", c.Format)
	}
	if c.WebMode && (c.Port <= 0 || c.Port > 65535) {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Watch && !c.WebMode {
		return errors.New("--watch only applies together with --web")
	}
	return nil
}

func configPath(f *pflag.FlagSet) (string, bool) {
	if f == nil || f.Lookup("config") == nil {
		return DefaultFile, false
	}
	path, _ := f.GetString("config")
	return path, f.Changed("config")
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
