package model

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Defaults used when neither the config file nor the environment set a value.
const (
	DefaultModel        = "deep-research-pro-preview-12-2025"
	DefaultThinkModel   = "gemini-2.0-flash-thinking-exp"
	DefaultAPIVersion   = "v1alpha"
	DefaultPollInterval = 10.0
	DefaultTimeoutSec   = 1800
	DefaultRecentLimit  = 20

	// MinPollInterval is the floor applied to the configured poll ceiling.
	MinPollInterval = 1.0

	envPrefix = "RESEARCH"
)

// ToolsConfig selects the grounding tools attached to remote requests.
type ToolsConfig struct {
	// GoogleSearch enables search grounding.
	GoogleSearch bool `mapstructure:"google_search" yaml:"google_search"`

	// URLContext lets the model fetch URLs mentioned in the query.
	URLContext bool `mapstructure:"url_context" yaml:"url_context"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// ConfigDir holds config.yaml, .env and the default database.
	ConfigDir string `mapstructure:"-" yaml:"-"`

	DBPath     string `mapstructure:"db_path" yaml:"db_path"`
	Model      string `mapstructure:"model" yaml:"model"`
	ThinkModel string `mapstructure:"think_model" yaml:"think_model"`

	// BaseURL overrides the remote API endpoint (GEMINI_API_BASE_URL).
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	APIVersion string `mapstructure:"api_version" yaml:"api_version"`

	// TimeoutSec bounds a single think request.
	TimeoutSec int `mapstructure:"timeout" yaml:"timeout"`

	// PollInterval is the ceiling, in seconds, for the polling backoff.
	PollInterval float64 `mapstructure:"poll_interval" yaml:"poll_interval"`

	// Verbose prints every thought summary instead of only updating the
	// progress line.
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`

	// Workspace is the directory reports may be written into.
	Workspace string `mapstructure:"workspace" yaml:"workspace"`

	RecentLimit int `mapstructure:"recent_limit" yaml:"recent_limit"`

	Tools ToolsConfig `mapstructure:"tools" yaml:"tools"`

	// MCPServers lists remote MCP server URLs attached as tools.
	MCPServers []string `mapstructure:"mcp_servers" yaml:"mcp_servers"`
}

// DefaultConfigDir returns $RESEARCH_CONFIG_DIR or ~/.research-cli.
func DefaultConfigDir() string {
	if dir := os.Getenv(envPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".research-cli"
	}
	return filepath.Join(home, ".research-cli")
}

// LoadConfig reads configuration from dir/config.yaml using Viper, with
// RESEARCH_* environment variables taking precedence. A .env file in dir is
// loaded into the process environment first. A missing config file is not
// an error.
func LoadConfig(dir string) (*AppConfig, error) {
	if err := LoadDotEnv(dir); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, "config.yaml"))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	v.SetDefault("db_path", filepath.Join(dir, "history.db"))
	v.SetDefault("model", DefaultModel)
	v.SetDefault("think_model", DefaultThinkModel)
	v.SetDefault("base_url", "")
	v.SetDefault("api_version", DefaultAPIVersion)
	v.SetDefault("timeout", DefaultTimeoutSec)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("verbose", false)
	v.SetDefault("workspace", cwd)
	v.SetDefault("recent_limit", DefaultRecentLimit)
	v.SetDefault("tools.google_search", false)
	v.SetDefault("tools.url_context", false)
	v.SetDefault("mcp_servers", []string{})

	// The base URL keeps the upstream SDK's variable name.
	if err := v.BindEnv("base_url", envPrefix+"_BASE_URL", "GEMINI_API_BASE_URL"); err != nil {
		return nil, fmt.Errorf("binding base_url: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// A malformed RESEARCH_POLL_INTERVAL falls back to the default rather
	// than failing the whole command.
	poll, err := strconv.ParseFloat(strings.TrimSpace(v.GetString("poll_interval")), 64)
	if err != nil {
		poll = DefaultPollInterval
	}
	v.Set("poll_interval", ClampPollInterval(poll))
	v.Set("mcp_servers", splitList(v.GetStringSlice("mcp_servers")))

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config in %s: %w", dir, err)
	}
	cfg.ConfigDir = dir

	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = DefaultRecentLimit
	}
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = DefaultTimeoutSec
	}

	return cfg, nil
}

// ClampPollInterval applies the 1.0 floor to a configured poll ceiling.
// Non-finite values fall back to DefaultPollInterval.
func ClampPollInterval(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultPollInterval
	}
	if v < MinPollInterval {
		return MinPollInterval
	}
	return v
}

// LoadDotEnv exports the variables of dir/.env that are not already set.
// Only the config directory is consulted, never the working directory.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, ok := os.LookupEnv(name); ok {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return fmt.Errorf("exporting %s: %w", name, err)
		}
	}

	return nil
}

// splitList flattens comma-separated entries and drops blanks.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, s := range strings.Split(item, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
