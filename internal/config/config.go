package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = ".stewardagent"
	configFileName = "config.yaml"

	// EnvServerURL overrides server.url without touching the file.
	EnvServerURL = "STEWARDAGENT_SERVER_URL"
)

var (
	allowedThemes = map[string]struct{}{
		"ocean":  {},
		"forest": {},
		"amber":  {},
	}
	allowedLogLevels = map[string]struct{}{
		"debug": {},
		"info":  {},
		"warn":  {},
		"error": {},
	}
)

type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	UI     UIConfig     `yaml:"ui" json:"ui"`
	Logs   LogsConfig   `yaml:"logs" json:"logs"`
	Serve  ServeConfig  `yaml:"serve" json:"serve"`
}

type ServerConfig struct {
	URL     string `yaml:"url" json:"url"`
	Timeout string `yaml:"timeout" json:"timeout"`
}

type UIConfig struct {
	PollInterval  string `yaml:"pollInterval" json:"pollInterval"`
	PlaybackSpeed string `yaml:"playbackSpeed" json:"playbackSpeed"`
	Theme         string `yaml:"theme" json:"theme"`
}

type LogsConfig struct {
	Path       string `yaml:"path" json:"path"`
	MaxSizeMB  int    `yaml:"maxSizeMB" json:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups" json:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays" json:"maxAgeDays"`
	Level      string `yaml:"level" json:"level"`
}

type ServeConfig struct {
	Addr        string   `yaml:"addr" json:"addr"`
	DBPath      string   `yaml:"dbPath" json:"dbPath"`
	CORSOrigins []string `yaml:"corsOrigins" json:"corsOrigins"`
	RepoURL     string   `yaml:"repoURL" json:"repoURL"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "http://localhost:8000",
			Timeout: "10s",
		},
		UI: UIConfig{
			PollInterval:  "3s",
			PlaybackSpeed: "2s",
			Theme:         "ocean",
		},
		Logs: LogsConfig{
			Path:       "",
			MaxSizeMB:  20,
			MaxBackups: 5,
			MaxAgeDays: 14,
			Level:      "info",
		},
		Serve: ServeConfig{
			Addr:        ":8000",
			DBPath:      "",
			CORSOrigins: []string{"*"},
			RepoURL:     "https://github.com/unknown/repository",
		},
	}
}

func FilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

func Load() (*Config, error) {
	path, err := FilePath()
	if err != nil {
		return nil, err
	}
	cfg := Default()
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// stay on defaults
	case err != nil:
		return nil, err
	case len(strings.TrimSpace(string(b))) == 0:
		// stay on defaults
	default:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		cfg.Server.URL = v
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}
	path, err := FilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func EnsureExists() (string, error) {
	path, err := FilePath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if err := Save(Default()); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(c.Server.URL) == "" {
		return fmt.Errorf("server.url cannot be empty")
	}
	if _, err := parsePositiveDuration(c.Server.Timeout, "server.timeout"); err != nil {
		return err
	}
	if _, err := parsePositiveDuration(c.UI.PollInterval, "ui.pollInterval"); err != nil {
		return err
	}
	if _, err := parsePositiveDuration(c.UI.PlaybackSpeed, "ui.playbackSpeed"); err != nil {
		return err
	}
	if err := validateTheme(c.UI.Theme, "ui.theme"); err != nil {
		return err
	}
	if c.Logs.MaxSizeMB < 1 || c.Logs.MaxSizeMB > 1024 {
		return fmt.Errorf("logs.maxSizeMB must be between 1 and 1024")
	}
	if c.Logs.MaxBackups < 0 || c.Logs.MaxBackups > 100 {
		return fmt.Errorf("logs.maxBackups must be between 0 and 100")
	}
	if c.Logs.MaxAgeDays < 0 || c.Logs.MaxAgeDays > 365 {
		return fmt.Errorf("logs.maxAgeDays must be between 0 and 365")
	}
	if _, ok := allowedLogLevels[c.Logs.Level]; !ok {
		return fmt.Errorf("logs.level must be one of: debug, info, warn, error")
	}
	if strings.TrimSpace(c.Serve.Addr) == "" {
		return fmt.Errorf("serve.addr cannot be empty")
	}
	if strings.TrimSpace(c.Serve.RepoURL) == "" {
		return fmt.Errorf("serve.repoURL cannot be empty")
	}
	return nil
}

// ServerTimeoutDuration falls back to 10s on a bad value so callers never
// end up with an unbounded request.
func (c *Config) ServerTimeoutDuration() time.Duration {
	return durationOr(c.Server.Timeout, 10*time.Second)
}

func (c *Config) PollIntervalDuration() time.Duration {
	return durationOr(c.UI.PollInterval, 3*time.Second)
}

func (c *Config) PlaybackSpeedDuration() time.Duration {
	return durationOr(c.UI.PlaybackSpeed, 2*time.Second)
}

// LogPath resolves logs.path, defaulting to a file beside the config.
func (c *Config) LogPath() (string, error) {
	if strings.TrimSpace(c.Logs.Path) != "" {
		return c.Logs.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, "stewardagent.log"), nil
}

// DBPath resolves serve.dbPath, defaulting to a file beside the config.
func (c *Config) DBPath() (string, error) {
	if strings.TrimSpace(c.Serve.DBPath) != "" {
		return c.Serve.DBPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, "events.db"), nil
}

func (c *Config) SetByKey(key, value string) error {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return fmt.Errorf("key cannot be empty")
	}
	v := strings.TrimSpace(value)
	switch k {
	case "server.url":
		c.Server.URL = v
	case "server.timeout":
		c.Server.Timeout = v
	case "ui.pollinterval", "ui.poll_interval":
		c.UI.PollInterval = v
	case "ui.playbackspeed", "ui.playback_speed":
		c.UI.PlaybackSpeed = v
	case "ui.theme":
		c.UI.Theme = strings.ToLower(v)
	case "logs.path":
		c.Logs.Path = v
	case "logs.maxsizemb", "logs.max_size_mb":
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("logs.maxSizeMB must be an integer")
		}
		c.Logs.MaxSizeMB = n
	case "logs.maxbackups", "logs.max_backups":
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("logs.maxBackups must be an integer")
		}
		c.Logs.MaxBackups = n
	case "logs.maxagedays", "logs.max_age_days":
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("logs.maxAgeDays must be an integer")
		}
		c.Logs.MaxAgeDays = n
	case "logs.level":
		c.Logs.Level = strings.ToLower(v)
	case "serve.addr":
		c.Serve.Addr = v
	case "serve.dbpath", "serve.db_path":
		c.Serve.DBPath = v
	case "serve.corsorigins", "serve.cors_origins":
		c.Serve.CORSOrigins = parseCSV(v)
	case "serve.repourl", "serve.repo_url":
		c.Serve.RepoURL = v
	default:
		return fmt.Errorf("unsupported key %q", key)
	}
	c.normalize()
	return c.Validate()
}

func (c *Config) GetByKey(key string) (any, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}
	switch k {
	case "server.url":
		return c.Server.URL, nil
	case "server.timeout":
		return c.Server.Timeout, nil
	case "ui.pollinterval", "ui.poll_interval":
		return c.UI.PollInterval, nil
	case "ui.playbackspeed", "ui.playback_speed":
		return c.UI.PlaybackSpeed, nil
	case "ui.theme":
		return c.UI.Theme, nil
	case "logs.path":
		return c.Logs.Path, nil
	case "logs.maxsizemb", "logs.max_size_mb":
		return c.Logs.MaxSizeMB, nil
	case "logs.maxbackups", "logs.max_backups":
		return c.Logs.MaxBackups, nil
	case "logs.maxagedays", "logs.max_age_days":
		return c.Logs.MaxAgeDays, nil
	case "logs.level":
		return c.Logs.Level, nil
	case "serve.addr":
		return c.Serve.Addr, nil
	case "serve.dbpath", "serve.db_path":
		return c.Serve.DBPath, nil
	case "serve.corsorigins", "serve.cors_origins":
		return append([]string(nil), c.Serve.CORSOrigins...), nil
	case "serve.repourl", "serve.repo_url":
		return c.Serve.RepoURL, nil
	default:
		return nil, fmt.Errorf("unsupported key %q", key)
	}
}

func (c *Config) ToYAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Config) ToJSON() (string, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func AllowedThemeNames() []string {
	out := make([]string, 0, len(allowedThemes))
	for k := range allowedThemes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *Config) normalize() {
	c.Server.URL = strings.TrimRight(strings.TrimSpace(c.Server.URL), "/")
	c.Server.Timeout = strings.TrimSpace(c.Server.Timeout)
	c.UI.PollInterval = strings.TrimSpace(c.UI.PollInterval)
	c.UI.PlaybackSpeed = strings.TrimSpace(c.UI.PlaybackSpeed)
	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	c.Logs.Path = strings.TrimSpace(c.Logs.Path)
	c.Logs.Level = strings.ToLower(strings.TrimSpace(c.Logs.Level))
	c.Serve.Addr = strings.TrimSpace(c.Serve.Addr)
	c.Serve.DBPath = strings.TrimSpace(c.Serve.DBPath)
	c.Serve.RepoURL = strings.TrimSpace(c.Serve.RepoURL)
	if c.Serve.CORSOrigins == nil {
		c.Serve.CORSOrigins = []string{}
	}
	c.Serve.CORSOrigins = dedupeTrimmed(c.Serve.CORSOrigins)
}

func parseCSV(v string) []string {
	if strings.TrimSpace(v) == "" {
		return []string{}
	}
	return dedupeTrimmed(strings.Split(v, ","))
}

func dedupeTrimmed(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func validateTheme(v, key string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	if _, ok := allowedThemes[v]; !ok {
		return fmt.Errorf("%s must be one of: %s", key, strings.Join(AllowedThemeNames(), ", "))
	}
	return nil
}

func parsePositiveDuration(v, key string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func durationOr(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
