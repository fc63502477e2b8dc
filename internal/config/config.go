package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/darkawower/reagentry/internal/logging"
	"github.com/darkawower/reagentry/internal/theme"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

const (
	DefaultServerAddr   = "127.0.0.1:8420"
	DefaultPollInterval = 5 * time.Second
	MinPollInterval     = time.Second
)

// Duration is a time.Duration written as a Go duration string ("5s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type ThemeSettings struct {
	Default string `toml:"default"`
}

type StateConfig struct {
	Path string `toml:"path"`
}

type AmbientConfig struct {
	PollInterval Duration `toml:"poll-interval"`
	Detect       bool     `toml:"detect"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type AssetsConfig struct {
	LogoLight     string `toml:"logo-light"`
	LogoDark      string `toml:"logo-dark"`
	BackdropLight string `toml:"backdrop-light"`
	BackdropDark  string `toml:"backdrop-dark"`
}

type Config struct {
	Theme   ThemeSettings `toml:"theme"`
	State   StateConfig   `toml:"state"`
	Ambient AmbientConfig `toml:"ambient"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
	Assets  AssetsConfig  `toml:"assets"`

	configPath string
}

func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "reagentry")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.toml")
}

func DefaultConfig() *Config {
	return &Config{
		Theme: ThemeSettings{
			Default: string(theme.Light),
		},
		State: StateConfig{
			Path: filepath.Join(DefaultConfigDir(), "state.json"),
		},
		Ambient: AmbientConfig{
			PollInterval: Duration{DefaultPollInterval},
			Detect:       true,
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Assets: AssetsConfig{
			LogoLight: "/static/logo-light.svg",
			LogoDark:  "/static/logo-dark.svg",
		},
	}
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	path = expandPath(path)

	cfg := DefaultConfig()
	cfg.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.postProcess()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) postProcess() {
	c.State.Path = expandPath(expandEnv(c.State.Path))
	c.Server.Addr = expandEnv(c.Server.Addr)
	c.Assets.BackdropLight = expandPath(expandEnv(c.Assets.BackdropLight))
	c.Assets.BackdropDark = expandPath(expandEnv(c.Assets.BackdropDark))
}

func (c *Config) Validate() error {
	if _, err := theme.Parse(c.Theme.Default); err != nil {
		return fmt.Errorf("%w: [theme] default: %w", ErrInvalid, err)
	}

	if c.State.Path == "" {
		return fmt.Errorf("%w: [state] path is required", ErrInvalid)
	}

	if c.Ambient.PollInterval.Duration < MinPollInterval {
		return fmt.Errorf("%w: [ambient] poll-interval must be at least %s, got %s",
			ErrInvalid, MinPollInterval, c.Ambient.PollInterval.Duration)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("%w: [server] addr is required", ErrInvalid)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: [log] %w", ErrInvalid, err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("%w: [log] %w", ErrInvalid, err)
	}

	return nil
}

// DefaultTheme returns the first-paint theme. Invalid values fall back to light.
func (c *Config) DefaultTheme() theme.Theme {
	t, err := theme.Parse(c.Theme.Default)
	if err != nil {
		return theme.Light
	}
	return t
}

// Logo returns the logo URL for t.
func (c *Config) Logo(t theme.Theme) string {
	return theme.Select(t, c.Assets.LogoLight, c.Assets.LogoDark)
}

// Backdrop returns the backdrop image path for t, or "".
func (c *Config) Backdrop(t theme.Theme) string {
	return theme.Select(t, c.Assets.BackdropLight, c.Assets.BackdropDark)
}

// LoggerConfig converts the [log] section into a logging configuration.
func (c *Config) LoggerConfig() logging.Config {
	level, _ := logging.ParseLevel(c.Log.Level)
	format, _ := logging.ParseFormat(c.Log.Format)
	return logging.Config{
		Level:  level,
		Format: format,
		Output: os.Stderr,
	}
}

func (c *Config) ConfigPath() string {
	return c.configPath
}

func (c *Config) Save(path string) error {
	if path == "" {
		path = c.configPath
	}
	if path == "" {
		path = DefaultConfigPath()
	}

	path = expandPath(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.State.Path),
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

func expandPath(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func expandEnv(s string) string {
	if s == "" {
		return ""
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		inner := s[2 : len(s)-1]

		if idx := strings.Index(inner, ":-"); idx != -1 {
			varName := inner[:idx]
			defaultVal := inner[idx+2:]
			if val := os.Getenv(varName); val != "" {
				return val
			}
			return defaultVal
		}

		return os.Getenv(inner)
	}

	if strings.HasPrefix(s, "$") && !strings.Contains(s, " ") {
		return os.Getenv(s[1:])
	}

	return s
}
