package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	// DefaultHost is the backend base URL used when CTXC_HOST is unset or empty
	DefaultHost = "http://127.0.0.1:5173"

	// EnvPrefix is shared with the backend service settings
	EnvPrefix = "CTXC"

	// EnvHost overrides the backend base URL
	EnvHost = EnvPrefix + "_HOST"
)

// Config represents desktop shell configuration
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Window WindowConfig `mapstructure:"window"`
	Notify NotifyConfig `mapstructure:"notify"`
	Tray   TrayConfig   `mapstructure:"tray"`

	v *viper.Viper
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// WindowConfig represents main window configuration
type WindowConfig struct {
	Width       int  `mapstructure:"width"`
	Height      int  `mapstructure:"height"`
	StartHidden bool `mapstructure:"start_hidden"`
}

// NotifyConfig represents notification configuration
type NotifyConfig struct {
	Desktop bool `mapstructure:"desktop"` // Also show an OS notification next to the UI event
}

// TrayConfig represents system tray configuration
type TrayConfig struct {
	Title        string `mapstructure:"title"`
	Tooltip      string `mapstructure:"tooltip"`
	ReadyTimeout string `mapstructure:"ready_timeout"`
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("window.width", 1100)
	v.SetDefault("window.height", 760)
	v.SetDefault("window.start_hidden", true)
	v.SetDefault("notify.desktop", false)
	v.SetDefault("tray.title", "")
	v.SetDefault("tray.tooltip", "Context Cache")
	v.SetDefault("tray.ready_timeout", "10s")

	// CTXC_LOG_LEVEL, CTXC_WINDOW_WIDTH, ...
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load loads configuration from file. A missing file is only an error when
// configPath was given explicitly.
func Load(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("desktop")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/context-cache")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.v = v

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration. The backend host is not checked
// here: a bad CTXC_HOST only fails the requests that use it.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window.width and window.height must be positive")
	}
	return nil
}

// ValidateHost checks that host is an absolute http(s) URL
func ValidateHost(host string) error {
	u, err := url.Parse(host)
	if err != nil {
		return fmt.Errorf("host %q is not a valid URL: %w", host, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("host %q must use http or https", host)
	}
	if u.Host == "" {
		return fmt.Errorf("host %q has no address", host)
	}
	return nil
}

// Host returns the backend base URL. It comes from CTXC_HOST only, never
// from the config file, and is resolved on every call so a changed
// environment applies to the next request.
func (c *Config) Host() string {
	return HostFromEnv()
}

// HostFromEnv resolves the backend base URL from CTXC_HOST, falling back to
// DefaultHost when it is unset or blank
func HostFromEnv() string {
	host := strings.TrimSpace(os.Getenv(EnvHost))
	if host == "" {
		return DefaultHost
	}
	return host
}

// GetReadyTimeout returns how long to wait for the tray to come up
func (c *TrayConfig) GetReadyTimeout() time.Duration {
	if c.ReadyTimeout == "" {
		return 10 * time.Second
	}
	duration, err := time.ParseDuration(c.ReadyTimeout)
	if err != nil || duration <= 0 {
		return 10 * time.Second
	}
	return duration
}

// FileUsed returns the path of the loaded config file, if any
func (c *Config) FileUsed() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}

// Watch reports config file edits to onChange. It does nothing when no file
// was loaded. Edited settings apply on restart.
func (c *Config) Watch(onChange func(path string, op string)) {
	if c.FileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if onChange != nil {
			onChange(e.Name, e.Op.String())
		}
	})
	c.v.WatchConfig()
}
