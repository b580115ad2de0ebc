// Package config loads the camera-preview settings from defaults, an
// optional YAML file and CAMERA_PREVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix   = "CAMERA_PREVIEW"
	defaultName = ".camera-preview"
)

// Backend selects where camera frames come from.
type Backend string

const (
	BackendHeadless Backend = "headless"
	BackendProcess  Backend = "process"
	BackendMediadev Backend = "mediadev"
)

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Camera    CameraConfig    `mapstructure:"camera"`
	Viewport  ViewportConfig  `mapstructure:"viewport"`
	Torch     TorchConfig     `mapstructure:"torch"`
	Shutter   ShutterConfig   `mapstructure:"shutter"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	SessionSecret string `mapstructure:"session_secret"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
}

// AuthEnabled reports whether login is required for the camera API.
func (s ServerConfig) AuthEnabled() bool {
	return s.Username != "" && s.Password != ""
}

type CameraConfig struct {
	Backend     Backend `mapstructure:"backend"`
	Width       int     `mapstructure:"width"`
	Height      int     `mapstructure:"height"`
	FPS         int     `mapstructure:"fps"`
	Placeholder bool    `mapstructure:"placeholder"`
}

// ViewportConfig is the size of the virtual page the preview is laid out in.
type ViewportConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

type TorchConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Chip    string `mapstructure:"chip"`
	Pin     int    `mapstructure:"pin"`
}

type ShutterConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Sound is a .wav or .mp3 file; empty plays a synthesized click.
	Sound string `mapstructure:"sound"`
}

type WatchConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
	Timezone string `mapstructure:"timezone"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.session_secret", "")
	v.SetDefault("server.username", "")
	v.SetDefault("server.password", "")

	v.SetDefault("camera.backend", string(BackendHeadless))
	v.SetDefault("camera.width", 640)
	v.SetDefault("camera.height", 480)
	v.SetDefault("camera.fps", 30)
	v.SetDefault("camera.placeholder", true)

	v.SetDefault("viewport.width", 1280)
	v.SetDefault("viewport.height", 720)

	v.SetDefault("torch.enabled", false)
	v.SetDefault("torch.chip", "gpiochip0")
	v.SetDefault("torch.pin", 17)

	v.SetDefault("shutter.enabled", false)
	v.SetDefault("shutter.sound", "")

	v.SetDefault("watch.enabled", true)
	v.SetDefault("watch.schedule", "@every 30s")
	v.SetDefault("watch.timezone", "Local")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.service_name", "camera-preview")
}

// Load reads cfgFile, or $HOME/.camera-preview.yaml when cfgFile is empty.
// A missing default file is not an error; a missing explicit one is.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(defaultName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "camera-preview"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values viper cannot type-check.
func (c Config) Validate() error {
	switch c.Camera.Backend {
	case BackendHeadless, BackendProcess, BackendMediadev:
	default:
		return fmt.Errorf("unknown camera backend %q", c.Camera.Backend)
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %vx%v", c.Viewport.Width, c.Viewport.Height)
	}
	if (c.Server.Username == "") != (c.Server.Password == "") {
		return errors.New("server username and password must be set together")
	}
	if c.Server.AuthEnabled() && c.Server.SessionSecret == "" {
		return errors.New("server.session_secret is required when login is enabled")
	}
	return nil
}
