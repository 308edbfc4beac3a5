// Package config loads settings from built-in defaults, a TOML file and
// CIVICFEED_* environment variables, later sources overriding earlier ones.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JanConnect/JanConnect-sub001/internal/geo"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "CIVICFEED"

type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
	Token   string `mapstructure:"token"`
}

type FeedConfig struct {
	PageSize     int     `mapstructure:"page_size"`
	RadiusKm     float64 `mapstructure:"radius_km"`
	Location     string  `mapstructure:"location"`
	Municipality string  `mapstructure:"municipality"`
	Mode         string  `mapstructure:"mode"`
}

type UserConfig struct {
	ID string `mapstructure:"id"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Dir    string `mapstructure:"dir"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	JWTSecret      string   `mapstructure:"jwt_secret"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// SessionIdleMinutes evicts sessions with no requests for this long
	SessionIdleMinutes int `mapstructure:"session_idle_minutes"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Endpoint     string  `mapstructure:"endpoint"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
	ServiceName  string  `mapstructure:"service_name"`
}

type DemoConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Seed    uint64 `mapstructure:"seed"`
	Posts   int    `mapstructure:"posts"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Config is the full application configuration
type Config struct {
	Environment string          `mapstructure:"environment"`
	API         APIConfig       `mapstructure:"api"`
	Feed        FeedConfig      `mapstructure:"feed"`
	User        UserConfig      `mapstructure:"user"`
	Store       StoreConfig     `mapstructure:"store"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Server      ServerConfig    `mapstructure:"server"`
	Log         LogConfig       `mapstructure:"log"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	Demo        DemoConfig      `mapstructure:"demo"`
	Output      OutputConfig    `mapstructure:"output"`

	// File is the config file that was read, empty if none
	File string `mapstructure:"-"`
}

// DefaultDir returns ~/.config/civicfeed
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "civicfeed")
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("environment", "development")

	v.SetDefault("api.base_url", "http://localhost:8787")
	v.SetDefault("api.timeout", 30)
	v.SetDefault("api.token", "")

	v.SetDefault("feed.page_size", 20)
	v.SetDefault("feed.radius_km", 10.0)
	v.SetDefault("feed.location", "")
	v.SetDefault("feed.municipality", "")
	v.SetDefault("feed.mode", "trending_today")

	v.SetDefault("user.id", "local")

	v.SetDefault("store.driver", "file")
	v.SetDefault("store.dir", filepath.Join(dir, "state"))
	v.SetDefault("store.dsn", "")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("server.port", "8787")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.session_idle_minutes", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dir, "civicfeed.log"))

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4318")
	v.SetDefault("telemetry.sampling_rate", 0.1)
	v.SetDefault("telemetry.service_name", "civicfeed")

	v.SetDefault("demo.enabled", false)
	v.SetDefault("demo.seed", 2024)
	v.SetDefault("demo.posts", 60)

	v.SetDefault("output.format", "text")
}

// Load reads configuration. An explicit path must exist; the default
// path is optional.
func Load(path string) (*Config, error) {
	v := viper.New()
	dir := DefaultDir()
	setDefaults(v, dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("toml")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, "config.toml")
	}
	v.SetConfigFile(path)

	file := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		file = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = file
	cfg.Store.Dir = expandPath(cfg.Store.Dir)
	cfg.Log.File = expandPath(cfg.Log.File)
	return &cfg, nil
}

// APITimeout returns the API timeout as a duration
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.Timeout) * time.Second
}

// SessionIdle returns how long an unused server session is kept
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.Server.SessionIdleMinutes) * time.Minute
}

// UserLocation parses feed.location ("lat,lng"). It returns nil when unset.
func (c *Config) UserLocation() (*geo.Point, error) {
	return ParseLocation(c.Feed.Location)
}

// ParseLocation parses "lat,lng". An empty string yields nil.
func ParseLocation(s string) (*geo.Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("location %q must be \"lat,lng\"", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("location %q is out of range", s)
	}
	return &geo.Point{Lat: lat, Lng: lng}, nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
