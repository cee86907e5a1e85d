// Package config loads the service's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort           = 8080
	defaultEnv            = "development"
	defaultAssetRoot      = "static"
	defaultBadgeImage     = "overlays/badge.png"
	defaultFetchTimeout   = 12 * time.Second
	defaultFrameInterval  = 16 * time.Millisecond
	defaultIdleTTL        = 30 * time.Minute
	defaultCanvasWidth    = 1280
	defaultCanvasHeight   = 720
	defaultMaxCanvas      = 4096
	maxCanvasLimit        = 16384
	defaultExportDir      = "exports"
	defaultExportTTL      = 24 * time.Hour
	defaultBadgeTextWidth = 50
	defaultBadgeLeading   = 1.1
)

// Export store kinds.
const (
	ExportsNone  = "none"
	ExportsLocal = "local"
	ExportsRedis = "redis"
	ExportsS3    = "s3"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int               `yaml:"port"`
	Env            string            `yaml:"env"` // "development" | "production"
	AllowedOrigins []string          `yaml:"allowed_origins"`
	Catalog        string            `yaml:"catalog"`
	Assets         AssetsConfig      `yaml:"assets"`
	Fonts          map[string]string `yaml:"fonts"`
	Badge          BadgeConfig       `yaml:"badge"`
	Layout         LayoutConfig      `yaml:"layout"`
	Sessions       SessionsConfig    `yaml:"sessions"`
	Exports        ExportsConfig     `yaml:"exports"`
}

type AssetsConfig struct {
	Root         string        `yaml:"root"`
	BadgeImage   string        `yaml:"badge_image"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// BadgeConfig supplies catalog defaults for badge label wrapping.
type BadgeConfig struct {
	TextWidth  float64 `yaml:"text_width"`
	LineHeight float64 `yaml:"line_height"`
}

type LayoutConfig struct {
	FrameInterval time.Duration `yaml:"frame_interval"`
}

type SessionsConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	DefaultWidth  int           `yaml:"default_width"`
	DefaultHeight int           `yaml:"default_height"`
	MaxWidth      int           `yaml:"max_width"`
	MaxHeight     int           `yaml:"max_height"`
}

type ExportsConfig struct {
	Kind      string        `yaml:"kind"`
	Dir       string        `yaml:"dir"`
	RedisURL  string        `yaml:"redis_url"`
	TTL       time.Duration `yaml:"ttl"`
	PublicURL string        `yaml:"public_url"`
	S3        S3Config      `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
}

// IsDev reports whether the service runs in development mode.
func (c *AppConfig) IsDev() bool {
	return c.Env != "production"
}

// Addr is the listen address.
func (c *AppConfig) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Default returns the configuration used when no file is present.
func Default() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Assets: AssetsConfig{
			Root:         defaultAssetRoot,
			BadgeImage:   defaultBadgeImage,
			FetchTimeout: defaultFetchTimeout,
		},
		Fonts: map[string]string{},
		Badge: BadgeConfig{
			TextWidth:  defaultBadgeTextWidth,
			LineHeight: defaultBadgeLeading,
		},
		Layout: LayoutConfig{FrameInterval: defaultFrameInterval},
		Sessions: SessionsConfig{
			IdleTTL:       defaultIdleTTL,
			DefaultWidth:  defaultCanvasWidth,
			DefaultHeight: defaultCanvasHeight,
			MaxWidth:      defaultMaxCanvas,
			MaxHeight:     defaultMaxCanvas,
		},
		Exports: ExportsConfig{
			Kind: ExportsLocal,
			Dir:  defaultExportDir,
			TTL:  defaultExportTTL,
		},
	}
}

// Load reads configPath. A missing file yields the defaults. The PORT
// environment variable overrides the configured port.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := Default()
	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	default:
		if err := Parse(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", p, err)
		}
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

// Parse decodes content over cfg. Unknown keys are rejected.
func Parse(content []byte, cfg *AppConfig) error {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return err
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.Exports.Kind = strings.ToLower(strings.TrimSpace(cfg.Exports.Kind))
	if cfg.Exports.Kind == "" {
		cfg.Exports.Kind = ExportsNone
	}
	if cfg.Fonts == nil {
		cfg.Fonts = map[string]string{}
	}
	return nil
}

// Validate checks ranges and required fields.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	switch c.Env {
	case "development", "production":
	default:
		return fmt.Errorf("invalid env %q, expected development or production", c.Env)
	}
	if c.Badge.TextWidth <= 0 || c.Badge.LineHeight <= 0 {
		return errors.New("badge.text_width and badge.line_height must be positive")
	}
	if c.Assets.FetchTimeout <= 0 {
		return errors.New("assets.fetch_timeout must be positive")
	}
	if c.Layout.FrameInterval <= 0 {
		return errors.New("layout.frame_interval must be positive")
	}
	if c.Sessions.DefaultWidth < 1 || c.Sessions.DefaultHeight < 1 {
		return fmt.Errorf("invalid default canvas %dx%d", c.Sessions.DefaultWidth, c.Sessions.DefaultHeight)
	}
	if c.Sessions.MaxWidth < 1 || c.Sessions.MaxWidth > maxCanvasLimit ||
		c.Sessions.MaxHeight < 1 || c.Sessions.MaxHeight > maxCanvasLimit {
		return fmt.Errorf("invalid sessions.max_width/max_height %dx%d, expected 1-%d",
			c.Sessions.MaxWidth, c.Sessions.MaxHeight, maxCanvasLimit)
	}
	if c.Sessions.DefaultWidth > c.Sessions.MaxWidth || c.Sessions.DefaultHeight > c.Sessions.MaxHeight {
		return fmt.Errorf("default canvas %dx%d exceeds sessions.max_width/max_height %dx%d",
			c.Sessions.DefaultWidth, c.Sessions.DefaultHeight, c.Sessions.MaxWidth, c.Sessions.MaxHeight)
	}
	switch c.Exports.Kind {
	case ExportsNone:
	case ExportsLocal:
		if strings.TrimSpace(c.Exports.Dir) == "" {
			return errors.New("exports.dir is required for local exports")
		}
	case ExportsRedis:
		if strings.TrimSpace(c.Exports.RedisURL) == "" {
			return errors.New("exports.redis_url is required for redis exports")
		}
	case ExportsS3:
		if c.Exports.S3.Bucket == "" || c.Exports.S3.Region == "" {
			return errors.New("exports.s3.bucket and exports.s3.region are required for s3 exports")
		}
	default:
		return fmt.Errorf("unknown exports.kind %q", c.Exports.Kind)
	}
	return nil
}
