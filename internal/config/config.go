package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/zonemap-backend-go/internal/logging"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment override, e.g. ZONEMAP_DB_PATH.
const envPrefix = "ZONEMAP"

// Config 应用配置
type Config struct {
	Port            string         `mapstructure:"port"`
	ShutdownTimeout time.Duration  `mapstructure:"shutdown_timeout"` // in-flight request drain on SIGTERM
	DBPath          string         `mapstructure:"db_path"`
	PublicBaseURL   string         `mapstructure:"public_base_url"` // origin/path used for share links
	Log             logging.Config `mapstructure:"log"`
	Upstream        UpstreamConfig `mapstructure:"upstream"`
	Redis           RedisConfig    `mapstructure:"redis"`
	Map             MapConfig      `mapstructure:"map"`
	RateLimit       RateConfig     `mapstructure:"rate_limit"`
}

// UpstreamConfig points at the zones endpoint that supplies raw zone records.
type UpstreamConfig struct {
	ZonesURL string        `mapstructure:"zones_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RedisConfig configures the optional envelope cache. Empty Addr disables it.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MapConfig holds render presentation defaults.
type MapConfig struct {
	ClusterRadiusPx float64 `mapstructure:"cluster_radius_px"`
	DefaultZoom     int     `mapstructure:"default_zoom"`
	MaxZoom         int     `mapstructure:"max_zoom"`
	SnapshotWidth   int     `mapstructure:"snapshot_width"`
	SnapshotHeight  int     `mapstructure:"snapshot_height"`
}

// RateConfig is the per-IP request budget.
type RateConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", ":8080")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("db_path", "./data/zones/zones.db")
	v.SetDefault("public_base_url", "http://localhost:8080/zones/map")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("upstream.zones_url", "http://localhost:8080/api/v1/zones")
	v.SetDefault("upstream.timeout", 15*time.Second)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("map.cluster_radius_px", 60.0)
	v.SetDefault("map.default_zoom", 12)
	v.SetDefault("map.max_zoom", 18)
	v.SetDefault("map.snapshot_width", 1024)
	v.SetDefault("map.snapshot_height", 768)
	v.SetDefault("rate_limit.limit", 120)
	v.SetDefault("rate_limit.window", time.Minute)
}

// Load 加载配置. configPath may be empty, in which case only defaults and
// ZONEMAP_* environment variables are used.
func Load(configPath string) (*Config, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that would otherwise fail at first use.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path must not be empty"))
	}
	if c.Map.MaxZoom <= 0 {
		errs = append(errs, errors.New("map.max_zoom must be positive"))
	}
	if c.Map.DefaultZoom < 0 || c.Map.DefaultZoom > c.Map.MaxZoom {
		errs = append(errs, fmt.Errorf("map.default_zoom must be within [0,%d]", c.Map.MaxZoom))
	}
	if c.Map.SnapshotWidth <= 0 || c.Map.SnapshotHeight <= 0 {
		errs = append(errs, errors.New("map snapshot size must be positive"))
	}
	if c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit limit and window must be positive"))
	}
	return errors.Join(errs...)
}
