package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/buddy-dubby/reselling-app/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Imaging   ImagingConfig   `mapstructure:"imaging"`
	Revalue   RevalueConfig   `mapstructure:"revalue"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig tunes the HTTP API.
type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	UploadDir   string   `mapstructure:"upload_dir"`
	MaxUploadMB int64    `mapstructure:"max_upload_mb"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity. Leaving the DSN empty
// keeps inventory in the JSON file store instead.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// InventoryConfig locates the JSON file store.
type InventoryConfig struct {
	Path string `mapstructure:"path"`
}

// ScraperConfig governs the sold-listing scrapers.
type ScraperConfig struct {
	Sites             []string      `mapstructure:"sites"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	SiteLimit         int           `mapstructure:"site_limit"`

	// Base URL overrides, one per marketplace. Empty means the real site.
	EBayBaseURL     string `mapstructure:"ebay_base_url"`
	PoshmarkBaseURL string `mapstructure:"poshmark_base_url"`
	MercariBaseURL  string `mapstructure:"mercari_base_url"`
	DepopBaseURL    string `mapstructure:"depop_base_url"`
}

// PricingConfig switches pricing behaviour.
type PricingConfig struct {
	LiveData bool `mapstructure:"live_data"`
}

// ImagingConfig points at the background-removal service.
type ImagingConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// RevalueConfig governs the periodic revaluation sweep.
type RevalueConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Interval     time.Duration `mapstructure:"interval"`
	AlignToClock bool          `mapstructure:"align_to_clock"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
}

// AlertingConfig defines price-drift alert thresholds and routing.
type AlertingConfig struct {
	Enabled      bool           `mapstructure:"enabled"`
	ThresholdPct float64        `mapstructure:"threshold_pct"`
	Channels     []string       `mapstructure:"channels"`
	Telegram     TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 告警参数。
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults. A .env file
// in the working directory is folded into the environment first, so secrets
// like the Telegram bot token can stay out of config.yaml.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RESELLAPP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "resellapp")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("server.port", 5050)
	v.SetDefault("server.upload_dir", "uploads")
	v.SetDefault("server.max_upload_mb", int64(16))

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("inventory.path", "inventory.json")

	v.SetDefault("scraper.sites", []string{"ebay", "poshmark", "mercari", "depop"})
	v.SetDefault("scraper.request_timeout", "10s")
	v.SetDefault("scraper.requests_per_second", 1.0)
	v.SetDefault("scraper.burst", 4)
	v.SetDefault("scraper.site_limit", 15)

	v.SetDefault("pricing.live_data", true)

	v.SetDefault("imaging.request_timeout", "60s")

	v.SetDefault("revalue.enabled", false)
	v.SetDefault("revalue.interval", "24h")
	v.SetDefault("revalue.align_to_clock", false)
	v.SetDefault("revalue.startup_delay", "0s")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.threshold_pct", 10.0)
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 1000)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be greater than zero")
	}
	if c.Inventory.Path == "" && c.Database.DSN == "" {
		return fmt.Errorf("inventory.path is required when database.dsn is not set")
	}
	if c.Scraper.RequestTimeout <= 0 {
		return fmt.Errorf("scraper.request_timeout must be greater than zero")
	}
	if c.Scraper.SiteLimit <= 0 {
		return fmt.Errorf("scraper.site_limit must be greater than zero")
	}
	if c.Revalue.Interval <= 0 {
		return fmt.Errorf("revalue.interval must be greater than zero")
	}
	if c.Alerting.ThresholdPct < 0 {
		return fmt.Errorf("alerting.threshold_pct cannot be negative")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}

// MaxUploadBytes converts the configured upload cap to bytes.
func (c *ServerConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
