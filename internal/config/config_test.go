package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: 5050, MaxUploadMB: 16},
		Inventory: InventoryConfig{Path: "inventory.json"},
		Scraper:   ScraperConfig{RequestTimeout: 10 * time.Second, SiteLimit: 15},
		Revalue:   RevalueConfig{Interval: time.Hour},
		Export:    ExportConfig{MaxDataPoints: 100},
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, "app:\n  name: resellapp\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 5050 {
		t.Fatalf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxUploadBytes() != 16<<20 {
		t.Fatalf("upload cap: got %d bytes", cfg.Server.MaxUploadBytes())
	}
	if cfg.Revalue.Interval != 24*time.Hour {
		t.Fatalf("revalue interval: got %s", cfg.Revalue.Interval)
	}
	if len(cfg.Scraper.Sites) != 4 {
		t.Fatalf("default sites: got %v", cfg.Scraper.Sites)
	}
	if !cfg.Pricing.LiveData {
		t.Fatal("live data should default on")
	}
	if cfg.Inventory.Path != "inventory.json" {
		t.Fatalf("inventory path: got %q", cfg.Inventory.Path)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, `server:
  port: 8080
  cors_origins:
    - http://localhost:5173
scraper:
  sites:
    - ebay
  request_timeout: 3s
revalue:
  enabled: true
  interval: 6h
alerting:
  enabled: true
  threshold_pct: 15
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("port: got %d", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("cors origins: got %v", cfg.Server.CORSOrigins)
	}
	if len(cfg.Scraper.Sites) != 1 || cfg.Scraper.Sites[0] != "ebay" {
		t.Fatalf("sites: got %v", cfg.Scraper.Sites)
	}
	if cfg.Scraper.RequestTimeout != 3*time.Second {
		t.Fatalf("request timeout: got %s", cfg.Scraper.RequestTimeout)
	}
	if !cfg.Revalue.Enabled || cfg.Revalue.Interval != 6*time.Hour {
		t.Fatalf("revalue: got enabled=%v interval=%s", cfg.Revalue.Enabled, cfg.Revalue.Interval)
	}
	if cfg.Alerting.ThresholdPct != 15 {
		t.Fatalf("threshold: got %v", cfg.Alerting.ThresholdPct)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("baseline config should validate: %v", err)
	}

	cfg = validConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero port should fail validation")
	}

	cfg = validConfig()
	cfg.Inventory.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("缺少库存文件且未配置数据库时应报错")
	}

	cfg = validConfig()
	cfg.Inventory.Path = ""
	cfg.Database.DSN = "postgres://localhost/resell"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("database DSN should satisfy the store requirement: %v", err)
	}

	cfg = validConfig()
	cfg.Revalue.Interval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero revalue interval should fail validation")
	}

	cfg = validConfig()
	cfg.Alerting.Telegram.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("启用 Telegram 而缺少 bot_token 时应报错")
	}

	cfg = validConfig()
	cfg.Alerting.ThresholdPct = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative drift threshold should fail validation")
	}
}
