package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Discord DiscordConfig
	World   WorldConfig
	Monitor MonitorConfig
	Storage StorageConfig
	Logging LoggingConfig
}

type DiscordConfig struct {
	Token  string
	Prefix string
}

type WorldConfig struct {
	BaseURL    string // e.g. https://es95.guerrastribales.es
	TWStatsURL string // e.g. https://www.twstats.com/es95
	Timezone   string // IANA name used to parse scraped timestamps
}

type MonitorConfig struct {
	StaleAfter time.Duration // watermark older than this is reset on activation
	Grace      time.Duration // reset target is now minus this window
}

type StorageConfig struct {
	DataDir string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Discord: DiscordConfig{
			Token:  getEnv("DISCORD_TOKEN", ""),
			Prefix: getEnv("BOT_PREFIX", "!"),
		},
		World: WorldConfig{
			BaseURL:    getEnv("WORLD_BASE_URL", ""),
			TWStatsURL: getEnv("TWSTATS_BASE_URL", ""),
			Timezone:   getEnv("WORLD_TIMEZONE", "Europe/Madrid"),
		},
		Monitor: MonitorConfig{
			StaleAfter: time.Duration(getEnvInt("MONITOR_STALE_AFTER_HOURS", 6)) * time.Hour,
			Grace:      time.Duration(getEnvInt("MONITOR_GRACE_MINUTES", 10)) * time.Minute,
		},
		Storage: StorageConfig{
			DataDir: getEnv("DATA_DIR", "data"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.World.BaseURL == "" {
		return fmt.Errorf("WORLD_BASE_URL is required")
	}
	if c.World.TWStatsURL == "" {
		return fmt.Errorf("TWSTATS_BASE_URL is required")
	}
	if c.Monitor.Grace <= 0 {
		return fmt.Errorf("MONITOR_GRACE_MINUTES must be positive")
	}
	return nil
}

// MonitorFile is the persisted monitor-config path under the data dir.
func (c *Config) MonitorFile() string {
	return filepath.Join(c.Storage.DataDir, "monitor.json")
}

// SnapshotDB is the sqlite database path for village snapshots.
func (c *Config) SnapshotDB() string {
	return filepath.Join(c.Storage.DataDir, "snapshots.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
