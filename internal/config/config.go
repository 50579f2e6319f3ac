package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Clippings
		Markdown
		Covers
		Database
		Sync
		Tasks
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Clippings struct {
		Path        string // Path to "My Clippings.txt"
		Locale      string
		Deduplicate bool
	}
	Markdown struct {
		OutputDir string
	}
	Covers struct {
		Enabled  bool
		CacheDir string
		Workers  int // Concurrent cover fetches
	}
	Database struct {
		Path string
	}
	Sync struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("clippings_path", "")
	v.SetDefault("clippings_locale", "en")
	v.SetDefault("deduplicate", true)

	v.SetDefault("markdown_output_dir", "./markdown")

	v.SetDefault("covers_enabled", true)
	v.SetDefault("covers_cache_dir", "./covers")
	v.SetDefault("cover_fetch_workers", 3)

	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("sync_enabled", false)
	v.SetDefault("sync_schedule", "0 * * * *") // Hourly at :00

	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Clippings: Clippings{
			Path:        v.GetString("CLIPPINGS_PATH"),
			Locale:      v.GetString("CLIPPINGS_LOCALE"),
			Deduplicate: v.GetBool("DEDUPLICATE"),
		},
		Markdown: Markdown{
			OutputDir: v.GetString("MARKDOWN_OUTPUT_DIR"),
		},
		Covers: Covers{
			Enabled:  v.GetBool("COVERS_ENABLED"),
			CacheDir: v.GetString("COVERS_CACHE_DIR"),
			Workers:  v.GetInt("COVER_FETCH_WORKERS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Sync: Sync{
			Enabled:  v.GetBool("SYNC_ENABLED"),
			Schedule: v.GetString("SYNC_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
