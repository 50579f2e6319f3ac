// Package entrypoint assembles the server mode: database, cover cache,
// task queue, scheduled sync and the HTTP API, with graceful shutdown.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eitchtee/Kindle2Markdown/internal/clippings"
	"github.com/eitchtee/Kindle2Markdown/internal/config"
	"github.com/eitchtee/Kindle2Markdown/internal/covers"
	"github.com/eitchtee/Kindle2Markdown/internal/database"
	http_controllers "github.com/eitchtee/Kindle2Markdown/internal/http"
	"github.com/eitchtee/Kindle2Markdown/internal/scheduler"
	"github.com/eitchtee/Kindle2Markdown/internal/services"
	"github.com/eitchtee/Kindle2Markdown/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Kindle2Markdown v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Create cover cache for locally caching book covers
	var coverCache *covers.Cache
	if cfg.Covers.Enabled {
		coverCacheDir := cfg.Covers.CacheDir
		if coverCacheDir == "" {
			coverCacheDir = filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
		}
		coverCache, err = covers.NewCache(coverCacheDir, covers.NewOpenLibraryClient())
		if err != nil {
			log.Printf("WARNING: Failed to initialize cover cache: %v", err)
		} else {
			log.Printf("Cover cache initialized at %s", coverCache.CacheDir())
		}
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewEnrichCoverQueue(db, coverCache, taskCfg.RetentionDuration),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Conversion service shared by the scheduled sync
	service := &services.ConvertService{
		Parser:      clippings.NewParserWithLocale(clippings.LocaleByName(cfg.Clippings.Locale)),
		OutputDir:   cfg.Markdown.OutputDir,
		Deduplicate: cfg.Clippings.Deduplicate,
		CoverCache:  coverCache,
		DB:          db,
	}
	if coverCache != nil {
		service.CoverWorkers = cfg.Covers.Workers
	}

	// Start the scheduled sync if enabled
	var syncScheduler *scheduler.SyncScheduler
	if cfg.Sync.Enabled {
		syncScheduler = scheduler.NewSyncScheduler(service, cfg.Clippings.Path, cfg.Sync.Schedule)
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Printf("WARNING: Failed to start sync scheduler: %v", err)
		}
	}

	coversDir := ""
	if coverCache != nil {
		coversDir = coverCache.CacheDir()
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:   db,
		TaskClient: taskClient,
		CoversDir:  coversDir,
		Version:    version,
	})

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if syncScheduler != nil {
			syncScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
