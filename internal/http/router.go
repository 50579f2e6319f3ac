// Package http exposes the local library over a read-only JSON API.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/eitchtee/Kindle2Markdown/internal/database"
	"github.com/eitchtee/Kindle2Markdown/internal/tasks"
)

// RouterConfig carries the dependencies for building the router.
type RouterConfig struct {
	Database   *database.Database
	TaskClient *tasks.Client
	CoversDir  string
	Version    string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	healthController := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Database, cfg.TaskClient)

	router.GET("/health", healthController.Status)

	api := router.Group("/api")
	{
		api.GET("/books", booksController.List)
		api.GET("/books/:id", booksController.Get)
		api.GET("/books/:id/markdown", booksController.Markdown)
		api.POST("/books/:id/enrich", booksController.Enrich)
	}

	if cfg.CoversDir != "" {
		router.Static("/covers", cfg.CoversDir)
	}

	return router
}
