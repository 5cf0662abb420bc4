// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/invclose/backend-go/internal/api/handlers"
	"github.com/andresuchdata/invclose/backend-go/internal/api/middleware"
	"github.com/andresuchdata/invclose/backend-go/internal/config"
	"github.com/andresuchdata/invclose/backend-go/internal/graph"
	"github.com/andresuchdata/invclose/backend-go/internal/service"
)

type Services struct {
	CloseService  *service.CloseService
	Authenticator *graph.Authenticator
	Graph         config.GraphConfig
	UploadLimitMB int
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Run-ID", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.CloseService != nil {
			closeHandler := handlers.NewCloseHandler(services.CloseService, services.UploadLimitMB)
			closeGroup := apiGroup.Group("/close")
			{
				closeGroup.POST("", closeHandler.Close)
				closeGroup.POST("/onedrive", closeHandler.CloseOneDrive)
				closeGroup.POST("/remote", closeHandler.CloseRemote)
				closeGroup.GET("/sources", closeHandler.Sources)
			}
		}

		if services.Authenticator != nil {
			authHandler := handlers.NewAuthHandler(services.Authenticator, services.Graph)
			apiGroup.GET("/auth/token", authHandler.Token)
			apiGroup.GET("/config.js", authHandler.ConfigJS)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
