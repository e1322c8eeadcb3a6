package main

import (
	"log"

	"github.com/mossy-p/voicerooms/config"
	"github.com/mossy-p/voicerooms/internal/handlers"
	"github.com/mossy-p/voicerooms/internal/history"
	"github.com/mossy-p/voicerooms/internal/middleware"
	"github.com/mossy-p/voicerooms/internal/redisx"
	"github.com/mossy-p/voicerooms/internal/registry"
	"github.com/mossy-p/voicerooms/internal/room"
	"github.com/mossy-p/voicerooms/internal/router"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect the optional Redis presence mirror
	mirror, err := redisx.Connect(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if mirror != nil {
		defer mirror.Close()
		log.Println("Redis presence mirror enabled")
	}

	// Build the coordination core
	reg := registry.New()
	store := room.NewStore()
	msgLog := history.NewLog()
	bans := router.NewBanList()
	bans.Load(mirror.LoadBans())
	rt := router.New(reg, store, msgLog, bans, mirror)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	// Global CORS middleware (runs before routing)
	engine.Use(handlers.OriginFilter(cfg.AllowedOrigins))

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Admin REST API
	apiGroup := engine.Group("/api")
	{
		// Login endpoint (public)
		apiGroup.POST("/auth/login", handlers.Login(cfg.JWTSecret, cfg.Admin))

		// Room listing (requires JWT)
		apiGroup.GET("/rooms", middleware.JWTAuth(cfg.JWTSecret), handlers.ListRooms(store))
	}

	// WebSocket signaling endpoint
	wsGroup := engine.Group("/ws")
	{
		wsGroup.GET("/signal", handlers.HandleSignaling(cfg.JWTSecret, reg, rt))
	}

	// Start server
	log.Printf("Starting voicerooms signaling server on port %s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
