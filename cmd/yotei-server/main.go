package main

import (
	"log"
	"os"

	"github.com/example/yotei/pkg/yotei/availability"
	"github.com/example/yotei/pkg/yotei/comments"
	"github.com/example/yotei/pkg/yotei/database"
	"github.com/example/yotei/pkg/yotei/identity"
	"github.com/example/yotei/pkg/yotei/models"
	"github.com/example/yotei/pkg/yotei/schedules"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Yotei API
// @version 1.0
// @description A group-scheduling poll service: propose candidate slots, collect yes/no/undecided marks, read the aggregated summary.

// @license.name MIT

// @host localhost:8000
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT session token. Format: "Bearer {token}"

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	dbPath := os.Getenv("YOTEI_DB_PATH")
	if dbPath == "" {
		dbPath = "yotei.db"
	}

	if err := database.Connect(dbPath); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	baseURL := os.Getenv("YOTEI_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "yotei",
			})
		})

		// Login routes (public)
		authHandler := identity.NewHandler(database.GetDB(), baseURL)
		if err := authHandler.LoadProvider(); err != nil {
			// The API stays up for existing sessions; only login is gone
			log.Printf("Warning: identity provider unavailable: %v", err)
		}
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Everything else requires an established session
		authed := api.Group("", identity.AuthMiddleware())
		authHandler.RegisterSessionRoutes(authed.Group("/auth"))

		schedulesHandler := schedules.NewHandler(database.GetDB())
		schedulesHandler.RegisterRoutes(authed)

		availabilityHandler := availability.NewHandler(database.GetDB())
		availabilityHandler.RegisterRoutes(authed)

		commentsHandler := comments.NewHandler(database.GetDB())
		commentsHandler.RegisterRoutes(authed)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Starting Yotei server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
