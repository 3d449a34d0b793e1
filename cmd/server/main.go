package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Charles-Louisin/mystik-backend/internal/config"
	"github.com/Charles-Louisin/mystik-backend/internal/handlers"
	"github.com/Charles-Louisin/mystik-backend/internal/middleware"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize Firebase
	if err := config.InitFirebase(); err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer config.CloseFirebase()

	// A missing JWT secret must fail at startup, not on first login
	if _, err := config.JWTSecret(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := os.MkdirAll(config.UploadDir(), 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Initialize Gin router
	router := gin.Default()
	router.MaxMultipartMemory = 10 << 20

	// Apply middleware
	router.Use(middleware.CORSMiddleware())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler()
	messageHandler := handlers.NewMessageHandler()
	revealHandler := handlers.NewRevealHandler()
	userHandler := handlers.NewUserHandler()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Mystik API is running",
		})
	})

	// API routes group
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/check-username", authHandler.CheckUsername)
			auth.POST("/check-username", authHandler.CheckUsername)
			auth.GET("/check-phone", authHandler.CheckPhone)
			auth.POST("/check-phone", authHandler.CheckPhone)

			authProtected := auth.Group("")
			authProtected.Use(middleware.AuthMiddleware())
			{
				authProtected.GET("/me", authHandler.Me)
				authProtected.POST("/update-fcm-token", userHandler.UpdateFCMToken)
			}
		}

		// Message routes
		messages := api.Group("/messages")
		{
			// Sending is open to anonymous and authenticated senders
			send := messages.Group("")
			send.Use(middleware.OptionalAuthMiddleware())
			{
				send.POST("/send", messageHandler.Send)
				send.POST("/send-voice", messageHandler.SendVoice)
			}

			// Public feed
			messages.GET("/public", messageHandler.ListPublic)
			messages.POST("/:id/like", messageHandler.Like)
			messages.GET("/voice-message/:filename", messageHandler.StreamVoiceByFilename)

			// Recipient-only routes
			owned := messages.Group("")
			owned.Use(middleware.AuthMiddleware())
			{
				owned.GET("/received", messageHandler.ListReceived)
				owned.GET("/scheduled", messageHandler.ListScheduled)
				owned.GET("/scheduled-details", messageHandler.ListScheduled)
				owned.GET("/scheduled/count", messageHandler.ScheduledCount)
				owned.GET("/emotional-radar", messageHandler.EmotionalRadar)
				owned.POST("/earn-key", userHandler.EarnKeys)
				owned.GET("/:id", messageHandler.Get)
				owned.PATCH("/:id/read", messageHandler.MarkRead)
				owned.POST("/:id/analyze", messageHandler.Analyze)
				owned.PATCH("/:id/public", messageHandler.MakePublic)
				owned.POST("/:id/favorite", messageHandler.AddFavorite)
				owned.DELETE("/:id/favorite", messageHandler.RemoveFavorite)
				owned.GET("/:id/voice-message", messageHandler.StreamVoice)

				// Disclosure routes
				owned.POST("/:id/reveal", revealHandler.Reveal)
				owned.POST("/:id/reveal-partial", revealHandler.RevealPartial)
				owned.POST("/:id/get-hint", revealHandler.GetHint)
				owned.GET("/:id/hint", revealHandler.PreviewHint)
				owned.GET("/:id/hints", revealHandler.ListHints)
				owned.POST("/:id/check-riddle", revealHandler.CheckRiddle)
				owned.POST("/:id/check-user-guess", revealHandler.CheckGuess)
				owned.PATCH("/:id/name-discovered", revealHandler.MarkNameDiscovered)
				owned.POST("/:id/notify-sender", revealHandler.NotifySender)
			}
		}

		// User routes
		users := api.Group("/users")
		{
			users.GET("/public/:link", userHandler.PublicByLink)
			users.GET("/check/:link", userHandler.CheckLink)
			users.GET("/search", userHandler.Search)

			profile := users.Group("")
			profile.Use(middleware.AuthMiddleware())
			{
				profile.GET("/profile", userHandler.Profile)
				profile.PUT("/profile", userHandler.UpdateProfile)
				profile.GET("/me/keys", userHandler.KeyBalance)
				profile.POST("/earn-keys", userHandler.EarnKeys)
				profile.PUT("/premium", userHandler.SetPremium)
				profile.GET("/masks", userHandler.ListMasks)
				profile.POST("/masks", userHandler.AddMask)
				profile.PUT("/masks/:maskId/activate", userHandler.ActivateMask)
				profile.DELETE("/masks/:maskId", userHandler.DeleteMask)
				profile.GET("/emotional-profile", userHandler.GetEmotionalProfile)
				profile.PUT("/emotional-profile", userHandler.GenerateEmotionalProfile)
				profile.PUT("/emotional-radar", userHandler.SetEmotionalRadar)
			}
		}
	}

	// Start server
	log.Printf("🚀 Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
