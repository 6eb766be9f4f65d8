package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ownership-api/internal/auth"
	"ownership-api/internal/config"
	"ownership-api/internal/database"
	"ownership-api/internal/handlers"
	"ownership-api/internal/jobs"
	"ownership-api/internal/notifier"
	"ownership-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Initialize services
	authz := services.NewDBAuthorizer(db)
	mailer := notifier.NewSMTP(cfg.SMTP)
	tokenGenerator := services.NewTokenGenerator(db)
	authService := services.NewAuthService(db)
	membershipService := services.NewMembershipService(db)
	notificationService := services.NewNotificationService(db, authz)
	invitationService := services.NewInvitationService(db, tokenGenerator, notificationService, mailer, cfg.App)
	acceptanceService := services.NewAcceptanceService(db, authService, membershipService, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	invitationHandler := handlers.NewInvitationHandler(invitationService, authz, cfg.App)
	publicInvitationHandler := handlers.NewPublicInvitationHandler(acceptanceService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Start the expiry sweeper
	expirer := jobs.NewInvitationExpirer(db, time.Duration(cfg.App.ExpirySweepMinutes)*time.Minute)
	expirer.Start()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if cfg.App.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.App.FrontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Ownership-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public invitation redemption routes
	router.GET("/api/invitations/:token/validate", publicInvitationHandler.ValidateToken)
	router.POST("/api/invitations/:token/accept", publicInvitationHandler.Accept)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Invitation management endpoints
		invitationRoutes := api.Group("/tenants/invitations")
		{
			invitationRoutes.GET("", invitationHandler.List)
			invitationRoutes.POST("", invitationHandler.Create)
			invitationRoutes.POST("/bulk", invitationHandler.CreateBulk)
			invitationRoutes.POST("/link", invitationHandler.GenerateLink)
			invitationRoutes.GET("/:uuid", invitationHandler.Show)
			invitationRoutes.POST("/:uuid/resend", invitationHandler.Resend)
			invitationRoutes.POST("/:uuid/cancel", invitationHandler.Cancel)
		}

		// Notification endpoints
		api.GET("/notifications", notificationHandler.List)
		api.POST("/notifications/:id/read", notificationHandler.MarkRead)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	expirer.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
