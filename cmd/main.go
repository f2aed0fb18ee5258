package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/farmrakshaa/backend/internal/config"
	"github.com/farmrakshaa/backend/internal/db"
	"github.com/farmrakshaa/backend/internal/handlers"
	"github.com/farmrakshaa/backend/internal/middleware"
	"github.com/farmrakshaa/backend/internal/models"
	"github.com/farmrakshaa/backend/internal/repository"
	"github.com/farmrakshaa/backend/internal/services"
	"github.com/farmrakshaa/backend/internal/storage"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	database, err := db.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.Fatalf("Index creation failed: %v", err)
	}

	documents, err := storage.NewDocumentStore(cfg.Minio)
	if err != nil {
		log.Fatalf("MinIO connection failed: %v", err)
	}

	tokens, err := services.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Token issuer: %v", err)
	}

	users := repository.NewMongoUserStore(database)
	authSvc := services.NewAuthService(users, tokens, documents, cfg.VetAutoApprove)
	authHandler := handlers.NewAuthHandler(authSvc, cfg.IsProduction())

	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowCredentials: true,
	}))

	requireAuth := middleware.RequireAuth(tokens)

	auth := app.Group("/api/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/register-vet", authHandler.RegisterVet)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Get("/profile", requireAuth, authHandler.Profile)
	auth.Put("/farm-data", requireAuth, authHandler.UpdateFarmData)

	alerts := handlers.NewResourceHandler(repository.NewCollection[models.Alert](database, "alerts"))
	alerts.Mount(app.Group("/api/alerts", requireAuth))

	farms := handlers.NewResourceHandler(repository.NewCollection[models.Farm](database, "farms"))
	farms.Mount(app.Group("/api/farms", requireAuth))

	compliance := handlers.NewResourceHandler(repository.NewCollection[models.Compliance](database, "compliance"))
	compliance.Mount(app.Group("/api/compliance", requireAuth))

	feedback := handlers.NewResourceHandler(repository.NewCollection[models.Feedback](database, "feedback"))
	feedback.Mount(app.Group("/api/feedback", requireAuth))

	log.Fatal(app.Listen(":" + cfg.Port))
}
