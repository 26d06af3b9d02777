package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"field-service-server/config"
	"field-service-server/database"
	"field-service-server/jobs"
	"field-service-server/middleware"
	"field-service-server/routes"
	"field-service-server/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// "seed" subcommand bootstraps the admin account and exits
	if len(os.Args) > 1 && os.Args[1] == "seed" {
		runSeed()
		return
	}

	limiter := middleware.NewRateLimiter()
	cleanupStop := make(chan struct{})
	defer close(cleanupStop)
	limiter.StartCleanup(10*time.Minute, cleanupStop)

	uploads, err := services.NewUploadService(cfg.Cloudinary)
	if err != nil {
		log.Fatal("Failed to initialize Cloudinary:", err)
	}
	if cfg.Cloudinary.URL == "" {
		log.Println("⚠️  CLOUDINARY_URL not set, photo uploads disabled")
	}

	router := routes.NewRouter(routes.Deps{
		Cfg:     cfg,
		DB:      db,
		Limiter: limiter,
		Uploads: uploads,
	})

	// Repair request/task status drift in the background
	reconcileJob := jobs.NewReconcileJob(db, 5*time.Minute)
	reconcileJob.Start()
	defer reconcileJob.Stop()

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := router.Run("0.0.0.0:" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
