package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"field-service-server/models"
	"field-service-server/services"
)

// runSeed inserts the bootstrap admin account so a fresh deployment has
// someone who can approve field workers. The schema is migrated before this
// runs, so the users table is always present.
func runSeed() {
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "password")
	dbName := getEnv("DB_NAME", "field_service_db")
	dbSSLMode := getEnv("DB_SSL_MODE", "disable")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("✅ Successfully connected to database")

	// Check if an admin already exists
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM users WHERE role = $1", string(models.RoleAdmin)).Scan(&count)
	if err != nil {
		log.Fatal("Failed to check admin count:", err)
	}

	if count > 0 {
		log.Printf("⚠️  Admin account already exists (%d found). Skipping insertion.", count)
		return
	}

	adminName := getEnv("ADMIN_NAME", "Administrator")
	adminEmail := strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", "admin@fieldservice.local")))
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		log.Fatal("ADMIN_PASSWORD must be set to seed the admin account")
	}

	hash, err := services.HashPassword(adminPassword)
	if err != nil {
		log.Fatal("Failed to hash admin password:", err)
	}

	log.Println("🚀 Creating admin account...")

	now := time.Now()
	insertQuery := `
		INSERT INTO users (
			name, email, password_hash, role, is_active, is_approved,
			rating, total_tasks_completed, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = db.Exec(insertQuery,
		adminName,
		adminEmail,
		hash,
		string(models.RoleAdmin),
		true,  // is_active
		true,  // is_approved
		0.0,   // rating
		0,     // total_tasks_completed
		now,   // created_at
		now,   // updated_at
	)
	if err != nil {
		log.Fatal("Failed to insert admin account:", err)
	}

	log.Printf("✅ Successfully created admin: %s", adminEmail)

	// Verify the insertion
	var id int
	var email string
	err = db.QueryRow("SELECT id, email FROM users WHERE role = $1 ORDER BY id LIMIT 1", string(models.RoleAdmin)).Scan(&id, &email)
	if err != nil {
		log.Fatal("Failed to verify admin account:", err)
	}
	log.Printf("📋 Admin account ready: id=%d email=%s", id, email)

	log.Println("✨ Seeding completed successfully!")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
