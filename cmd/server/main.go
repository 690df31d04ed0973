package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/reverie-app/reverie-backend/internal/config"
	"github.com/reverie-app/reverie-backend/internal/database"
	"github.com/reverie-app/reverie-backend/internal/middleware"
	"github.com/reverie-app/reverie-backend/internal/repo"
	"github.com/reverie-app/reverie-backend/internal/routes"
	"github.com/reverie-app/reverie-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	// Connect to PostgreSQL (accounts, reset tokens)
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis (sessions, rate limiting)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (journal entries)
	log.Printf("Connecting to MongoDB...")
	if err := database.ConnectMongo(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.DisconnectMongo()

	// Ensure MongoDB indexes for owner-scoped entry listing
	if err := repo.EnsureEntryIndexes(context.Background(), database.DB); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB entry indexes: %v", err)
	} else {
		log.Println("✅ MongoDB entry indexes ensured")
	}

	// Initialize object storage for journal images. The bucket is private;
	// images are only ever served through short-lived signed URLs.
	var storage services.ObjectStorage
	if cfg.StorageEndpoint != "" && cfg.StorageAccessKey != "" && cfg.StorageSecretKey != "" {
		s, err := services.NewMinioStorage(
			context.Background(),
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StorageUseSSL,
		)
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v", err)
			log.Println("Image uploads will not be available")
		} else {
			storage = s
			log.Println("✅ Object storage initialized")
		}
	} else {
		log.Println("Warning: Storage credentials not found. Image uploads will not be available")
	}

	// Per-session journal scopes (entry store + attachment manager)
	entryRepo := repo.NewMongoEntryRepository(database.DB)
	services.InitScopes(entryRepo, storage)

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: SecurityHeaders → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r)

	// Log registered routes for debugging
	log.Println("📋 Registered routes:")
	log.Println("  GET  /health")
	log.Println("  POST /api/auth/signup")
	log.Println("  POST /api/auth/signin")
	log.Println("  POST /api/auth/signout")
	log.Println("  GET  /api/auth/me")
	log.Println("  POST /api/auth/forgot-password")
	log.Println("  POST /api/auth/reset-password")
	log.Println("  GET  /api/entries")
	log.Println("  POST /api/entries")
	log.Println("  PUT  /api/entries/{id}")
	log.Println("  DELETE /api/entries/{id}")
	log.Println("  GET  /api/moods")
	log.Println("  POST /api/images")
	log.Println("  GET  /api/images/resolve")

	log.Printf("🚀 Reverie backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
