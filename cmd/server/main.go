package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Marshflair1988/ServiceIndustryApplication/internal/config"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/database"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/handlers"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/middleware"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/routes"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/services"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load env
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()
	handlers.Configure(cfg)
	services.InitTokenService(cfg.JWTSecret, cfg.JWTExpiry)

	if cfg.JWTSecret == "your-secret-key-change-in-production" {
		log.Println("⚠️  WARNING: JWT_SECRET not set, using insecure default.")
		log.Println("   To generate a secret, run: openssl rand -base64 32")
	}

	// Initialize Cloudinary service
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		if err := handlers.InitCloudinaryService(cfg); err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("Image uploads will not be available")
		} else {
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Image uploads will not be available")
	}

	// Log connection attempt with the password masked
	log.Printf("Connecting to MongoDB...")
	log.Printf("MongoDB URI: %s", maskURI(cfg.MongoURI))

	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	if err := database.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB indexes: %v", err)
	} else {
		log.Println("✅ MongoDB indexes ensured")
	}

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Setup router
	r := chi.NewRouter()

	// Custom CORS: set headers and respond to OPTIONS with 200 so preflight never gets 403
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production adds security headers and login throttling on top of the
	// Redis per-IP limit
	r.Use(middleware.RateLimitMiddleware)
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, login rate limiting)")
	}

	// Setup routes
	routes.SetupRoutes(r)

	log.Printf("🚀 Hospitality Hub API running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// maskURI hides the credential portion of a connection string.
func maskURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at == -1 {
		return uri
	}
	scheme := strings.Index(uri, "://")
	if scheme == -1 {
		return uri
	}
	return uri[:scheme+3] + "***" + uri[at:]
}
