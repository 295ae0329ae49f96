package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"studybuddy/internal/auth"
	"studybuddy/internal/catalog"
	"studybuddy/internal/config"
	"studybuddy/internal/domain/repositories"
	"studybuddy/internal/handler"
	"studybuddy/internal/idgen"
	"studybuddy/internal/middleware"
	"studybuddy/internal/repository/memory"
	"studybuddy/internal/repository/postgres"
	"studybuddy/internal/service"
	"studybuddy/internal/storage"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()

	// Repositories: Postgres when a database is configured, in-memory in dev
	var (
		userRepo   repositories.UserRepository
		folderRepo repositories.FolderRepository
		fileRepo   repositories.FileRepository
		voiceRepo  repositories.VoiceCharacterRepository
	)

	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		logger.Info("database connected", "max_conns", 25, "min_conns", 5)

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		userRepo = postgres.NewUserRepository(repoConfig)
		folderRepo = postgres.NewFolderRepository(repoConfig)
		fileRepo = postgres.NewFileRepository(repoConfig)
		voiceRepo = postgres.NewVoiceRepository(repoConfig)
	} else {
		if cfg.Environment == "prod" {
			log.Fatal("DATABASE_URL must be set in prod")
		}
		logger.Warn("DATABASE_URL not set, using in-memory repositories (dev only)")

		userRepo = memory.NewUserRepository()
		folderRepo = memory.NewFolderRepository()
		fileRepo = memory.NewFileRepository()
		voiceRepo = memory.NewVoiceRepository()
	}

	// Object storage follows the same split as the repositories
	var objectStore storage.ObjectStorage
	if cfg.DatabaseURL != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
		if err != nil {
			log.Fatalf("Failed to load AWS config: %v", err)
		}
		objectStore = storage.NewS3Storage(s3.NewFromConfig(awsCfg), cfg.S3Bucket)
		logger.Info("object storage ready", "bucket", cfg.S3Bucket, "region", cfg.S3Region)
	} else {
		objectStore = storage.NewMemoryStorage()
	}

	// Token machinery: one secret signs both identity and scope tokens
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	scopes := auth.NewScopeCodec(cfg.JWTSecret, cfg.ScopeTTL)
	gate := auth.NewGate(tokens, scopes)

	// Google OAuth is optional; the routes answer 503 when unconfigured
	var googleVerifier *auth.GoogleVerifier
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}

		var err error
		googleVerifier, err = auth.NewGoogleVerifier(oauthConfig, cfg.GoogleJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create google verifier: %v", err)
		}
	} else {
		logger.Warn("google oauth not configured, /auth/google routes disabled")
	}

	// Voice seed catalog
	registry, err := catalog.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load voice catalog: %v", err)
	}

	// Identifier allocators, one per namespace
	folderIDs := idgen.New(folderRepo, service.FolderIDLength)
	fileIDs := idgen.New(fileRepo, service.FileIDLength)

	// Services
	hasher := auth.NewBcryptHasher()
	accountService := service.NewAccountService(userRepo, hasher, tokens, logger)
	folderService := service.NewFolderService(folderRepo, userRepo, folderIDs, scopes, logger)
	fileService := service.NewFileService(fileRepo, objectStore, fileIDs, logger)
	voiceService := service.NewVoiceService(voiceRepo, registry, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(accountService, googleVerifier, cfg.TokenTTL, cfg.FrontendURL, logger)
	folderHandler := handler.NewFolderHandler(folderService, cfg.ScopeTTL, logger)
	fileHandler := handler.NewFileHandler(fileService, folderService, gate, logger)
	voiceHandler := handler.NewVoiceHandler(voiceService, logger)

	logger.Info("services initialized")

	requireIdentity := middleware.RequireIdentity(gate, logger)
	limiter := middleware.NewRateLimiter(10, 5)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.Health)

	// Credential routes; signup and login sit behind the per-IP limiter
	mux.Handle("POST /signup", limiter.Limit(http.HandlerFunc(authHandler.Signup)))
	mux.Handle("POST /login", limiter.Limit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.Handle("GET /verifyToken", requireIdentity(http.HandlerFunc(authHandler.Verify)))

	// Google OAuth hand-off
	mux.HandleFunc("GET /auth/google/login", authHandler.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)

	// Folder routes require a verified identity
	mux.Handle("POST /folder/create", requireIdentity(http.HandlerFunc(folderHandler.Create)))
	mux.Handle("POST /folder/open", requireIdentity(http.HandlerFunc(folderHandler.Open)))
	mux.Handle("GET /folder/list", requireIdentity(http.HandlerFunc(folderHandler.List)))

	// File routes run the full gate pipeline inside the handler
	mux.HandleFunc("POST /file/upload", fileHandler.Upload)
	mux.HandleFunc("GET /file/listFiles", fileHandler.List)

	// Voice catalog routes; the list is public, registration is not
	mux.Handle("POST /voiceCharacter/addVoices", requireIdentity(http.HandlerFunc(voiceHandler.Add)))
	mux.HandleFunc("GET /voiceCharacter/list", voiceHandler.List)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Routes
	root = middleware.Recovery(logger)(root)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
