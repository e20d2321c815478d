package main

import (
	"context"
	"log"

	"readily-backend/config"
	"readily-backend/handlers"
	"readily-backend/repository"
	"readily-backend/service"
	"readily-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := config.Load()

	// Initialize database connection
	db, err := initPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Postgres:", err)
	}
	defer db.Close()

	// Initialize upload archive storage
	fileStorage, err := storage.NewStorageFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Storage initialized")

	// Initialize repositories
	policyPageRepo := repository.NewPolicyPageRepository(db)
	auditFileRepo := repository.NewAuditFileRepository(db)

	// Initialize Gemini client
	geminiClient, err := initGemini(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Gemini:", err)
	}
	defer geminiClient.Close()

	// Initialize services
	retriever := service.NewPolicyRetriever(policyPageRepo, cfg.UseSnippetRetrieval)
	judge := service.NewGeminiJudge(geminiClient, cfg.GeminiModel)
	auditService := service.NewAuditService(
		service.AuditWithRetriever(retriever),
		service.AuditWithJudge(judge),
	)

	// Initialize handlers
	auditHandler := handlers.NewAuditHandler(auditService, auditFileRepo, fileStorage)

	// Setup Gin router
	r := gin.Default()
	r.LoadHTMLGlob("templates/*")

	// Main page
	r.GET("/", func(c *gin.Context) {
		c.HTML(200, "index.html", nil)
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.POST("/audits/upload", auditHandler.UploadAudit)
		api.GET("/files", auditHandler.ListFiles)
		api.GET("/files/:id", auditHandler.GetFile)
	}

	log.Printf("Server starting on port %s (snippet retrieval: %v)", cfg.Port, cfg.UseSnippetRetrieval)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres(cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Postgres connection established")
	return pool, nil
}

func initGemini(cfg *config.Config) (*genai.Client, error) {
	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	log.Println("Gemini client initialized")
	return client, nil
}
