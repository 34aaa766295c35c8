package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booksage-backend/cmd"
	"booksage-backend/internal/api"
	"booksage-backend/internal/clients"
	"booksage-backend/internal/database"
	"booksage-backend/internal/ingestion"
	"booksage-backend/internal/llm"
	"booksage-backend/internal/registry"
	"booksage-backend/internal/retrieval"
	"booksage-backend/internal/session"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type APIConfig struct {
	DatabaseURL   string `env:"DATABASE_URL" envDefault:"file:booksage.db"`
	EmbeddingURL  string `env:"EMBEDDING_URL,notEmpty,required"`
	SearchURL     string `env:"SEARCH_URL,notEmpty,required"`
	SearchAPIKey  string `env:"SEARCH_API_KEY"`
	SearchRPCName string `env:"SEARCH_RPC_NAME" envDefault:"hybrid_search"`

	// When unset, answers are synthesized directly through the LLM client and
	// uploads are processed by the local ingestion pipeline.
	SynthesisURL string `env:"SYNTHESIS_URL"`
	IngestionURL string `env:"INGESTION_URL"`

	LLMModel  string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMAPIKey string `env:"OPENAI_API_KEY"`

	ChunkSize     int           `env:"CHUNK_SIZE" envDefault:"300"`
	ChunkOverlap  int           `env:"CHUNK_OVERLAP" envDefault:"100"`
	ClientTimeout time.Duration `env:"CLIENT_TIMEOUT" envDefault:"30s"`
	MaxSessions   int           `env:"MAX_SESSIONS" envDefault:"256"`
	APIPort       string        `env:"API_PORT" envDefault:"8001"`
}

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	documents := registry.NewGormRegistry(db)
	archiver := session.NewGormArchiver(db)

	embedder := clients.NewEmbeddingClient(cfg.EmbeddingURL, cfg.ClientTimeout)
	searchIndex := clients.NewSearchClient(cfg.SearchURL, cfg.SearchAPIKey, cfg.SearchRPCName, cfg.ClientTimeout)

	var synthesizer retrieval.Synthesizer
	if cfg.SynthesisURL != "" {
		synthesizer = clients.NewSynthesisClient(cfg.SynthesisURL, cfg.ClientTimeout)
	} else {
		synthesizer, err = llm.NewSynthesizer(cfg.LLMModel, cfg.LLMAPIKey)
		if err != nil {
			log.Fatalf("Failed to create LLM synthesizer: %v", err)
		}
	}

	var ingestor session.Ingestor
	if cfg.IngestionURL != "" {
		ingestor = clients.NewIngestionClient(cfg.IngestionURL, cfg.ClientTimeout)
	} else {
		ingestor = ingestion.NewPipeline(embedder, searchIndex, cfg.ChunkSize, cfg.ChunkOverlap)
	}

	orchestrator := retrieval.NewOrchestrator(embedder, searchIndex, synthesizer, documents)
	manager := session.NewManager(documents, orchestrator, ingestor, archiver, cfg.MaxSessions)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	apiHandler := api.NewBackendService(manager, documents)
	apiHandler.AddRoutes(r)

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("API server listening on port %s", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
	}

	log.Println("Server stopped.")
}
