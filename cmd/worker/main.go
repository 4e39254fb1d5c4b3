package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/cognitext/cognitext/internal/config"
	"github.com/cognitext/cognitext/internal/database"
	"github.com/cognitext/cognitext/internal/document"
	"github.com/cognitext/cognitext/internal/embedding"
	"github.com/cognitext/cognitext/internal/ingest"
	"github.com/cognitext/cognitext/internal/queue/workers"
	"github.com/cognitext/cognitext/internal/quota"
	"github.com/cognitext/cognitext/internal/storage"
	"github.com/cognitext/cognitext/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	docs := document.NewStore(db)
	store := storage.NewClient(cfg.Storage.BaseURL, cfg.Storage.ServiceKey, cfg.Storage.Bucket)
	vectors := vectorstore.NewPgVectorStore(db)
	embedder := embedding.NewService(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	indexer := ingest.NewVectorIndexer(embedder, vectors)
	orchestrator := ingest.NewOrchestrator(docs, store, ingest.NewPDFExtractor(), indexer, quota.NewPolicy(cfg.Quota))

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
		},
	)

	mux := workers.Mux(workers.NewIngestWorker(orchestrator))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
