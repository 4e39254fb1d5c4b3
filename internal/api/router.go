package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cognitext/cognitext/internal/api/handlers"
	"github.com/cognitext/cognitext/internal/api/middleware"
	"github.com/cognitext/cognitext/internal/auth"
	"github.com/cognitext/cognitext/internal/cache"
	"github.com/cognitext/cognitext/internal/config"
	"github.com/cognitext/cognitext/internal/document"
	"github.com/cognitext/cognitext/internal/embedding"
	"github.com/cognitext/cognitext/internal/ingest"
	"github.com/cognitext/cognitext/internal/queue"
	"github.com/cognitext/cognitext/internal/storage"
	"github.com/cognitext/cognitext/internal/vectorstore"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	jwt   *auth.Middleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		jwt:   auth.NewMiddleware(cfg.Auth.JWTSecret),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Services
	docs := document.NewStore(rt.db)
	store := storage.NewClient(rt.cfg.Storage.BaseURL, rt.cfg.Storage.ServiceKey, rt.cfg.Storage.Bucket)
	vectors := vectorstore.NewPgVectorStore(rt.db)
	embedder := embedding.NewService(rt.cfg.OpenAI.APIKey, rt.cfg.OpenAI.EmbeddingModel)
	cleaner := ingest.NewCleaner(docs, store, vectors)
	queueClient := queue.NewClient(rt.cfg.Redis)
	statusCache := cache.NewCache(rt.redis)

	uploadH := handlers.NewUploadHandler(queueClient, rt.cfg.Storage.CallbackSecret)
	docH := handlers.NewDocumentHandler(docs, cleaner, statusCache)
	searchH := handlers.NewSearchHandler(docs, embedder, vectors)

	r.Route("/api/v1", func(r chi.Router) {
		// Callback from the storage service, authenticated by shared secret.
		r.Post("/uploads/complete", uploadH.Complete)

		r.Group(func(r chi.Router) {
			r.Use(rt.jwt.Authenticate)

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", docH.List)
				r.Get("/lookup", docH.Lookup)
				r.Get("/message-counts", docH.MessageCounts)
				r.Get("/{id}/status", docH.Status)
				r.Get("/{id}/messages", docH.Messages)
				r.Delete("/{id}", docH.Delete)
			})

			r.Post("/search", searchH.Search)
		})
	})

	return r
}
