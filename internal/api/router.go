package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/salmonco/sorabang/internal/api/middleware"
	"github.com/salmonco/sorabang/internal/handlers"
)

// NewRouter creates and configures the HTTP router. redisClient may be nil;
// mediaDir may be empty when audio is stored inline.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, redisClient *redis.Client, rlCfg middleware.RateLimiterConfig, mediaDir string) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(4 * 1024 * 1024)) // audio uploads
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting
	limiter := middleware.NewRateLimiter(redisClient, logger, rlCfg)
	r.Use(limiter.Middleware)

	// CORS - the views and the CLI call from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Server-rendered views
	r.Get("/", h.Index)
	r.Get("/room/{id}/manage", h.ManagePage)
	r.Get("/room/{id}/listen", h.ListenPage)
	r.Get("/room/{id}/join", h.JoinPage)
	r.Get("/room/{id}/success", h.SuccessPage)

	// Stored audio
	if mediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir))))
	}

	// JSON API
	r.Get("/api", h.Root)
	r.Get("/health", h.Health)
	r.Get("/api/stats", h.Stats)

	r.Post("/api/rooms", h.CreateRoom)
	r.Get("/api/rooms/{id}", h.GetRoom)
	r.Post("/api/rooms/{id}/messages", h.PostMessage)

	// Chunked recording sessions
	r.Post("/api/rooms/{id}/recordings", h.StartRecording)
	r.Post("/api/recordings/{sid}/chunks", h.AppendChunk)
	r.Post("/api/recordings/{sid}/stop", h.StopRecording)
	r.Post("/api/recordings/{sid}/submit", h.SubmitRecording)
	r.Delete("/api/recordings/{sid}", h.DiscardRecording)

	return r
}
