package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/api/handlers"
	mw "github.com/BK-Korea/Reborn-to-Blackswan/internal/api/middleware"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/buildconfig"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/graph"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/service"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Options carries the HTTP-layer settings read from config.
type Options struct {
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
}

// App holds the router and background services for lifecycle management.
type App struct {
	Router     *chi.Mux
	Graph      *graph.KnowledgeGraph
	Learning   *service.LearningService
	Prediction *service.PredictionService
	Decay      *service.DecayService
	metrics    *mw.MetricsCollector
	startTime  time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewApp(
	g *graph.KnowledgeGraph,
	learningSvc *service.LearningService,
	predictionSvc *service.PredictionService,
	decaySvc *service.DecayService,
	opts Options,
	logger *zap.Logger,
) *App {
	// Handlers
	learningHandler := handlers.NewLearningHandler(learningSvc)
	predictionHandler := handlers.NewPredictionHandler(predictionSvc)
	graphHandler := handlers.NewGraphHandler(g, decaySvc, learningSvc)

	r := chi.NewRouter()

	app := &App{
		Router:     r,
		Graph:      g,
		Learning:   learningSvc,
		Prediction: predictionSvc,
		Decay:      decaySvc,
		metrics:    mw.NewMetricsCollector(),
		startTime:  time.Now(),
		stop:       make(chan struct{}),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                                   // Generate/extract request ID first
	r.Use(middleware.RealIP)                                              // Extract real IP
	r.Use(app.metrics.Middleware)                                         // Collect metrics
	r.Use(mw.Logging(logger))                                             // Log all requests
	r.Use(middleware.Recoverer)                                           // Recover from panics
	r.Use(mw.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst, app.stop)) // Rate limiting

	// Health and metrics (no auth)
	r.Get("/health", app.healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(opts.APIKey))

		r.Post("/quotes", learningHandler.LearnQuote)
		r.Post("/outcomes", learningHandler.RecordOutcome)
		r.Get("/experiences", learningHandler.ListExperiences)

		r.Post("/predictions", predictionHandler.Predict)

		r.Get("/actors/{actor}/relationships", graphHandler.GetRelationships)
		r.Post("/situations/similar", graphHandler.FindSimilar)

		r.Route("/graph", func(r chi.Router) {
			r.Post("/decay", graphHandler.TriggerDecay)
			r.Get("/stats", graphHandler.Stats)
		})
	})

	return app
}

// Close stops the router's background goroutines.
func (app *App) Close() {
	app.stopOnce.Do(func() { close(app.stop) })
}

const healthPingTimeout = 2 * time.Second

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := app.Learning.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":  "error",
				"error":   err.Error(),
				"version": buildconfig.VersionInfo(),
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"version": buildconfig.VersionInfo(),
			"graph":   app.Graph.Stats(),
		})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)
		snap := app.metrics.Snapshot()

		response := map[string]any{
			"uptime_seconds":     uptime.Seconds(),
			"uptime_human":       uptime.Round(time.Second).String(),
			"request_count":      snap.Requests,
			"client_error_count": snap.ClientErrors,
			"server_error_count": snap.ServerErrors,
			"history_size":       app.Learning.HistoryLen(),
			"goroutines":         runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		writeJSON(w, http.StatusOK, response)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Ensure stores satisfy the persistence interfaces at compile time.
var (
	_ domain.KnowledgeLog  = (*store.SQLiteStore)(nil)
	_ domain.KnowledgeLog  = (*store.PostgresStore)(nil)
	_ domain.KnowledgeLog  = (*store.BadgerStore)(nil)
	_ domain.KnowledgeLog  = (*store.BreakerLog)(nil)
	_ service.KnowledgeLog = (domain.KnowledgeLog)(nil)
)
