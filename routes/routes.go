package routes

import (
	"net/http"

	"github.com/beachref/livesync/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	syncHandler *handlers.SyncHandler,
	healthHandler *handlers.HealthHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)

	// The trigger contract honors CORS preflight requests.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", healthHandler.Check)

	router.Route("/sync", func(r chi.Router) {
		r.Post("/live-scores", syncHandler.TriggerLiveScoreSync)
		r.Get("/diagnostics", syncHandler.Diagnostics)
	})
}
