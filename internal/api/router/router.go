package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/concierge"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/http/handlers"
	httpmiddleware "github.com/mendez671/asteria-mobile-luxury-sub002/internal/http/middleware"
	"github.com/mendez671/asteria-mobile-luxury-sub002/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *concierge.Handler
	AdminTickets       *handlers.AdminTickets
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", handleHealth)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.ChatHandler != nil {
			public.Route("/api", func(api chi.Router) {
				if cfg.RateLimitPerSecond > 0 {
					api.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
				}
				api.Post("/chat", cfg.ChatHandler.HandleChat)
			})
		}
	})

	// Concierge operations endpoints
	if cfg.AdminTickets != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/tickets/{id}", cfg.AdminTickets.HandleGet)
			admin.Patch("/tickets/{id}/status", cfg.AdminTickets.HandleUpdateStatus)
			admin.Get("/members/{memberID}/tickets", cfg.AdminTickets.HandleListByMember)
		})
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
