package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/devconnector/internal/auth"
	"github.com/redmonkez12/devconnector/internal/config"
	"github.com/redmonkez12/devconnector/internal/httputil"
	"github.com/redmonkez12/devconnector/internal/logging"
	"github.com/redmonkez12/devconnector/internal/profile"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	authHandler *auth.Handler,
	profileHandler *profile.Handler,
	authMiddleware *auth.Middleware,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Validated at config load
	trustedProxies, err := cfg.Server.TrustedProxyPrefixes()
	if err != nil {
		logger.Error("ignoring invalid trusted proxies", "error", err.Error())
		trustedProxies = nil
	}

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(TrustedRealIP(trustedProxies))
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Production builds will not have this route at all
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.NotFound(handleNotFound)

		r.Post("/users", authHandler.Register)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/", authHandler.Login)
			r.With(authMiddleware.RequireAuth).Get("/", authHandler.Me)
		})

		r.Route("/profile", func(r chi.Router) {
			// Public
			r.Get("/", profileHandler.List)
			r.Get("/user/{user_id}", profileHandler.GetByUserID)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)

				r.Get("/me", profileHandler.Me)
				r.Post("/", profileHandler.Upsert)
				r.Delete("/", profileHandler.Delete)

				r.Put("/experience", profileHandler.AddExperience)
				r.Delete("/experience/{exp_id}", profileHandler.RemoveExperience)

				r.Put("/education", profileHandler.AddEducation)
				r.Delete("/education/{edu_id}", profileHandler.RemoveEducation)
			})
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	httputil.RespondErrorWithCode(w, "route not found", httputil.CodeNotFound, http.StatusNotFound)
}
