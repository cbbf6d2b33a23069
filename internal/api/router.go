package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/skywise/flightnet/internal/config"
	"github.com/skywise/flightnet/internal/storage"
	"github.com/skywise/flightnet/internal/weather"
	"github.com/skywise/flightnet/pkg/logger"
)

// Router builds the HTTP route table for the API
type Router struct {
	handler *Handler
	config  *config.Config
	logger  *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(store storage.Store, weatherService *weather.Service, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		handler: NewHandler(store, weatherService, cfg, log),
		config:  cfg,
		logger:  log.Named("router"),
	}
}

// Routes returns the assembled chi router
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(rt.requestLogger)
	r.Use(rt.cors)

	r.Get("/health", rt.handler.GetHealth)

	r.Get("/airlines", rt.handler.GetAirlines)
	r.Post("/airlines", rt.handler.CreateAirline)
	r.Delete("/airlines", rt.handler.DeleteAirlines)
	r.Get("/airline", rt.handler.GetAirline)
	r.Get("/airline/airports", rt.handler.GetAirlineAirports)

	r.Get("/airports", rt.handler.GetAirports)
	r.Post("/airports", rt.handler.CreateAirport)
	r.Delete("/airports", rt.handler.DeleteAirports)
	r.Get("/airport", rt.handler.GetAirport)

	r.Get("/routes", rt.handler.GetRoutes)
	r.Get("/routes/arrivals", rt.handler.GetRouteArrivals)
	r.Get("/routes/byairline", rt.handler.GetRoutesByAirline)
	r.Post("/routes", rt.handler.CreateRoute)
	r.Put("/routes", rt.handler.UpdateRoute)
	r.Delete("/routes", rt.handler.DeleteRoute)

	return r
}

// requestLogger logs each request with method, path, status and duration
func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		rt.logger.Debug("Request handled",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Duration("duration", time.Since(start)))
	})
}

// cors applies the configured CORS policy
func (rt *Router) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && rt.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rt *Router) originAllowed(origin string) bool {
	for _, allowed := range rt.config.Server.CORSAllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
