package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/staff-be/internal/auth"
	"github.com/hongminglow/staff-be/internal/config"
	"github.com/hongminglow/staff-be/internal/http/handlers"
	"github.com/hongminglow/staff-be/internal/middleware"
	"github.com/hongminglow/staff-be/internal/service"
	"github.com/hongminglow/staff-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// Services are the collaborators the routes are built from.
type Services struct {
	Auth     *service.Authenticator
	Registry *service.Registry
	Guard    *auth.Guard
}

// NewServices builds the services for store from cfg.
func NewServices(cfg config.Config, store storage.Store) Services {
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	return Services{
		Auth:     service.NewAuthenticator(store, store, hasher, tokens, cfg.Lockout),
		Registry: service.NewRegistry(store, hasher),
		Guard:    auth.NewGuard(tokens),
	}
}

// Routes mounts every endpoint and wraps the mux in the shared middleware.
func Routes(cfg config.Config, svc Services, startedAt time.Time) http.Handler {
	mux := http.NewServeMux()
	protect := middleware.RequireAuth(svc.Guard)

	handlers.NewHealthHandler(startedAt).Register(mux)
	handlers.NewAuthHandler(svc.Auth).Register(mux, protect)
	handlers.NewUserHandler(svc.Registry).Register(mux, protect)
	handlers.NewEmployeeHandler(svc.Registry).Register(mux, protect)
	handlers.NewLogHandler(svc.Registry).Register(mux, protect)
	handlers.NewSiteHandler(cfg.StaticDir).Register(mux)

	return middleware.Chain(mux, middleware.Logging, middleware.CORS(cfg.CORSOrigins))
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Routes(cfg, NewServices(cfg, store), time.Now()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
