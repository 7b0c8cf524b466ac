// Package server exposes the recordings gateway over HTTP. All protected
// routes resolve the bearer credential to a tenant before any catalog or
// gateway call runs.
package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/voxgate/recordings-gateway/auth"
	"github.com/voxgate/recordings-gateway/catalog"
	"github.com/voxgate/recordings-gateway/gateway"
	"github.com/voxgate/recordings-gateway/internal/config"
	"github.com/voxgate/recordings-gateway/objectstore"
)

// Services holds the domain dependencies of the HTTP layer.
type Services struct {
	Auth    *auth.Service
	Catalog *catalog.Service
	Gateway *gateway.Service
	Store   objectstore.Store // health probe only
}

type Server struct {
	env      string // Environment (e.g., "DEV", "production")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	services Services
	log      zerolog.Logger
}

func New(cfg config.Config, services Services, log zerolog.Logger) (*Server, error) {
	if services.Auth == nil {
		return nil, errors.New("[server.New] auth service is required")
	}
	if services.Catalog == nil {
		return nil, errors.New("[server.New] catalog service is required")
	}
	if services.Gateway == nil {
		return nil, errors.New("[server.New] gateway service is required")
	}
	if services.Store == nil {
		return nil, errors.New("[server.New] object store is required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		services: services,
		log:      log.With().Str("component", "server").Logger(),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		s.log.Debug().Str("route", route).Msg("registered")
	}
}
