package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-ssi-auth-server/internal/config"
	"github.com/jrsteele09/go-ssi-auth-server/realtime"
	"github.com/jrsteele09/go-ssi-auth-server/ssi"
	"github.com/jrsteele09/go-ssi-auth-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SessionParser resolves a bearer session token to an account id
type SessionParser interface {
	Parse(raw string) (string, error)
}

// Pinger reports whether the correlation store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the HTTP surface is wired to
type Deps struct {
	Service  *ssi.Service
	Sessions SessionParser
	Users    users.UserRepo
	Store    Pinger
	Registry *realtime.Registry
}

type Server struct {
	dev    bool // Development environment, enables route and request logging
	mux    *http.ServeMux
	routes []string
	config config.Config
	deps   Deps
	socket http.Handler
	log    zerolog.Logger
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Service == nil {
		return nil, errors.New("[Server New] ssi service is required")
	}
	if deps.Sessions == nil || deps.Users == nil || deps.Store == nil || deps.Registry == nil {
		return nil, errors.New("[Server New] sessions, users, store and registry are required")
	}

	s := &Server{
		dev:    cfg.IsDevelopment(),
		mux:    http.NewServeMux(),
		config: cfg,
		deps:   deps,
		log:    log.Logger,
	}
	s.socket = realtime.NewHandler(deps.Registry, deps.Service, cfg.GetAllowedOrigins().Hosts())

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
	if !s.dev {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	s.log.Info().Msg(fmt.Sprintf("[%s] %s", colourMethod(method), path))
}

func (s *Server) logError(method, path, error string) {
	s.log.Error().Msg(fmt.Sprintf("[%s] %s %s", colourMethod(method), path, errorColor.Sprint(error)))
}
