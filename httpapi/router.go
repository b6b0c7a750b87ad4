// Package httpapi exposes the search, lead, webhook and admin routes over a
// chi router.
package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	buscarlead "github.com/XandyNerd/BuscarLead"
	"github.com/XandyNerd/BuscarLead/core"
	"github.com/XandyNerd/BuscarLead/identity"
	"github.com/XandyNerd/BuscarLead/webhooks"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	glog "github.com/goliatone/go-logger/glog"
)

const defaultMaxBodyBytes int64 = 5 << 20

type Config struct {
	// MaxBodyBytes bounds every request body; webhook batches are the largest.
	MaxBodyBytes int64
	// AccessLog enables chi's request logger.
	AccessLog bool
}

type Server struct {
	facade       *buscarlead.Facade
	identity     identity.Resolver
	secret       webhooks.Verifier
	processor    *webhooks.Processor
	logger       core.Logger
	maxBodyBytes int64
	accessLog    bool
}

type Option func(*Server)

func WithLogger(logger core.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewServer(
	facade *buscarlead.Facade,
	resolver identity.Resolver,
	secret webhooks.Verifier,
	cfg Config,
	opts ...Option,
) (*Server, error) {
	if facade == nil {
		return nil, fmt.Errorf("httpapi: facade is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("httpapi: identity resolver is required")
	}
	if secret == nil {
		return nil, fmt.Errorf("httpapi: webhook verifier is required")
	}
	server := &Server{
		facade:       facade,
		identity:     resolver,
		secret:       secret,
		logger:       glog.Nop(),
		maxBodyBytes: cfg.MaxBodyBytes,
		accessLog:    cfg.AccessLog,
	}
	if server.maxBodyBytes <= 0 {
		server.maxBodyBytes = defaultMaxBodyBytes
	}
	for _, opt := range opts {
		if opt != nil {
			opt(server)
		}
	}
	server.processor = webhooks.NewProcessor(secret, webhooks.IngestHandlerFunc(server.ingest))
	return server, nil
}

// Router builds the route table. Identity is enforced on user routes, the
// shared secret on webhook and admin routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.accessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/webhooks/ingest", s.handleIngest)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireSecret)
		r.Post("/cleanup", s.handleCleanup)
		r.Post("/reset", s.handleReset)
	})

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(s.identity, s.writeError))

		r.Get("/dashboard", s.handleDashboard)

		r.Route("/searches", func(r chi.Router) {
			r.Get("/", s.handleListSearches)
			r.Post("/", s.handleCreateSearch)
			r.Get("/{id}", s.handleGetSearch)
			r.Post("/{id}/repeat", s.handleRepeatSearch)
		})

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", s.handleListLeads)
			r.Post("/{id}/status", s.handleSetLeadStatus)
		})
	})

	return r
}

func (s *Server) requireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.secret.Verify(r.Context(), r.Header); err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestBaseURL mirrors what the caller used to reach us so the workflow
// can call back on the same address.
func requestBaseURL(r *http.Request) string {
	proto := strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-Proto"), ",")[0])
	if proto == "" {
		proto = "http"
		if r.TLS != nil {
			proto = "https"
		}
	}
	host := strings.TrimSpace(r.Header.Get("X-Forwarded-Host"))
	if host == "" {
		host = r.Host
	}
	if host == "" {
		return ""
	}
	return proto + "://" + host
}
