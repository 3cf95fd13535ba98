// Package server exposes routing graph builds over HTTP.
//
// Routes:
//
//	GET /graph?domain=D&token=T[&api_url=U]    Cytoscape element list
//	GET /static/route_graph_inventory_tab.js   portal loader script
//	GET /metrics                               Prometheus metrics
//	GET /healthz                               liveness
//
// Every response allows any origin so the loader script can call /graph
// from the PBX portal.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/routegraph/pkg/buildinfo"
	"github.com/matzehuels/routegraph/pkg/observability"
	"github.com/matzehuels/routegraph/pkg/pipeline"
	"github.com/matzehuels/routegraph/pkg/whitelist"
)

// DefaultCytoscapeURL is the script the loader pulls in when the portal page
// does not already provide Cytoscape.js.
const DefaultCytoscapeURL = "https://cdnjs.cloudflare.com/ajax/libs/cytoscape/3.28.1/cytoscape.min.js"

const shutdownTimeout = 30 * time.Second

// Config wires a Server.
type Config struct {
	// Runner executes builds. Required.
	Runner *pipeline.Runner

	// Whitelist guards the api_url query parameter. Nil disables the check.
	Whitelist *whitelist.Whitelist

	// DefaultAPIURLs are used when a request has no api_url.
	DefaultAPIURLs []string

	// PublicAPIURL is the /graph URL injected into the loader script.
	PublicAPIURL string

	// CytoscapeURL overrides DefaultCytoscapeURL.
	CytoscapeURL string

	// Metrics enables /metrics and request instrumentation when set.
	Metrics *observability.Metrics

	Logger *log.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg    Config
	logger *log.Logger
	loader []byte
	router chi.Router
}

// New builds the router and renders the loader script.
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		return nil, errors.New("server: runner is required")
	}
	if cfg.CytoscapeURL == "" {
		cfg.CytoscapeURL = DefaultCytoscapeURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	loader, err := renderLoader(cfg.PublicAPIURL, cfg.CytoscapeURL)
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, logger: logger, loader: loader}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors)
	r.Use(s.requestLogger)
	if s.cfg.Metrics != nil {
		r.Use(s.instrument)
	}

	r.Get("/graph", s.handleGraph)
	r.Get("/static/route_graph_inventory_tab.js", s.handleLoader)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": buildinfo.Version,
			"commit":  buildinfo.Commit,
		})
	})
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())
	}
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then drains open
// requests for up to 30 seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
