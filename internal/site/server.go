package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/varcat/internal/catalog"
	"github.com/leapstack-labs/varcat/pkg/core"
)

// Server serves the latest published build with live reload.
type Server struct {
	site   *Site
	port   int
	watch  bool
	logger *slog.Logger
}

// ServerConfig holds configuration for the preview server.
type ServerConfig struct {
	Port  int
	Watch bool
}

// datasetSummary is one entry of the dataset listing.
type datasetSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	Rows      int    `json:"rows"`
	Variables int    `json:"variables"`
}

type apiError struct {
	Error string `json:"error"`
}

// NewServer creates a new preview server. The site must publish with live reload
// for clients to pick up rebuilds.
func NewServer(site *Site, cfg ServerConfig) *Server {
	return &Server{
		site:   site,
		port:   cfg.Port,
		watch:  cfg.Watch,
		logger: site.logger,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		s.requestLogger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)
	r.Get("/__reload", s.handleSSE)

	r.Route("/api", func(r chi.Router) {
		r.Get("/datasets", s.handleDatasets)
		r.Get("/datasets/{id}", s.handleDataset)
		r.Get("/datasets/{id}/groups/{name}", s.handleGroup)
		r.Get("/provenance", s.handleProvenance)
	})
	return r
}

// Serve builds the site, then serves it until ctx is cancelled. With watch
// enabled, input changes trigger a rebuild and a client reload.
func (s *Server) Serve(ctx context.Context) error {
	if _, err := s.site.Rebuild(ctx); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("serving catalog", "addr", fmt.Sprintf("http://%s", ln.Addr().String()))

	if s.watch {
		eg.Go(func() error {
			return NewWatcher(s.site.gen.DataDir(), s.site.Rebuild, s.logger).Run(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	_, page := s.site.Current()
	if page == nil {
		http.Error(w, "catalog not built yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write(page)
}

// handleSSE handles Server-Sent Events for live reload.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.site.notifier.subscribe()
	defer s.site.notifier.unsubscribe(ch)

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			_, _ = fmt.Fprintf(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}

func (s *Server) handleDatasets(w http.ResponseWriter, _ *http.Request) {
	cat, ok := s.catalog(w)
	if !ok {
		return
	}
	out := make([]datasetSummary, 0, len(cat.Datasets))
	for _, ds := range cat.Datasets {
		out = append(out, datasetSummary{
			ID:        ds.ID,
			Title:     ds.Title,
			Subtitle:  ds.Subtitle,
			Rows:      len(ds.Variables),
			Variables: len(ds.VariableIndex),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	members, err := catalog.ExpandGroup(ds, chi.URLParam(r, "name"))
	switch {
	case errors.Is(err, catalog.ErrUnknownRow):
		writeJSON(w, http.StatusNotFound, apiError{Error: err.Error()})
	case errors.Is(err, catalog.ErrNotGroup):
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, members)
	}
}

func (s *Server) handleProvenance(w http.ResponseWriter, _ *http.Request) {
	res, _ := s.site.Current()
	if res == nil {
		writeJSON(w, http.StatusServiceUnavailable, apiError{Error: "catalog not built yet"})
		return
	}
	writeJSON(w, http.StatusOK, res.Provenance)
}

func (s *Server) catalog(w http.ResponseWriter) (*core.Catalog, bool) {
	res, _ := s.site.Current()
	if res == nil {
		writeJSON(w, http.StatusServiceUnavailable, apiError{Error: "catalog not built yet"})
		return nil, false
	}
	return res.Catalog, true
}

func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*core.Dataset, bool) {
	cat, ok := s.catalog(w)
	if !ok {
		return nil, false
	}
	id := chi.URLParam(r, "id")
	ds, ok := cat.Dataset(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, apiError{Error: fmt.Sprintf("no such dataset: %s", id)})
		return nil, false
	}
	return ds, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
