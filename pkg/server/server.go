package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/levenlabs/go-lflag"

	"github.com/pvece/pvece/pkg/log"
	"github.com/pvece/pvece/pkg/planner"
	"github.com/pvece/pvece/pkg/storage"
)

// Server handles the HTTP API: project and configuration CRUD plus the
// sizing, load-curve and V2G calculation endpoints.
type Server struct {
	storage storage.Database
	planner *planner.Planner

	listenAddr string
	serverName string
	httpServer *http.Server
}

// Configured initializes the Server with dependencies.
// It uses lflag to register command-line flags for configuration.
func Configured(db storage.Database, pl *planner.Planner) *Server {
	srv := &Server{
		storage:    db,
		planner:    pl,
		serverName: "pvece",
	}
	revision := os.Getenv("K_REVISION")
	if revision != "" {
		srv.serverName = revision
	}

	// get the port from PORT when running in cloud run
	port := os.Getenv("PORT")
	if port == "" {
		// otherwise default to 8080
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/projects", s.handleCreateProject)
	apiMux.HandleFunc("GET /api/projects", s.handleListProjects)
	apiMux.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	apiMux.HandleFunc("PUT /api/projects/{id}", s.handleUpdateProject)
	apiMux.HandleFunc("DELETE /api/projects/{id}", s.handleDeleteProject)
	apiMux.HandleFunc("GET /api/projects/{id}/pv", s.handleGetPvConfig)
	apiMux.HandleFunc("PUT /api/projects/{id}/pv", s.handleSetPvConfig)
	apiMux.HandleFunc("GET /api/projects/{id}/fleet", s.handleGetFleetConfig)
	apiMux.HandleFunc("PUT /api/projects/{id}/fleet", s.handleSetFleetConfig)
	apiMux.HandleFunc("GET /api/projects/{id}/tariff", s.handleListTariff)
	apiMux.HandleFunc("PUT /api/projects/{id}/tariff", s.handleReplaceTariff)
	apiMux.HandleFunc("POST /api/projects/{id}/calculate", s.handleCalculateSizing)
	apiMux.HandleFunc("GET /api/projects/{id}/loadcurve", s.handleLoadCurve)
	apiMux.HandleFunc("GET /api/projects/{id}/v2g", s.handleProjectV2G)
	apiMux.HandleFunc("POST /api/v2g/calculate", s.handleStandaloneV2G)

	mux := http.NewServeMux()
	mux.Handle("/api/", apiMux)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return s.revisionMiddleware(gziphandler.GzipHandler(mux))
}

// Run starts the HTTP server and blocks until the context is canceled or an error occurs.
// It also handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	// use a channel to capturing server errors
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		// Context canceled, shut down gracefully
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

// writeDomainError maps storage and planner errors to HTTP statuses: absent
// projects are 404, missing or invalid inputs are 400, everything else 500.
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrProjectNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, storage.ErrConfigNotFound),
		errors.Is(err, planner.ErrMissingInput),
		errors.Is(err, planner.ErrInvalidInput):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		log.Ctx(ctx).ErrorContext(ctx, "request failed", slog.Any("error", err))
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) revisionMiddleware(next http.Handler) http.Handler {
	if s.serverName == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverName)
		next.ServeHTTP(w, r)
	})
}
