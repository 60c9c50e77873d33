// Package server exposes the pricing engine, inventory store, and photo
// tooling as a headless JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/buddy-dubby/reselling-app/internal/imaging"
	"github.com/buddy-dubby/reselling-app/internal/pricing"
	"github.com/buddy-dubby/reselling-app/internal/service"
	"github.com/buddy-dubby/reselling-app/internal/storage"
)

// Options holds the HTTP server configuration.
type Options struct {
	Port           int
	CORSOrigins    []string
	UploadDir      string
	MaxUploadBytes int64
}

// Revaluer reprices one inventory item and records the snapshot. The
// revaluation service satisfies it.
type Revaluer interface {
	RevalueItem(ctx context.Context, item storage.Item) (*service.Result, error)
}

// Deps aggregates everything the handlers need.
type Deps struct {
	Engine   *pricing.Engine
	Store    storage.Store
	Remover  *imaging.Remover
	Revaluer Revaluer
	Logger   zerolog.Logger
}

// Server is the HTTP API for the reselling app.
type Server struct {
	httpServer *http.Server
	handler    http.Handler

	engine    *pricing.Engine
	store     storage.Store
	remover   *imaging.Remover
	revaluer  Revaluer
	uploadDir string
	maxUpload int64
	logger    zerolog.Logger
}

// New builds the server with all routes registered.
func New(opts Options, deps Deps) *Server {
	s := &Server{
		engine:    deps.Engine,
		store:     deps.Store,
		remover:   deps.Remover,
		revaluer:  deps.Revaluer,
		uploadDir: opts.UploadDir,
		maxUpload: opts.MaxUploadBytes,
		logger:    deps.Logger.With().Str("component", "server").Logger(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/price-check", s.handlePriceCheck)
	mux.HandleFunc("POST /api/generate-description", s.handleDescribe)

	mux.HandleFunc("GET /api/inventory", s.handleInventoryList)
	mux.HandleFunc("POST /api/inventory", s.handleInventoryCreate)
	mux.HandleFunc("GET /api/inventory/{id}", s.handleInventoryGet)
	mux.HandleFunc("PUT /api/inventory/{id}", s.handleInventoryUpdate)
	mux.HandleFunc("DELETE /api/inventory/{id}", s.handleInventoryDelete)
	mux.HandleFunc("POST /api/inventory/{id}/revalue", s.handleInventoryRevalue)
	mux.HandleFunc("GET /api/inventory/{id}/valuations", s.handleInventoryValuations)
	mux.HandleFunc("POST /api/inventory/{id}/photos", s.handleInventoryPhotos)

	mux.HandleFunc("POST /api/remove-background", s.handleRemoveBackground)
	mux.HandleFunc("GET /uploads/{file}", s.handleUploadedFile)

	var h http.Handler = mux
	h = requestLog(s.logger)(h)
	h = cors(opts.CORSOrigins)(h)
	s.handler = h

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: h,
		// Background removal holds the response open while the model
		// service works, so the write window is generous.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the routed handler chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening. It blocks until the server fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
