// Package api is the Boundary Facade: it decodes HTTP/JSON requests, maps
// them onto the core registry/query/align calls, and encodes responses.
// It is the only layer permitted to touch the filesystem outside the
// cache directory, for receiving uploads and clearing them on demand.
package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Wavecache/internal/config"
	"Wavecache/internal/logger"
	"Wavecache/registry"
)

// Server is the HTTP/JSON boundary for one registry instance.
type Server struct {
	httpServer *http.Server
	reg        *registry.Registry
	cfg        *config.Config

	requestSemaphore chan struct{}
}

// NewServer builds a Server around reg and cfg; it does not start
// listening until Start is called.
func NewServer(reg *registry.Registry, cfg *config.Config) *Server {
	maxConcurrent := runtime.NumCPU() * 4
	if maxConcurrent < 8 {
		maxConcurrent = 8
	}
	return &Server{
		reg:              reg,
		cfg:              cfg,
		requestSemaphore: make(chan struct{}, maxConcurrent),
	}
}

// Start registers routes and begins listening. It returns once the
// listener is up; serving continues on a background goroutine.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/upload", s.wrap(s.handleUpload))
	mux.HandleFunc("/clear", s.wrap(s.handleClear))

	mux.HandleFunc("/data", s.wrap(s.handleData))
	mux.HandleFunc("/metadata", s.wrap(s.handleMetadata))
	mux.HandleFunc("/channel-data/", s.wrap(s.handleChannelData))
	mux.HandleFunc("/channel-data-by-time/", s.wrap(s.handleChannelDataByTime))
	mux.HandleFunc("/channels", s.wrap(s.handleChannels))

	mux.HandleFunc("/multi-channel/datasets", s.wrap(s.handleMultiChannelDatasets))
	mux.HandleFunc("/multi-channel/data/", s.wrap(s.handleMultiChannelData))
	mux.HandleFunc("/multi-channel/dataset-name", s.wrap(s.handleDatasetName))
	mux.HandleFunc("/multi-channel/align-datasets", s.wrap(s.handleAlignDatasets))

	mux.HandleFunc("/align", s.wrap(s.handleAlign))

	mux.HandleFunc("/channel-names", s.wrap(s.handleChannelNames))
	mux.HandleFunc("/channel-offset", s.wrap(s.handleChannelOffset))
	mux.HandleFunc("/channel-offsets", s.wrap(s.handleChannelOffset))
	mux.HandleFunc("/channel-cut-range", s.wrap(s.handleChannelCutRange))
	mux.HandleFunc("/channel-cut-ranges", s.wrap(s.handleChannelCutRange))

	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("api: listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api: server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the server down within timeout.
func (s *Server) Stop(timeout time.Duration) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// wrap applies CORS, panic recovery and a request concurrency cap around
// a handler, in that order.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return s.cors(s.recoverMiddleware(s.resourceLimit(next)))
}

// cors makes every response fully permissive, since the UI client is
// served from a different origin than this API.
func (s *Server) cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

// recoverMiddleware guards against a programmer error in one handler
// taking down the process; it logs the panic and returns a generic error
// envelope instead of propagating it.
func (s *Server) recoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("api: panic in %s: %v", r.URL.Path, rec)
				writeJSON(w, map[string]any{"error": true, "message": "internal error"})
			}
		}()
		next(w, r)
	}
}

// resourceLimit bounds the number of concurrently in-flight requests so a
// burst of expensive queries cannot exhaust the process.
func (s *Server) resourceLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case s.requestSemaphore <- struct{}{}:
			defer func() { <-s.requestSemaphore }()
			next(w, r)
		default:
			w.Header().Set("Retry-After", "1")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
		}
	}
}
