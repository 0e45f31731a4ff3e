package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"

	"plutoiptv/internal/api"
	"plutoiptv/internal/logging"
	"plutoiptv/internal/services"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	router chi.Router

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind string, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(bind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(srv.requestLogger)

	r.Get("/health", srv.handleHealth)
	r.Get("/status", srv.handleStatus)
	r.Get("/refresh", srv.handleRefresh)
	r.Post("/refresh", srv.handleRefresh)
	r.Get("/duplicates", srv.handleDuplicates)
	r.Get("/channels", srv.handleChannels)
	r.Get("/"+d.cfg.Output.PlaylistFilename, srv.serveFile(d.cfg.PlaylistPath(), "audio/x-mpegurl"))
	r.Get("/"+d.cfg.Output.GuideFilename, srv.serveFile(d.cfg.GuidePath(), "application/xml"))

	srv.router = r
	srv.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.stop()
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("playlist", "/"+s.daemon.cfg.Output.PlaylistFilename),
		logging.String("guide", "/"+s.daemon.cfg.Output.GuideFilename))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *apiServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := services.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.WithContext(ctx, s.logger).Debug("http request",
			logging.String(logging.FieldEventType, "http_request"),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Duration("elapsed", time.Since(start)))
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.NewHealth(s.daemon.now(), s.daemon.pipeline.Cache().Peek()))
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("manual refresh requested",
		logging.String(logging.FieldEventType, "refresh_requested"))
	out, err := s.daemon.Refresh(r.Context(), true)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	summary := api.FromDiagnostics(out.Diagnostics)
	s.writeJSON(w, http.StatusOK, api.RefreshResponse{
		Status:  api.StatusSuccess,
		Message: "Channels refreshed",
		Run:     &summary,
	})
}

func (s *apiServer) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.daemon.pipeline.AnalyzeDuplicates(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, analysis)
}

func (s *apiServer) handleChannels(w http.ResponseWriter, r *http.Request) {
	listing, err := s.daemon.pipeline.Listing(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, listing)
}

func (s *apiServer) serveFile(path, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		http.ServeFile(w, r, path)
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Status: api.StatusError, Message: message})
}
