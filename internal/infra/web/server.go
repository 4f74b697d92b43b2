package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-voice-translator/internal/config"
	"telegram-voice-translator/internal/usecase"
)

// Server exposes the ops surface: health, Prometheus metrics and a
// JWT-protected stats API.
type Server struct {
	statsUC usecase.StatsUseCase
	auth    *AuthManager
	cfg     config.OpsConfig
	log     *zerolog.Logger

	srv *http.Server
}

func NewServer(statsUC usecase.StatsUseCase, cfg config.OpsConfig, secureCookies bool, logger *zerolog.Logger) *Server {
	return &Server{
		statsUC: statsUC,
		auth:    NewAuthManager(cfg.JWTSecret, secureCookies, cfg.TokenTTL),
		cfg:     cfg,
		log:     logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/v1/login", s.loginHandler)
	r.Group(func(r chi.Router) {
		r.Use(s.auth.Guard)
		r.Get("/api/v1/stats", s.statsHandler)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

// loginHandler exchanges the shared ops secret for a short-lived JWT.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if s.cfg.JWTSecret == "" {
		s.log.Error().Msg("ops jwt secret is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.cfg.JWTSecret)) != 1 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	token, err := s.auth.Mint(w)
	if err != nil {
		s.log.Error().Err(err).Msg("token mint failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.Pipeline(r.Context())
	if err != nil {
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}

	response := struct {
		ActiveChats   int    `json:"active_chats"`
		QueuedJobs    int    `json:"queued_jobs"`
		InFlight      int    `json:"in_flight"`
		Done          int64  `json:"done"`
		Failed        int64  `json:"failed"`
		Abandoned     int64  `json:"abandoned"`
		UptimeSeconds int64  `json:"uptime_seconds"`
		Uptime        string `json:"uptime"`
	}{
		ActiveChats:   stats.ActiveChats,
		QueuedJobs:    stats.QueuedJobs,
		InFlight:      stats.InFlight,
		Done:          stats.Done,
		Failed:        stats.Failed,
		Abandoned:     stats.Abandoned,
		UptimeSeconds: int64(s.statsUC.Uptime().Seconds()),
		Uptime:        s.statsUC.Uptime().Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
