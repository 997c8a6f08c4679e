// Package api provides the local JSON HTTP API for Rachamuffin.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/rachamuffin/rachamuffin/internal/app/account"
	"github.com/rachamuffin/rachamuffin/internal/app/engagement"
	"github.com/rachamuffin/rachamuffin/internal/app/savedata"
	"github.com/rachamuffin/rachamuffin/internal/domain"
	"github.com/rachamuffin/rachamuffin/internal/health"
)

// maxBodyBytes bounds request bodies. Save imports are the largest.
const maxBodyBytes = 1 << 20

// Services are the components the API exposes.
type Services struct {
	Engine   *engagement.Engine
	Accounts *account.Service
	SaveData *savedata.Service
	Inbox    *engagement.Inbox
	Health   *health.Checker // optional
	Reset    func() bool     // optional, defaults to Engine.Reset
}

// Server is the Rachamuffin HTTP API server. Every handler touching the
// engine runs under mu.
type Server struct {
	svc         Services
	mu          sync.Locker
	corsOrigins []string
	log         zerolog.Logger
}

// NewServer creates a new API server. mu may be nil.
func NewServer(svc Services, mu sync.Locker, corsOrigins []string, logger zerolog.Logger) *Server {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	if svc.Reset == nil {
		svc.Reset = svc.Engine.Reset
	}
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	return &Server{
		svc:         svc,
		mu:          mu,
		corsOrigins: corsOrigins,
		log:         logger.With().Str("component", "api").Logger(),
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	}).Handler)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/mission/complete", s.handleCompleteMission)
		r.Post("/streak/check", s.handleCheckStreak)
		r.Post("/reset", s.handleReset)

		r.Get("/achievements", s.handleAchievements)
		r.Get("/history", s.handleHistory)
		r.Get("/challenges", s.handleChallenges)
		r.Post("/challenges/{id}/progress", s.handleChallengeProgress)

		r.Get("/avatar", s.handleAvatar)
		r.Put("/avatar", s.handleUpdateAvatar)
		r.Post("/avatar/ack", s.handleAvatarAck)
		r.Post("/avatar/random", s.handleRandomAvatar)
		r.Get("/avatar/presets", s.handlePresets)
		r.Post("/avatar/presets", s.handleSavePreset)
		r.Post("/avatar/presets/{id}/load", s.handleLoadPreset)

		r.Get("/coins", s.handleCoins)
		r.Post("/coins/spend", s.handleSpend)
		r.Post("/share", s.handleShare)

		r.Get("/notifications", s.handleNotifications)
		r.Post("/notifications/{id}/shown", s.handleNotificationShown)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)

		r.Route("/account", func(r chi.Router) {
			r.Get("/", s.handleCurrentUser)
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Put("/streak-type", s.handleStreakType)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.svc.Health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.svc.Health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": s.svc.Health.Statuses(),
	})
}

// locked runs fn while holding the engine lock.
func (s *Server) locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    http.StatusText(status),
		},
	})
}

// writeDomainError maps a domain error to its status code.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrUnknownStreakType),
		errors.Is(err, domain.ErrMissingCustomText),
		errors.Is(err, domain.ErrInvalidSaveData),
		errors.Is(err, domain.ErrUnsupportedVersion):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrChallengeNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrChallengeCompleted),
		errors.Is(err, domain.ErrInsufficientCoins):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON request body into dst. An empty body leaves
// dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
	return false
}

// requestLogger logs each request with chi's request id.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLog := logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			next.ServeHTTP(ww, r.WithContext(reqLog.WithContext(r.Context())))

			reqLog.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("request completed")
		})
	}
}
