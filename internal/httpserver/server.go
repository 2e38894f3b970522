package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/menobass/hive-checkin-bot/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the keep-alive HTTP server. It answers uptime-monitor pings and
// serves read-only views over the store for reporting tooling, plus the
// Prometheus endpoint. It performs no writes.
type Server struct {
	community  string
	dryRun     bool
	stats      domain.StatsReader
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates the keep-alive server on the given port.
func NewServer(port int, community string, dryRun bool, stats domain.StatsReader, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	s := &Server{
		community: community,
		dryRun:    dryRun,
		stats:     stats,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats/daily", s.handleDailyStats)
	mux.HandleFunc("GET /stats/totals", s.handleTotals)
	mux.HandleFunc("GET /posts/recent", s.handleRecentPosts)
	mux.HandleFunc("GET /transfers", s.handleTransfers)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      withLogging(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening. It blocks until the server is shut down or an
// error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "hive check-in bot is alive")
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "running",
		"community": s.community,
		"dry_run":   s.dryRun,
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = domain.DateKey(time.Now())
	}

	stats, err := s.stats.DailyStats(r.Context(), date)
	if err != nil {
		s.logger.Error("failed to read daily stats", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read daily stats")
		return
	}
	if stats == nil {
		stats = &domain.DailyStats{Date: date}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.stats.TotalStats(r.Context())
	if err != nil {
		s.logger.Error("failed to read total stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read total stats")
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleRecentPosts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	posts, err := s.stats.RecentProcessedPosts(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read processed posts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read processed posts")
		return
	}

	out := make([]map[string]any, len(posts))
	for i, p := range posts {
		out[i] = map[string]any{
			"author":      p.Author,
			"permlink":    p.Permlink,
			"hbd_sent":    p.HBDSent,
			"upvoted":     p.Upvoted,
			"commented":   p.Commented,
			"recorded_at": p.RecordedAt.UTC().Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": out})
}

func (s *Server) handleTransfers(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = domain.DateKey(time.Now())
	}

	count, total, err := s.stats.TransferStats(r.Context(), date)
	if err != nil {
		s.logger.Error("failed to read transfer stats", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read transfer stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":           date,
		"transfer_count": count,
		"total_amount":   total,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
