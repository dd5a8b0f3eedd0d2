package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	redisinfra "telegram-shop-bot/internal/infra/redis"
)

// Server is the ops sidecar: health and metrics only, no user traffic.
type Server struct {
	port   int
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	log    *zerolog.Logger
	server *http.Server
}

func NewServer(port int, pool *pgxpool.Pool, redis *redisinfra.Client, logger *zerolog.Logger) *Server {
	compLog := logger.With().Str("component", "OpsServer").Logger()
	return &Server{port: port, pool: pool, redis: redis, log: &compLog}
}

func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: r,
	}

	s.log.Info().Int("port", s.port).Msg("ops server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.pool.Ping(ctx); err != nil {
		http.Error(w, "db unreachable", http.StatusServiceUnavailable)
		return
	}
	if err := s.redis.Ping(ctx); err != nil {
		http.Error(w, "redis unreachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
