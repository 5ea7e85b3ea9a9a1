package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"book-inventory/internal/config"
	custommiddleware "book-inventory/internal/middleware"
	"book-inventory/internal/repository"
	"book-inventory/internal/service"
	"book-inventory/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	repo   repository.BookRepository
	redis  *redis.Client
}

// NewServer assembles the router. A nil redisClient disables rate limiting.
func NewServer(cfg *config.Config, logger *zap.Logger, repo repository.BookRepository, redisClient *redis.Client) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.MetricsMiddleware)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	bookService := service.NewBookService(repo)
	bookHandler := transport.NewBookHandler(bookService, logger)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{
			"message": "Book Inventory API is running",
		})
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := bookService.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			custommiddleware.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Handle("/metrics", custommiddleware.MetricsHandler())

	router.Group(func(r chi.Router) {
		if redisClient != nil {
			r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.Requests,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         "books_rate_limit",
			}, logger))
		}
		bookHandler.RegisterRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		repo:   repo,
		redis:  redisClient,
	}

	return server
}

// Close releases the store and the rate limiter's Redis connection
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Closing server resources")

	var firstErr error
	if s.repo != nil {
		if err := s.repo.Close(ctx); err != nil {
			s.logger.Error("Failed to close book store", zap.Error(err))
			firstErr = err
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	s.logger.Sync()
	return firstErr
}

// NewRedisClient returns a client for cfg, or nil when no address is configured
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	if cfg.Addr == "" {
		logger.Info("Rate limiting disabled: REDIS_ADDR not set")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, rate limiter will fail open", zap.Error(err))
	}
	return client
}
