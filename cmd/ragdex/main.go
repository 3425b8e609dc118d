package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/auditcloud/ragdex/internal/config"
	dbRedis "github.com/auditcloud/ragdex/internal/db/redis"
	"github.com/auditcloud/ragdex/internal/domain"
	logpkg "github.com/auditcloud/ragdex/internal/logger"
	"github.com/auditcloud/ragdex/internal/metrics"
	searchrepo "github.com/auditcloud/ragdex/internal/repository/search"
	chiTransport "github.com/auditcloud/ragdex/internal/transport/chi"
	ollamaGen "github.com/auditcloud/ragdex/internal/transport/ollama"
	openaiEmb "github.com/auditcloud/ragdex/internal/transport/openai"
	answeruc "github.com/auditcloud/ragdex/internal/usecase/answer"
	healthuc "github.com/auditcloud/ragdex/internal/usecase/health"
	promptuc "github.com/auditcloud/ragdex/internal/usecase/prompt"
	retrieveuc "github.com/auditcloud/ragdex/internal/usecase/retrieve"
	verifyuc "github.com/auditcloud/ragdex/internal/usecase/verify"
	"github.com/auditcloud/ragdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ragdex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("collection", cfg.Rag.Collection),
		zap.String("generation_model", cfg.Generation.Model),
	)

	// Register provider and pipeline metrics explicitly (no init())
	metrics.RegisterProviderMetrics()
	metrics.RegisterPipelineMetrics()

	// Both external capabilities are lazy: the server starts and serves
	// degraded answers even when the store or embedding provider is down.
	embedderCell := retrieveuc.NewEmbedderCell(newEmbedderFactory(cfg, logger))
	searcherCell := retrieveuc.NewSearcherCell(newSearcherFactory(cfg, logger))

	retrieveSvc := retrieveuc.New(embedderCell, searcherCell)
	promptBuilder := promptuc.New(cfg.Rag.MaxContextChars)
	generator := ollamaGen.NewGenerator(&ollamaGen.Config{
		BaseURL: cfg.Generation.URL,
		Model:   cfg.Generation.Model,
		Timeout: time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	answerSvc := answeruc.New(retrieveSvc, promptBuilder, generator, verifyuc.New())

	healthSvc := healthuc.New(
		newStorePinger(searcherCell),
		newEmbeddingHealthChecker(embedderCell),
		generator,
	)

	server := chiTransport.NewServer(answerSvc, retrieveSvc, healthSvc, cfg.Rag.DefaultTopK, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// newEmbedderFactory builds the lazy embedder constructor: OpenAI-compatible
// provider, optionally wrapped with the query instruction prefix.
func newEmbedderFactory(cfg config.Config, logger *zap.Logger) retrieveuc.EmbedderFactory {
	return func() (domain.Embedder, error) {
		if cfg.Embedding.APIKey == "" {
			return nil, fmt.Errorf("embedding api key is not configured")
		}

		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
		logger.Info("Embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)

		if cfg.Embedding.QueryInstruction != "" {
			return domain.NewInstructionEmbedder(base, cfg.Embedding.QueryInstruction), nil
		}
		return base, nil
	}
}

// newSearcherFactory builds the lazy store constructor: a fresh rueidis
// client plus the collection-bound search repository, connectivity verified.
func newSearcherFactory(cfg config.Config, logger *zap.Logger) retrieveuc.SearcherFactory {
	return func(ctx context.Context) (retrieveuc.Searcher, error) {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create store: %w", err)
		}

		readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			store.Close()
			return nil, fmt.Errorf("store not ready: %w", err)
		}
		logger.Info("Connected to vector store", zap.Strings("addrs", cfg.Database.Addrs))

		return searchrepo.New(store, cfg.Rag.KeyPrefix, cfg.Rag.Collection), nil
	}
}

// storePinger adapts the searcher cell to the health DBPinger contract.
type storePinger struct {
	cell *retrieveuc.SearcherCell
}

func newStorePinger(cell *retrieveuc.SearcherCell) *storePinger {
	return &storePinger{cell: cell}
}

func (p *storePinger) Ping(ctx context.Context) error {
	s, err := p.cell.Get(ctx)
	if err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}
	if err := s.Ping(ctx); err != nil {
		return fmt.Errorf("store ping: %w", err)
	}
	return nil
}

// embeddingHealthChecker probes the lazily-initialized embedder.
type embeddingHealthChecker struct {
	cell *retrieveuc.EmbedderCell
}

func newEmbeddingHealthChecker(cell *retrieveuc.EmbedderCell) *embeddingHealthChecker {
	return &embeddingHealthChecker{cell: cell}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	e, err := h.cell.Get()
	if err != nil {
		return fmt.Errorf("embedder unavailable: %w", err)
	}
	if hc, ok := e.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
