package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"literary-analysis/internal/common/pagination"
	pgRepo "literary-analysis/internal/infra/adapter/persistence/postgres"
	"literary-analysis/internal/infra/db"
	"literary-analysis/internal/infra/embedding"
	"literary-analysis/internal/infra/events"
	"literary-analysis/internal/infra/extractor"
	"literary-analysis/internal/infra/fetcher"
	"literary-analysis/internal/infra/keywords"
	"literary-analysis/internal/infra/literary"
	"literary-analysis/internal/infra/ocr"
	"literary-analysis/internal/infra/sentiment"
	"literary-analysis/internal/infra/storage"
	"literary-analysis/internal/observability/logging"
	"literary-analysis/internal/observability/metrics"
	"literary-analysis/internal/observability/slo"
	"literary-analysis/internal/observability/tracing"
	"literary-analysis/internal/resilience/circuitbreaker"
	"literary-analysis/pkg/config"

	analysisUC "literary-analysis/internal/usecase/analysis"
	fetchUC "literary-analysis/internal/usecase/fetch"

	hhttp "literary-analysis/internal/handler/http"
	hanalysis "literary-analysis/internal/handler/http/analysis"
	hauth "literary-analysis/internal/handler/http/auth"
	"literary-analysis/internal/handler/http/middleware"
	"literary-analysis/internal/handler/http/requestid"

	_ "literary-analysis/docs" // swagger docs
)

// @title           Literary Analysis API
// @version         1.0
// @description     Sentiment, keyword and literary analysis of text, web pages and images.
// @description     URL fetching is guarded against requests to private and internal networks.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Optional JWT bearer token. Required only when JWT_SECRET is set.

// recognizer is the OCR backend as seen by main: usable by the analysis
// service and observable by the health check.
type recognizer interface {
	analysisUC.TextRecognizer
	State() string
}

func main() {
	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	version := getVersion()
	shutdownTracing := initTracing(logger, version)

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	components := setupServer(ctx, logger, database, version)
	runServer(ctx, logger, components, version)

	components.close(logger)
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("tracer provider shutdown failed", slog.Any("error", err))
	}
}

// initLogger initializes and returns a structured logger based on
// LOG_FORMAT and LOG_LEVEL.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initTracing installs the global tracer provider.
func initTracing(logger *slog.Logger, version string) func(context.Context) error {
	shutdown, err := tracing.InitProvider(tracing.ProviderConfig{
		ServiceName:    config.GetEnvString("OTEL_SERVICE_NAME", "literary-analysis-api"),
		ServiceVersion: version,
		SampleRatio:    config.GetEnvFloat("OTEL_TRACES_SAMPLER_RATIO", 1.0),
	})
	if err != nil {
		logger.Error("failed to initialize tracing", slog.Any("error", err))
		os.Exit(1)
	}
	return shutdown
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	database, err := db.Open(ctx)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	return config.GetEnvString("VERSION", "dev")
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler        http.Handler
	Limiter        *middleware.RateLimiter
	LimiterCleanup time.Duration
	Database       *sql.DB

	embeddings *analysisUC.EmbeddingHook
	closers    []func() error
}

// close waits for in-flight embeddings, then releases the optional clients.
func (c *ServerComponents) close(logger *slog.Logger) {
	c.embeddings.Wait()
	for _, fn := range c.closers {
		if err := fn(); err != nil {
			logger.Warn("failed to close component", slog.Any("error", err))
		}
	}
}

// setupServer builds the fetch and analysis stacks and returns the HTTP
// handler with all routes and middleware.
func setupServer(ctx context.Context, logger *slog.Logger, database *sql.DB, version string) *ServerComponents {
	components := &ServerComponents{Database: database}
	breaker := circuitbreaker.NewDBCircuitBreaker(database)

	fetchSvc := setupFetchService(logger)

	smartCfg, warnings, err := sentiment.LoadSmartConfigFromEnv()
	for _, w := range warnings {
		logger.Warn("sentiment configuration warning", slog.String("warning", w))
	}
	if err != nil {
		logger.Error("invalid smart sentiment configuration", slog.Any("error", err))
		os.Exit(1)
	}
	sentimentAnalyzer := sentiment.NewAnalyzer(smartCfg, logger)
	capability := sentimentAnalyzer.Capability()
	logger.Info("smart sentiment capability",
		slog.Bool("available", capability.Available),
		slog.String("provider", capability.Provider),
		slog.String("model", capability.Model),
		slog.String("reason", capability.Reason))

	literaryAnalyzer := setupLiterary(ctx, logger)

	ocrCfg, err := ocr.LoadConfigFromEnv()
	if err != nil {
		logger.Error("invalid OCR configuration", slog.Any("error", err))
		os.Exit(1)
	}
	var rec recognizer = ocr.NewNoopRecognizer()
	if ocrCfg.Enabled {
		grpcRec, err := ocr.Dial(ctx, ocrCfg, logger)
		if err != nil {
			logger.Error("failed to create OCR client", slog.Any("error", err))
			os.Exit(1)
		}
		rec = grpcRec
		components.closers = append(components.closers, grpcRec.Close)
	}

	var uploads analysisUC.UploadStore
	storageCfg, err := storage.LoadConfigFromEnv()
	if err != nil {
		logger.Error("invalid storage configuration", slog.Any("error", err))
		os.Exit(1)
	}
	store, err := storage.New(ctx, storageCfg)
	if err != nil {
		logger.Error("failed to create upload store", slog.Any("error", err))
		os.Exit(1)
	}
	if store != nil {
		uploads = store
		logger.Info("upload archive enabled", slog.String("backend", storageCfg.Backend))
	}

	var publisher analysisUC.EventPublisher
	eventsCfg := events.LoadConfigFromEnv()
	if eventsCfg.Enabled() {
		natsPub, err := events.Connect(eventsCfg, logger)
		if err != nil {
			// Events are best effort; analyses still succeed without them.
			logger.Warn("nats unavailable, analysis events disabled", slog.Any("error", err))
		} else {
			publisher = natsPub
			components.closers = append(components.closers, func() error {
				natsPub.Close()
				return nil
			})
		}
	}

	embeddingRepo := pgRepo.NewEmbeddingRepo(breaker)
	var hook *analysisUC.EmbeddingHook
	embeddingCfg, err := embedding.LoadConfigFromEnv()
	if err != nil {
		logger.Error("invalid embedding configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if embeddingCfg.Enabled {
		if err := db.MigrateEmbeddings(ctx, database, embeddingCfg.Dimension); err != nil {
			logger.Error("failed to migrate embeddings", slog.Any("error", err))
			os.Exit(1)
		}
		hook = analysisUC.NewEmbeddingHook(embedding.NewOpenAIEmbedder(embeddingCfg), embeddingRepo, logger)
		logger.Info("embeddings enabled", slog.Int("dimension", embeddingCfg.Dimension))
	}
	components.embeddings = hook

	svc := analysisUC.NewService(analysisUC.Deps{
		Repo:           pgRepo.NewAnalysisRepo(breaker),
		Sentiment:      sentimentAnalyzer,
		Keywords:       keywords.NewExtractor(10),
		Literary:       literaryAnalyzer,
		URLs:           fetchSvc,
		OCR:            rec,
		Uploads:        uploads,
		Events:         publisher,
		Embeddings:     hook,
		MaxUploadBytes: ocrCfg.MaxImageBytes,
		Logger:         logger,
	})

	// Rate limiting for the analyze endpoints
	rlCfg := config.LoadRateLimitConfig()
	proxies, err := middleware.LoadProxyTrust()
	if err != nil {
		logger.Error("invalid trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if rlCfg.Enabled {
		components.Limiter = middleware.NewRateLimiter("analyze",
			rlCfg.PerMinute, rlCfg.Burst, rlCfg.IdleTTL, proxies.ClientIP)
		components.LimiterCleanup = rlCfg.CleanupInterval
		logger.Info("rate limiting enabled",
			slog.Int("per_minute", rlCfg.PerMinute),
			slog.Int("burst", rlCfg.Burst))
	}

	checks := map[string]hhttp.ComponentCheck{
		"database_breaker": hhttp.StateCheck(breaker.StateName),
		"ocr":              hhttp.StateCheck(rec.State),
		"smart_sentiment": hhttp.StateCheck(func() string {
			if sentimentAnalyzer.Capability().Available {
				return "available"
			}
			return "disabled"
		}),
	}
	publicMux := setupRoutes(logger, database, version, svc, components.Limiter, checks, ocrCfg.MaxImageBytes)
	components.Handler = applyMiddleware(logger, publicMux, ocrCfg.MaxImageBytes)
	return components
}

// setupFetchService builds the SSRF gate, the pinned fetcher and the
// extraction pipeline behind the URL analysis endpoint.
func setupFetchService(logger *slog.Logger) *fetchUC.Service {
	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Error("invalid fetcher configuration", slog.Any("error", err))
		os.Exit(1)
	}
	table, err := fetcher.DefaultBlockedRanges(fetchCfg.ExtraBlockedCIDRs...)
	if err != nil {
		logger.Error("invalid blocked ranges", slog.Any("error", err))
		os.Exit(1)
	}
	gate := fetcher.NewGate(table,
		fetcher.WithResolveTimeout(fetchCfg.ResolveTimeout),
		fetcher.WithGateLogger(logger))
	pipeline := extractor.NewDefaultPipeline(extractor.WithLogger(logger))

	logger.Info("url fetcher configured",
		slog.Int("blocked_ranges", len(table.Prefixes())),
		slog.Duration("timeout", fetchCfg.Timeout),
		slog.Int64("max_body_size", fetchCfg.MaxBodySize),
		slog.Int("max_redirects", fetchCfg.MaxRedirects),
		slog.Any("extractors", pipeline.Names()))

	return fetchUC.NewService(gate, fetcher.NewHTTPFetcher(gate, fetchCfg), pipeline, fetchUC.ServiceConfig{
		Timeout:       fetchCfg.Timeout,
		MaxConcurrent: int64(fetchCfg.MaxConcurrent),
	}, logger)
}

// setupLiterary loads the literary tables, from LITERARY_TABLES_FILE when
// set, and keeps them reloaded while the file changes.
func setupLiterary(ctx context.Context, logger *slog.Logger) *literary.Analyzer {
	path := config.GetEnvString("LITERARY_TABLES_FILE", "")
	tables := literary.DefaultTables()
	if path != "" {
		loaded, err := literary.LoadTables(path)
		if err != nil {
			logger.Error("failed to load literary tables", slog.String("path", path), slog.Any("error", err))
			os.Exit(1)
		}
		tables = loaded
	}

	source := literary.NewTableSource(tables, logger)
	if path != "" {
		go func() {
			if err := source.Watch(ctx, path); err != nil {
				logger.Warn("literary table watcher stopped", slog.Any("error", err))
			}
		}()
	}
	return literary.NewAnalyzer(source)
}

// setupRoutes configures all HTTP routes.
func setupRoutes(
	logger *slog.Logger,
	database *sql.DB,
	version string,
	svc *analysisUC.Service,
	limiter *middleware.RateLimiter,
	checks map[string]hhttp.ComponentCheck,
	maxUploadBytes int64,
) *http.ServeMux {
	// API routes, bounded by REQUEST_TIMEOUT
	apiMux := http.NewServeMux()
	hanalysis.Register(apiMux, svc, hanalysis.RouteConfig{
		Pagination:     pagination.LoadFromEnv(),
		MaxUploadBytes: maxUploadBytes,
		Limiter:        limiter,
		Authz:          hauth.Authz,
		Logger:         logger,
	})
	requestTimeout := config.GetEnvDuration("REQUEST_TIMEOUT", 60*time.Second)

	publicMux := http.NewServeMux()
	publicMux.Handle("/v1/", hhttp.Timeout(requestTimeout)(apiMux))

	// Health check endpoints (no auth required)
	publicMux.Handle("/health", &hhttp.HealthHandler{
		DB:         database,
		Version:    version,
		Components: checks,
	})
	publicMux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	publicMux.Handle("/live", &hhttp.LiveHandler{})

	// Prometheus metrics endpoint
	publicMux.Handle("/metrics", hhttp.MetricsHandler())

	// Swagger UI
	publicMux.Handle("/swagger/", httpSwagger.WrapHandler)

	return publicMux
}

func applyMiddleware(logger *slog.Logger, handler http.Handler, maxUploadBytes int64) http.Handler {
	corsConfig := middleware.LoadCORSConfig()
	corsConfig.Logger = logger
	if len(corsConfig.AllowedOrigins) > 0 {
		logger.Info("CORS enabled",
			slog.Any("allowed_origins", corsConfig.AllowedOrigins),
			slog.Any("allowed_methods", corsConfig.AllowedMethods),
			slog.Int("max_age", corsConfig.MaxAge))
	}

	// Build middleware chain
	// Order, outermost first:
	// 1. CORS (handles preflight requests early)
	// 2. Request ID (generates unique ID for request tracking)
	// 3. Tracing (span per request, ID in logs)
	// 4. Recovery (catch panics)
	// 5. Logging (log all requests)
	// 6. Input validation (header, path and query bounds)
	// 7. Body Size Limit (largest upload plus form overhead)
	// 8. Metrics (record request metrics)
	// Authentication, rate limiting and the request timeout live in the routes layer.

	middlewareChain := handler

	// Apply in reverse order (innermost to outermost)
	middlewareChain = hhttp.MetricsMiddleware(middlewareChain)
	middlewareChain = hhttp.LimitRequestBody(maxUploadBytes + 1<<20)(middlewareChain)
	middlewareChain = hhttp.InputValidation()(middlewareChain)
	middlewareChain = hhttp.Logging(logger)(middlewareChain)
	middlewareChain = hhttp.Recover(logger)(middlewareChain)
	middlewareChain = tracing.Middleware(middlewareChain)
	middlewareChain = requestid.Middleware(middlewareChain)
	middlewareChain = middleware.CORS(corsConfig)(middlewareChain)

	return middlewareChain
}

// runServer starts the HTTP server and blocks until ctx is cancelled.
func runServer(ctx context.Context, logger *slog.Logger, components *ServerComponents, version string) {
	// Context for background goroutines, cancelled once the server stops
	bgCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if components.Limiter != nil {
		go components.Limiter.RunCleanup(bgCtx, components.LimiterCleanup)
		logger.Info("rate limit cleanup started",
			slog.Duration("interval", components.LimiterCleanup))
	}

	go slo.Default().Run(bgCtx, config.GetEnvDuration("SLO_WINDOW", time.Minute), logger)
	go reportPoolStats(bgCtx, components.Database, 15*time.Second)

	addr := config.GetEnvString("HTTP_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ConnState:         metrics.TrackConnState,
		BaseContext: func(_ net.Listener) context.Context {
			return bgCtx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	cancel()
	logger.Debug("background goroutines cancelled")
	logger.Info("server stopped")
}

func reportPoolStats(ctx context.Context, database *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			db.ReportPoolStats(database)
		}
	}
}
