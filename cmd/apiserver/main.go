// Command apiserver runs the markintel HTTP API: gazette ingestion,
// similarity analysis, reporting and corpus statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/wirkancil/markintel/internal/application/analysis"
	"github.com/wirkancil/markintel/internal/application/ingest"
	"github.com/wirkancil/markintel/internal/application/report"
	"github.com/wirkancil/markintel/internal/config"
	"github.com/wirkancil/markintel/internal/domain/similarity"
	"github.com/wirkancil/markintel/internal/domain/trademark"
	"github.com/wirkancil/markintel/internal/infrastructure/database/postgres"
	"github.com/wirkancil/markintel/internal/infrastructure/database/postgres/repositories"
	redisdb "github.com/wirkancil/markintel/internal/infrastructure/database/redis"
	"github.com/wirkancil/markintel/internal/infrastructure/embedding"
	"github.com/wirkancil/markintel/internal/infrastructure/messaging/kafka"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/prometheus"
	"github.com/wirkancil/markintel/internal/infrastructure/search/milvus"
	"github.com/wirkancil/markintel/internal/infrastructure/search/opensearch"
	miniostore "github.com/wirkancil/markintel/internal/infrastructure/storage/minio"
	httpiface "github.com/wirkancil/markintel/internal/interfaces/http"
	"github.com/wirkancil/markintel/internal/interfaces/http/handlers"
	"github.com/wirkancil/markintel/internal/interfaces/http/middleware"
)

var version = "dev"

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetDefault(logger)
	logger.Info("starting apiserver", logging.String("version", version))

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := prometheus.NewMetrics()

	// PostgreSQL and schema migrations.
	if cfg.Database.MigrationsPath != "" {
		if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationsPath); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()
	repo := repositories.NewTrademarkRepository(conn.Pool(), logger)

	// Redis cache.
	redisClient, err := redisdb.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	cache := redisdb.NewCache(redisClient, logger,
		redisdb.WithPrefix(cfg.Redis.KeyPrefix),
		redisdb.WithDefaultTTL(cfg.Redis.DefaultTTL))

	// Embedding service, wrapped in the Redis cache when enabled.
	embedClient, err := embedding.NewClient(cfg.Embedding, logger)
	if err != nil {
		return err
	}
	var embedder similarity.Embedder = embedClient
	if cfg.Embedding.CacheEnable {
		embedder = embedding.NewCachedEmbedder(embedClient, cache, cfg.Embedding.Model, cfg.Embedding.CacheTTL, logger)
	}

	// Milvus vector index.
	milvusClient, err := milvus.NewClient(ctx, cfg.Milvus, logger)
	if err != nil {
		return err
	}
	defer milvusClient.Close()
	recordIndex, err := milvus.NewRecordIndex(milvusClient, cfg.Milvus, logger)
	if err != nil {
		return err
	}
	if err := recordIndex.EnsureCollection(ctx); err != nil {
		return err
	}

	// OpenSearch chunk index.
	osClient, err := opensearch.NewClient(ctx, cfg.OpenSearch, logger)
	if err != nil {
		return err
	}
	chunkIndexer := opensearch.NewChunkIndexer(osClient, cfg.OpenSearch.Index, logger)
	if err := chunkIndexer.EnsureIndex(ctx); err != nil {
		return err
	}

	// MinIO raw document store.
	docStore, err := miniostore.NewDocumentStore(ctx, cfg.MinIO, logger)
	if err != nil {
		return err
	}

	// Kafka producer, optional.
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer, err = kafka.NewProducer(cfg.Kafka, logger)
		if err != nil {
			return err
		}
		defer producer.Close()
	}

	// Domain services.
	thresholds := similarity.NewStore(similarity.Thresholds{
		Lexical:  cfg.Similarity.LexicalThreshold,
		Phonetic: cfg.Similarity.PhoneticThreshold,
		Semantic: cfg.Similarity.SemanticThreshold,
		Overall:  cfg.Similarity.OverallThreshold,
	})
	config.Watch(configPath, func(next *config.Config) {
		patch := similarity.ThresholdPatch{
			Lexical:  &next.Similarity.LexicalThreshold,
			Phonetic: &next.Similarity.PhoneticThreshold,
			Semantic: &next.Similarity.SemanticThreshold,
			Overall:  &next.Similarity.OverallThreshold,
		}
		if _, err := thresholds.Update(patch); err != nil {
			logger.Warn("ignoring threshold change from config reload", logging.Err(err))
			return
		}
		logger.Info("similarity thresholds reloaded from config")
	})

	engine, err := similarity.NewEngine(embedder, thresholds,
		cfg.Similarity.Concurrency, cfg.Similarity.DefaultTopK, cfg.Similarity.MaxTopK, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	segmenter := trademark.NewSegmenter(
		cfg.Extraction.ChunkSize, cfg.Extraction.ChunkOverlap,
		cfg.Extraction.MinFragment, cfg.Extraction.AnchorMargin)
	assembler := trademark.NewAssembler(segmenter, trademark.NewExtractor(), logger)

	ingestCfg := ingest.Config{
		Assembler:        assembler,
		Segmenter:        segmenter,
		Repository:       repo,
		Store:            docStore,
		Vectors:          recordIndex,
		Chunks:           chunkIndexer,
		Embedder:         embedder,
		Metrics:          metrics,
		Logger:           logger,
		MaxDocumentBytes: cfg.Server.MaxUploadBytes,
	}
	analysisCfg := analysis.Config{
		Engine:      engine,
		Embedder:    embedder,
		Corpus:      recordIndex,
		Records:     repo,
		Metrics:     metrics,
		Logger:      logger,
		Timeout:     cfg.Similarity.AnalysisTimeout,
		CorpusLimit: cfg.Similarity.CorpusLimit,
		DefaultTopK: cfg.Similarity.DefaultTopK,
		MaxTopK:     cfg.Similarity.MaxTopK,
	}
	if producer != nil {
		ingestCfg.Publisher = producer
		analysisCfg.Publisher = producer
	}

	ingestSvc, err := ingest.NewService(ingestCfg)
	if err != nil {
		return err
	}
	analysisSvc, err := analysis.NewService(analysisCfg)
	if err != nil {
		return err
	}
	reportSvc, err := report.NewService(analysisSvc, logger)
	if err != nil {
		return err
	}

	// HTTP surface.
	routerCfg := httpiface.RouterConfig{
		AnalysisHandler: handlers.NewAnalysisHandler(analysisSvc, thresholds),
		DocumentHandler: handlers.NewDocumentHandler(ingestSvc, repo, cfg.Server.MaxUploadBytes),
		ReportHandler:   handlers.NewReportHandler(reportSvc),
		StatsHandler:    handlers.NewStatsHandler(repo, recordIndex, thresholds, logger),
		HealthHandler: handlers.NewHealthHandler(version,
			handlers.CheckerFunc{ComponentName: "postgres", Fn: conn.Ping},
			handlers.CheckerFunc{ComponentName: "redis", Fn: redisClient.Ping},
			handlers.CheckerFunc{ComponentName: "opensearch", Fn: osClient.Ping},
			handlers.CheckerFunc{ComponentName: "minio", Fn: docStore.Ping},
		),
		Logger: logger,
	}
	if cfg.Metrics.Enabled {
		routerCfg.Metrics = metrics
	}
	cors := middleware.DefaultCORSConfig()
	routerCfg.CORS = &cors

	server := httpiface.NewServer(cfg.Server, httpiface.NewRouter(routerCfg), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	return server.Stop(context.Background())
}
