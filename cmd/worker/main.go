// Command worker consumes document-submitted events and runs the
// extraction pipeline asynchronously, so uploads can be acknowledged
// before the heavy processing finishes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/wirkancil/markintel/internal/application/ingest"
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
)

var version = "dev"

const (
	defaultConfigPath = "configs/config.yaml"
	defaultProbeAddr  = ":8081"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	probeAddr := flag.String("probe-addr", defaultProbeAddr, "listen address for health probes and metrics")
	flag.Parse()

	if err := run(*configPath, *probeAddr); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, probeAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka must be enabled for the worker (kafka.enabled)")
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetDefault(logger)
	logger.Info("starting worker", logging.String("version", version))

	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := prometheus.NewMetrics()

	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()
	repo := repositories.NewTrademarkRepository(conn.Pool(), logger)

	redisClient, err := redisdb.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	cache := redisdb.NewCache(redisClient, logger,
		redisdb.WithPrefix(cfg.Redis.KeyPrefix),
		redisdb.WithDefaultTTL(cfg.Redis.DefaultTTL))

	embedClient, err := embedding.NewClient(cfg.Embedding, logger)
	if err != nil {
		return err
	}
	var embedder similarity.Embedder = embedClient
	if cfg.Embedding.CacheEnable {
		embedder = embedding.NewCachedEmbedder(embedClient, cache, cfg.Embedding.Model, cfg.Embedding.CacheTTL, logger)
	}

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

	osClient, err := opensearch.NewClient(ctx, cfg.OpenSearch, logger)
	if err != nil {
		return err
	}
	chunkIndexer := opensearch.NewChunkIndexer(osClient, cfg.OpenSearch.Index, logger)
	if err := chunkIndexer.EnsureIndex(ctx); err != nil {
		return err
	}

	docStore, err := miniostore.NewDocumentStore(ctx, cfg.MinIO, logger)
	if err != nil {
		return err
	}

	producer, err := kafka.NewProducer(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer producer.Close()

	segmenter := trademark.NewSegmenter(
		cfg.Extraction.ChunkSize, cfg.Extraction.ChunkOverlap,
		cfg.Extraction.MinFragment, cfg.Extraction.AnchorMargin)
	assembler := trademark.NewAssembler(segmenter, trademark.NewExtractor(), logger)

	ingestSvc, err := ingest.NewService(ingest.Config{
		Assembler:        assembler,
		Segmenter:        segmenter,
		Repository:       repo,
		Store:            docStore,
		Vectors:          recordIndex,
		Chunks:           chunkIndexer,
		Embedder:         embedder,
		Publisher:        producer,
		Metrics:          metrics,
		Logger:           logger,
		MaxDocumentBytes: cfg.Server.MaxUploadBytes,
	})
	if err != nil {
		return err
	}

	handler := func(ctx context.Context, env *kafka.EventEnvelope) error {
		var payload kafka.DocumentSubmittedPayload
		if err := env.DecodePayload(&payload); err != nil {
			return err
		}
		_, err := ingestSvc.ProcessStored(ctx, payload.DocumentID)
		return err
	}

	consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.TopicDocumentSubmitted, handler, logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	// Probe and metrics endpoint for Kubernetes.
	probeRouter := httpiface.NewRouter(httpiface.RouterConfig{
		HealthHandler: handlers.NewHealthHandler(version,
			handlers.CheckerFunc{ComponentName: "postgres", Fn: conn.Ping},
			handlers.CheckerFunc{ComponentName: "redis", Fn: redisClient.Ping},
			handlers.CheckerFunc{ComponentName: "opensearch", Fn: osClient.Ping},
			handlers.CheckerFunc{ComponentName: "minio", Fn: docStore.Ping},
		),
		Logger:  logger,
		Metrics: metrics,
	})
	probeServer := httpiface.NewServerWithAddr(probeAddr, probeRouter, logger)

	go func() {
		if err := probeServer.Start(); err != nil {
			logger.Error("probe server failed", logging.Err(err))
		}
	}()

	logger.Info("consuming document events", logging.String("topic", kafka.TopicDocumentSubmitted))
	if err := consumer.Run(ctx); err != nil {
		return err
	}

	logger.Info("shutdown signal received")
	return probeServer.Stop(context.Background())
}
