package config

import "time"

// ApplyDefaults fills every unset field of cfg with the platform default.
// Explicit zero values that are legal (e.g. redis.db = 0) are left alone;
// only fields whose zero value is not a usable setting are defaulted.
func ApplyDefaults(cfg *Config) {
	// Server
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 32 << 20 // 32 MiB
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "markintel"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "markintel"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 16
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
	if cfg.Database.MaxConnLifetime == 0 {
		cfg.Database.MaxConnLifetime = time.Hour
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}

	// Redis
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "markintel:"
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 24 * time.Hour
	}

	// Milvus
	if cfg.Milvus.Address == "" {
		cfg.Milvus.Address = "localhost:19530"
	}
	if cfg.Milvus.Collection == "" {
		cfg.Milvus.Collection = "trademark_records"
	}
	if cfg.Milvus.Dimension == 0 {
		cfg.Milvus.Dimension = 1024
	}
	if cfg.Milvus.ConnectTimeout == 0 {
		cfg.Milvus.ConnectTimeout = 10 * time.Second
	}
	if cfg.Milvus.SearchEf == 0 {
		cfg.Milvus.SearchEf = 64
	}

	// OpenSearch
	if len(cfg.OpenSearch.Addresses) == 0 {
		cfg.OpenSearch.Addresses = []string{"http://localhost:9200"}
	}
	if cfg.OpenSearch.Index == "" {
		cfg.OpenSearch.Index = "trademark_chunks"
	}

	// MinIO
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = "localhost:9000"
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = "trademark-documents"
	}

	// Kafka
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.Kafka.ConsumerGroup == "" {
		cfg.Kafka.ConsumerGroup = "markintel-workers"
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = 100 * time.Millisecond
	}

	// Embedding
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:8000"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "multilingual-e5-large"
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = 1024
	}
	if cfg.Embedding.MaxChars == 0 {
		cfg.Embedding.MaxChars = 8000
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30 * time.Second
	}
	if cfg.Embedding.CacheTTL == 0 {
		cfg.Embedding.CacheTTL = 7 * 24 * time.Hour
	}

	// Extraction
	if cfg.Extraction.ChunkSize == 0 {
		cfg.Extraction.ChunkSize = 1000
	}
	if cfg.Extraction.ChunkOverlap == 0 {
		cfg.Extraction.ChunkOverlap = 200
	}
	if cfg.Extraction.MinFragment == 0 {
		cfg.Extraction.MinFragment = 50
	}
	if cfg.Extraction.AnchorMargin == 0 {
		cfg.Extraction.AnchorMargin = 200
	}

	// Similarity
	if cfg.Similarity.DefaultTopK == 0 {
		cfg.Similarity.DefaultTopK = 20
	}
	if cfg.Similarity.MaxTopK == 0 {
		cfg.Similarity.MaxTopK = 100
	}
	if cfg.Similarity.Concurrency == 0 {
		cfg.Similarity.Concurrency = 8
	}
	if cfg.Similarity.AnalysisTimeout == 0 {
		cfg.Similarity.AnalysisTimeout = 2 * time.Minute
	}
	if cfg.Similarity.CorpusLimit == 0 {
		cfg.Similarity.CorpusLimit = 5000
	}
	if cfg.Similarity.LexicalThreshold == 0 {
		cfg.Similarity.LexicalThreshold = 0.7
	}
	if cfg.Similarity.PhoneticThreshold == 0 {
		cfg.Similarity.PhoneticThreshold = 0.8
	}
	if cfg.Similarity.SemanticThreshold == 0 {
		cfg.Similarity.SemanticThreshold = 0.6
	}
	if cfg.Similarity.OverallThreshold == 0 {
		cfg.Similarity.OverallThreshold = 0.3
	}

	// Metrics
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
