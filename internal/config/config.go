// Package config provides configuration loading, defaults, and validation for
// the markintel platform.
package config

import (
	"fmt"
	"time"

	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
)

// Config is the root configuration for all markintel processes.  Sections map
// one-to-one to YAML blocks in configs/config.yaml and to MARKINTEL_* env
// variables (e.g. MARKINTEL_DATABASE_HOST).
type Config struct {
	Server     ServerConfig      `mapstructure:"server" yaml:"server"`
	Log        logging.LogConfig `mapstructure:"log" yaml:"log"`
	Database   DatabaseConfig    `mapstructure:"database" yaml:"database"`
	Redis      RedisConfig       `mapstructure:"redis" yaml:"redis"`
	Milvus     MilvusConfig      `mapstructure:"milvus" yaml:"milvus"`
	OpenSearch OpenSearchConfig  `mapstructure:"opensearch" yaml:"opensearch"`
	MinIO      MinIOConfig       `mapstructure:"minio" yaml:"minio"`
	Kafka      KafkaConfig       `mapstructure:"kafka" yaml:"kafka"`
	Embedding  EmbeddingConfig   `mapstructure:"embedding" yaml:"embedding"`
	Extraction ExtractionConfig  `mapstructure:"extraction" yaml:"extraction"`
	Similarity SimilarityConfig  `mapstructure:"similarity" yaml:"similarity"`
	Metrics    MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	Mode            string        `mapstructure:"mode" yaml:"mode"` // gin mode: debug|release|test
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig controls the PostgreSQL connection pool.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	User            string        `mapstructure:"user" yaml:"user"`
	Password        string        `mapstructure:"password" yaml:"password"`
	DBName          string        `mapstructure:"dbname" yaml:"dbname"`
	SSLMode         string        `mapstructure:"sslmode" yaml:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns" yaml:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns" yaml:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime" yaml:"max_conn_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path" yaml:"migrations_path"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisConfig controls the Redis cache client.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	Password     string        `mapstructure:"password" yaml:"password"`
	DB           int           `mapstructure:"db" yaml:"db"`
	PoolSize     int           `mapstructure:"pool_size" yaml:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix" yaml:"key_prefix"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl" yaml:"default_ttl"`
}

// MilvusConfig controls the vector database client.
type MilvusConfig struct {
	Address        string        `mapstructure:"address" yaml:"address"`
	Username       string        `mapstructure:"username" yaml:"username"`
	Password       string        `mapstructure:"password" yaml:"password"`
	Collection     string        `mapstructure:"collection" yaml:"collection"`
	Dimension      int           `mapstructure:"dimension" yaml:"dimension"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	SearchEf       int           `mapstructure:"search_ef" yaml:"search_ef"`
}

// OpenSearchConfig controls the full-text chunk index.
type OpenSearchConfig struct {
	Addresses []string `mapstructure:"addresses" yaml:"addresses"`
	Username  string   `mapstructure:"username" yaml:"username"`
	Password  string   `mapstructure:"password" yaml:"password"`
	Index     string   `mapstructure:"index" yaml:"index"`
}

// MinIOConfig controls raw document object storage.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
}

// KafkaConfig controls the event bus producer and consumer.
type KafkaConfig struct {
	Brokers       []string      `mapstructure:"brokers" yaml:"brokers"`
	ConsumerGroup string        `mapstructure:"consumer_group" yaml:"consumer_group"`
	BatchTimeout  time.Duration `mapstructure:"batch_timeout" yaml:"batch_timeout"`
	Enabled       bool          `mapstructure:"enabled" yaml:"enabled"`
}

// EmbeddingConfig controls the external embedding service client.
type EmbeddingConfig struct {
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key"`
	Model       string        `mapstructure:"model" yaml:"model"`
	Dimension   int           `mapstructure:"dimension" yaml:"dimension"`
	MaxChars    int           `mapstructure:"max_chars" yaml:"max_chars"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	CacheEnable bool          `mapstructure:"cache_enable" yaml:"cache_enable"`
}

// ExtractionConfig tunes document segmentation and record extraction.
type ExtractionConfig struct {
	ChunkSize    int `mapstructure:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap" yaml:"chunk_overlap"`
	MinFragment  int `mapstructure:"min_fragment" yaml:"min_fragment"`
	AnchorMargin int `mapstructure:"anchor_margin" yaml:"anchor_margin"`
}

// SimilarityConfig tunes the similarity engine.
type SimilarityConfig struct {
	DefaultTopK     int           `mapstructure:"default_top_k" yaml:"default_top_k"`
	MaxTopK         int           `mapstructure:"max_top_k" yaml:"max_top_k"`
	Concurrency     int           `mapstructure:"concurrency" yaml:"concurrency"`
	AnalysisTimeout time.Duration `mapstructure:"analysis_timeout" yaml:"analysis_timeout"`
	CorpusLimit     int           `mapstructure:"corpus_limit" yaml:"corpus_limit"`

	// Initial threshold values; the live values are held by the threshold
	// store and mutable at runtime via the API.
	LexicalThreshold  float64 `mapstructure:"lexical_threshold" yaml:"lexical_threshold"`
	PhoneticThreshold float64 `mapstructure:"phonetic_threshold" yaml:"phonetic_threshold"`
	SemanticThreshold float64 `mapstructure:"semantic_threshold" yaml:"semantic_threshold"`
	OverallThreshold  float64 `mapstructure:"overall_threshold" yaml:"overall_threshold"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// Validate checks cross-field consistency.  It is called by Load after
// defaults are applied, so only genuinely invalid values fail here.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host must not be empty")
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive: %d", c.Embedding.Dimension)
	}
	if c.Milvus.Dimension != c.Embedding.Dimension {
		return fmt.Errorf("milvus.dimension (%d) must match embedding.dimension (%d)",
			c.Milvus.Dimension, c.Embedding.Dimension)
	}
	if c.Extraction.ChunkOverlap >= c.Extraction.ChunkSize {
		return fmt.Errorf("extraction.chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Extraction.ChunkOverlap, c.Extraction.ChunkSize)
	}
	for name, v := range map[string]float64{
		"lexical_threshold":  c.Similarity.LexicalThreshold,
		"phonetic_threshold": c.Similarity.PhoneticThreshold,
		"semantic_threshold": c.Similarity.SemanticThreshold,
		"overall_threshold":  c.Similarity.OverallThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("similarity.%s out of [0,1]: %g", name, v)
		}
	}
	if c.Similarity.DefaultTopK > c.Similarity.MaxTopK {
		return fmt.Errorf("similarity.default_top_k (%d) exceeds max_top_k (%d)",
			c.Similarity.DefaultTopK, c.Similarity.MaxTopK)
	}
	return nil
}
