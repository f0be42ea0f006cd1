// Package ingest orchestrates the document pipeline: store the raw
// text, extract records, persist them, index vectors and chunks, and
// announce the outcome.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wirkancil/markintel/internal/domain/similarity"
	"github.com/wirkancil/markintel/internal/domain/trademark"
	"github.com/wirkancil/markintel/internal/infrastructure/messaging/kafka"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/prometheus"
	"github.com/wirkancil/markintel/pkg/errors"
)

const eventSource = "markintel"

// ObjectStore persists and retrieves raw document text.
type ObjectStore interface {
	Put(ctx context.Context, documentID string, text []byte) error
	Get(ctx context.Context, documentID string) ([]byte, error)
	Remove(ctx context.Context, documentID string) error
}

// VectorIndex writes record embeddings for the similarity corpus.
type VectorIndex interface {
	Upsert(ctx context.Context, records []*trademark.Record, vectors [][]float32) error
	DeleteByDocument(ctx context.Context, documentID string) error
}

// ChunkIndex stores raw text chunks for full-text access.
type ChunkIndex interface {
	IndexChunks(ctx context.Context, documentID string, chunks []trademark.Chunk) error
	DeleteByDocument(ctx context.Context, documentID string) error
}

// Publisher emits lifecycle events. Nil-safe via the noopPublisher.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, env *kafka.EventEnvelope) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string, *kafka.EventEnvelope) error {
	return nil
}

// Result summarizes one ingestion run.
type Result struct {
	DocumentID       string
	RecordsExtracted int
	RecordsStored    int
	RecordsIndexed   int
	ChunksIndexed    int
	Method           trademark.ExtractionMethod
}

// Service runs the ingest pipeline.
type Service struct {
	assembler *trademark.Assembler
	segmenter *trademark.Segmenter
	repo      trademark.Repository
	store     ObjectStore
	vectors   VectorIndex
	chunks    ChunkIndex
	embedder  similarity.Embedder
	publisher Publisher
	metrics   *prometheus.Metrics
	logger    logging.Logger

	maxDocumentBytes int64
}

// Config wires the service dependencies. Publisher, ChunkIndex,
// VectorIndex, Embedder and Metrics are optional; the pipeline degrades
// to the parts that are present.
type Config struct {
	Assembler        *trademark.Assembler
	Segmenter        *trademark.Segmenter
	Repository       trademark.Repository
	Store            ObjectStore
	Vectors          VectorIndex
	Chunks           ChunkIndex
	Embedder         similarity.Embedder
	Publisher        Publisher
	Metrics          *prometheus.Metrics
	Logger           logging.Logger
	MaxDocumentBytes int64
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Assembler == nil {
		return nil, errors.New(errors.ErrCodeValidation, "assembler is required")
	}
	if cfg.Repository == nil {
		return nil, errors.New(errors.ErrCodeValidation, "repository is required")
	}
	if cfg.Store == nil {
		return nil, errors.New(errors.ErrCodeValidation, "object store is required")
	}
	if cfg.Publisher == nil {
		cfg.Publisher = noopPublisher{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = 32 << 20
	}
	return &Service{
		assembler:        cfg.Assembler,
		segmenter:        cfg.Segmenter,
		repo:             cfg.Repository,
		store:            cfg.Store,
		vectors:          cfg.Vectors,
		chunks:           cfg.Chunks,
		embedder:         cfg.Embedder,
		publisher:        cfg.Publisher,
		metrics:          cfg.Metrics,
		logger:           cfg.Logger.Named("ingest"),
		maxDocumentBytes: cfg.MaxDocumentBytes,
	}, nil
}

// NewDocumentID mints a document identifier.
func NewDocumentID() string {
	return uuid.New().String()
}

// IngestText stores and processes one document. The raw text is stored
// before extraction so a failed pipeline can be re-run from the stored
// object.
func (s *Service) IngestText(ctx context.Context, documentID, filename string, text []byte) (*Result, error) {
	if len(text) == 0 {
		return nil, errors.New(errors.ErrCodeDocumentEmpty, "document text is empty")
	}
	if int64(len(text)) > s.maxDocumentBytes {
		return nil, errors.Newf(errors.ErrCodeDocumentTooLarge,
			"document size %d exceeds limit %d", len(text), s.maxDocumentBytes)
	}
	if documentID == "" {
		documentID = NewDocumentID()
	}

	start := time.Now()

	if err := s.store.Put(ctx, documentID, text); err != nil {
		return nil, err
	}
	s.publishSubmitted(ctx, documentID, filename, int64(len(text)))

	res, err := s.process(ctx, documentID, string(text))
	if s.metrics != nil {
		s.metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.DocumentsIngested.WithLabelValues("failed").Inc()
		} else {
			s.metrics.DocumentsIngested.WithLabelValues("processed").Inc()
			s.metrics.RecordsExtracted.Observe(float64(res.RecordsExtracted))
		}
	}
	return res, err
}

// ProcessStored re-runs extraction and indexing for an already stored
// document. The worker uses this to serve submitted events.
func (s *Service) ProcessStored(ctx context.Context, documentID string) (*Result, error) {
	text, err := s.store.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.process(ctx, documentID, string(text))
}

func (s *Service) process(ctx context.Context, documentID, text string) (*Result, error) {
	records, err := s.assembler.ExtractDocument(documentID, text)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.SaveBatch(ctx, records)
	if err != nil {
		return nil, err
	}

	res := &Result{
		DocumentID:       documentID,
		RecordsExtracted: len(records),
		RecordsStored:    stored,
	}
	if len(records) > 0 {
		res.Method = records[0].Provenance.Method
	}

	if s.vectors != nil && s.embedder != nil {
		indexed, err := s.indexVectors(ctx, records)
		if err != nil {
			return nil, err
		}
		res.RecordsIndexed = indexed
	}

	if s.chunks != nil && s.segmenter != nil {
		chunks := s.segmenter.ChunkText(text)
		if err := s.chunks.IndexChunks(ctx, documentID, chunks); err != nil {
			return nil, err
		}
		res.ChunksIndexed = len(chunks)
	}

	s.publishProcessed(ctx, res)

	s.logger.Info("document processed",
		logging.String("document_id", documentID),
		logging.Int("records", res.RecordsStored),
		logging.Int("chunks", res.ChunksIndexed),
		logging.String("method", string(res.Method)))
	return res, nil
}

// indexVectors embeds each record's search text and upserts the batch.
// A record whose embedding fails is skipped so one bad entry cannot
// block the rest of the document.
func (s *Service) indexVectors(ctx context.Context, records []*trademark.Record) (int, error) {
	kept := make([]*trademark.Record, 0, len(records))
	vectors := make([][]float32, 0, len(records))
	for _, rec := range records {
		vec, err := s.embedder.Embed(ctx, rec.SearchText())
		if err != nil {
			if ctx.Err() != nil {
				return 0, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "embedding aborted")
			}
			if s.metrics != nil {
				s.metrics.EmbeddingErrorsTotal.Inc()
			}
			s.logger.Warn("skipping record with failed embedding",
				logging.String("application_number", rec.ApplicationNumber),
				logging.Err(err))
			continue
		}
		kept = append(kept, rec)
		vectors = append(vectors, vec)
	}
	if len(kept) == 0 {
		return 0, nil
	}
	if err := s.vectors.Upsert(ctx, kept, vectors); err != nil {
		return 0, err
	}
	return len(kept), nil
}

// Delete removes a document and everything derived from it.
func (s *Service) Delete(ctx context.Context, documentID string) (int64, error) {
	deleted, err := s.repo.DeleteByDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	if s.vectors != nil {
		if err := s.vectors.DeleteByDocument(ctx, documentID); err != nil {
			return deleted, err
		}
	}
	if s.chunks != nil {
		if err := s.chunks.DeleteByDocument(ctx, documentID); err != nil {
			return deleted, err
		}
	}
	if err := s.store.Remove(ctx, documentID); err != nil {
		return deleted, err
	}

	env, err := kafka.NewEventEnvelope(kafka.TopicDocumentDeleted, eventSource, kafka.DocumentDeletedPayload{
		DocumentID:     documentID,
		RecordsDeleted: deleted,
		DeletedAt:      time.Now().UTC(),
	})
	if err == nil {
		if pubErr := s.publisher.Publish(ctx, kafka.TopicDocumentDeleted, documentID, env); pubErr != nil {
			s.logger.Warn("failed to publish document deleted event", logging.Err(pubErr))
		}
	}

	s.logger.Info("document deleted",
		logging.String("document_id", documentID),
		logging.Int64("records_deleted", deleted))
	return deleted, nil
}

func (s *Service) publishSubmitted(ctx context.Context, documentID, filename string, size int64) {
	env, err := kafka.NewEventEnvelope(kafka.TopicDocumentSubmitted, eventSource, kafka.DocumentSubmittedPayload{
		DocumentID:  documentID,
		Filename:    filename,
		SizeBytes:   size,
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, kafka.TopicDocumentSubmitted, documentID, env); err != nil {
		s.logger.Warn("failed to publish document submitted event", logging.Err(err))
	}
}

func (s *Service) publishProcessed(ctx context.Context, res *Result) {
	env, err := kafka.NewEventEnvelope(kafka.TopicDocumentProcessed, eventSource, kafka.DocumentProcessedPayload{
		DocumentID:       res.DocumentID,
		RecordsExtracted: res.RecordsExtracted,
		RecordsStored:    res.RecordsStored,
		Method:           string(res.Method),
		ProcessedAt:      time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, kafka.TopicDocumentProcessed, res.DocumentID, env); err != nil {
		s.logger.Warn("failed to publish document processed event", logging.Err(err))
	}
}
