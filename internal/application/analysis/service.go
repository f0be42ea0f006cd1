// Package analysis orchestrates similarity analysis: corpus retrieval,
// the multi-pass similarity engine, and response assembly.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/wirkancil/markintel/internal/domain/similarity"
	"github.com/wirkancil/markintel/internal/domain/trademark"
	"github.com/wirkancil/markintel/internal/infrastructure/messaging/kafka"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/prometheus"
	milvussearch "github.com/wirkancil/markintel/internal/infrastructure/search/milvus"
	"github.com/wirkancil/markintel/pkg/errors"
	tmtypes "github.com/wirkancil/markintel/pkg/types/trademark"
)

const eventSource = "markintel"

// oversample widens the vector query beyond topK so the lexical and
// phonetic passes see enough candidates after threshold filtering.
const oversample = 5

// VectorCorpus retrieves nearest records for a query vector.
type VectorCorpus interface {
	QueryNearest(ctx context.Context, vector []float32, topK int) ([]milvussearch.Hit, error)
}

// RecordReader hydrates records by key and lists the fallback corpus.
type RecordReader interface {
	FindByApplicationNumber(ctx context.Context, appNo string) (*trademark.Record, error)
	List(ctx context.Context, limit, offset int) ([]*trademark.Record, error)
}

// Publisher emits analysis events.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, env *kafka.EventEnvelope) error
}

// Service runs similarity analyses against the stored corpus.
type Service struct {
	engine    *similarity.Engine
	embedder  similarity.Embedder
	corpus    VectorCorpus
	records   RecordReader
	publisher Publisher
	metrics   *prometheus.Metrics
	logger    logging.Logger

	timeout     time.Duration
	corpusLimit int
	defaultTopK int
	maxTopK     int
}

// Config wires the service. Corpus, Embedder, Publisher and Metrics are
// optional; without a vector corpus the service scans the relational
// store instead.
type Config struct {
	Engine      *similarity.Engine
	Embedder    similarity.Embedder
	Corpus      VectorCorpus
	Records     RecordReader
	Publisher   Publisher
	Metrics     *prometheus.Metrics
	Logger      logging.Logger
	Timeout     time.Duration
	CorpusLimit int
	DefaultTopK int
	MaxTopK     int
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Engine == nil {
		return nil, errors.New(errors.ErrCodeValidation, "similarity engine is required")
	}
	if cfg.Records == nil {
		return nil, errors.New(errors.ErrCodeValidation, "record reader is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.CorpusLimit <= 0 {
		cfg.CorpusLimit = 5000
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 20
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = 100
	}
	return &Service{
		engine:      cfg.Engine,
		embedder:    cfg.Embedder,
		corpus:      cfg.Corpus,
		records:     cfg.Records,
		publisher:   cfg.Publisher,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger.Named("analysis"),
		timeout:     cfg.Timeout,
		corpusLimit: cfg.CorpusLimit,
		defaultTopK: cfg.DefaultTopK,
		maxTopK:     cfg.MaxTopK,
	}, nil
}

// Analyze scores the query trademark against the corpus and returns the
// API response.
func (s *Service) Analyze(ctx context.Context, req tmtypes.AnalysisRequest) (*tmtypes.AnalysisResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()

	topK := req.Options.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}
	if topK > s.maxTopK {
		topK = s.maxTopK
	}

	candidates, err := s.fetchCandidates(ctx, req.Trademark, topK)
	if err != nil {
		s.countAnalysis("failed")
		return nil, err
	}

	includePhonetic := true
	if req.Options.IncludePhonetic != nil {
		includePhonetic = *req.Options.IncludePhonetic
	}

	results, err := s.engine.Analyze(ctx, req.Trademark, candidates, similarity.Options{
		TopK:            topK,
		IncludePhonetic: includePhonetic,
		IncludeVisual:   req.Options.IncludeVisual,
		DateRange:       req.Options.DateRange,
	})
	if err != nil {
		s.countAnalysis("failed")
		return nil, err
	}

	resp := &tmtypes.AnalysisResponse{
		TargetTrademark:   req.Trademark,
		TotalCompared:     len(candidates),
		SimilarTrademarks: make([]tmtypes.SimilarityMatch, 0, len(results)),
		AnalysisDate:      time.Now().UTC().Format(time.RFC3339),
	}
	for _, r := range results {
		resp.SimilarTrademarks = append(resp.SimilarTrademarks, toMatch(r))
	}

	s.countAnalysis("completed")
	if s.metrics != nil {
		s.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
		s.metrics.CandidatesCompared.Observe(float64(len(candidates)))
	}
	s.publishCompleted(ctx, resp)

	s.logger.Info("analysis completed",
		logging.String("trademark", req.Trademark),
		logging.Int("compared", resp.TotalCompared),
		logging.Int("matches", len(resp.SimilarTrademarks)),
		logging.Duration("took", time.Since(start)))
	return resp, nil
}

// fetchCandidates prefers the vector index: embed the query, pull an
// oversampled neighbourhood, hydrate each hit from the relational
// store. Without a vector corpus (or embedder) it falls back to a
// bounded scan of stored records.
func (s *Service) fetchCandidates(ctx context.Context, query string, topK int) ([]*trademark.Record, error) {
	if s.corpus == nil || s.embedder == nil {
		return s.records.List(ctx, s.corpusLimit, 0)
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "failed to embed query trademark")
	}

	fetch := topK * oversample
	if fetch > s.corpusLimit {
		fetch = s.corpusLimit
	}
	hits, err := s.corpus.QueryNearest(ctx, vec, fetch)
	if err != nil {
		return nil, err
	}

	candidates := make([]*trademark.Record, 0, len(hits))
	for _, hit := range hits {
		rec, err := s.records.FindByApplicationNumber(ctx, hit.RecordKey)
		if err == nil {
			candidates = append(candidates, rec)
			continue
		}
		if !errors.IsCode(err, errors.ErrCodeRecordNotFound) {
			return nil, err
		}
		// The hit's record is gone from the relational store; rebuild
		// what we can from the indexed metadata.
		if rec := recordFromHit(hit); rec != nil {
			candidates = append(candidates, rec)
		}
	}
	return candidates, nil
}

// recordFromHit leniently reconstructs a record from an indexed search
// text of the form "Nama Merek: X | Pemohon: Y | Barang/Jasa: Z |
// Kelas: N".
func recordFromHit(hit milvussearch.Hit) *trademark.Record {
	rec := &trademark.Record{SourceDocumentID: hit.DocumentID}
	if !strings.HasPrefix(hit.RecordKey, "doc:") {
		rec.ApplicationNumber = hit.RecordKey
	}
	for _, part := range strings.Split(hit.SearchText, "|") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "Nama Merek:"):
			rec.MarkName = strings.TrimSpace(strings.TrimPrefix(part, "Nama Merek:"))
		case strings.HasPrefix(part, "Pemohon:"):
			rec.ApplicantName = strings.TrimSpace(strings.TrimPrefix(part, "Pemohon:"))
		case strings.HasPrefix(part, "Barang/Jasa:"):
			rec.GoodsDescription = strings.TrimSpace(strings.TrimPrefix(part, "Barang/Jasa:"))
		case strings.HasPrefix(part, "Kelas:"):
			rec.Class = strings.TrimSpace(strings.TrimPrefix(part, "Kelas:"))
		}
	}
	if rec.MarkName == "" {
		return nil
	}
	return rec
}

func toMatch(r similarity.Result) tmtypes.SimilarityMatch {
	overall := r.Overall
	return tmtypes.SimilarityMatch{
		Record:   toRecordView(r.Record),
		Lexical:  r.Lexical,
		Phonetic: r.Phonetic,
		Semantic: r.Semantic,
		Overall:  &overall,
		Bucket:   r.Bucket,
	}
}

func toRecordView(rec *trademark.Record) tmtypes.RecordView {
	return tmtypes.RecordView{
		ApplicationNumber: rec.ApplicationNumber,
		MarkName:          rec.MarkName,
		Class:             rec.Class,
		ApplicantName:     rec.ApplicantName,
		ApplicantAddress:  rec.ApplicantAddress,
		GoodsDescription:  rec.GoodsDescription,
		MarkType:          rec.MarkType,
		ReceptionDate:     rec.ReceptionDate,
		PublicationDate:   rec.PublicationDate,
		CertificateNumber: rec.CertificateNumber,
		CertificateDate:   rec.CertificateDate,
		ValidityPeriod:    rec.ValidityPeriod,
		AgentName:         rec.AgentName,
		AgentAddress:      rec.AgentAddress,
		PriorityClaim:     rec.PriorityClaim,
		LanguageNote:      rec.LanguageNote,
		ColorDescription:  rec.ColorDescription,
		SourceDocumentID:  rec.SourceDocumentID,
		ExtractionMethod:  string(rec.Provenance.Method),
		Page:              rec.Provenance.Page,
	}
}

// RecordViews converts domain records for list endpoints.
func RecordViews(records []*trademark.Record) []tmtypes.RecordView {
	out := make([]tmtypes.RecordView, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordView(rec))
	}
	return out
}

func (s *Service) countAnalysis(status string) {
	if s.metrics != nil {
		s.metrics.AnalysesTotal.WithLabelValues(status).Inc()
	}
}

func (s *Service) publishCompleted(ctx context.Context, resp *tmtypes.AnalysisResponse) {
	if s.publisher == nil {
		return
	}
	env, err := kafka.NewEventEnvelope(kafka.TopicAnalysisCompleted, eventSource, kafka.AnalysisCompletedPayload{
		QueryTrademark: resp.TargetTrademark,
		TotalCompared:  resp.TotalCompared,
		MatchCount:     len(resp.SimilarTrademarks),
		CompletedAt:    time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, kafka.TopicAnalysisCompleted, resp.TargetTrademark, env); err != nil {
		s.logger.Warn("failed to publish analysis completed event", logging.Err(err))
	}
}
