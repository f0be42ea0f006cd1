package similarity

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/wirkancil/markintel/internal/domain/trademark"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/pkg/errors"
	"github.com/wirkancil/markintel/pkg/types/common"
)

// Overall fusion weights.  Components missing for a candidate contribute 0.
const (
	fuseWeightLexical  = 0.4
	fuseWeightSemantic = 0.3
	fuseWeightPhonetic = 0.3
)

// Similarity buckets used by reports.
const (
	BucketHigh   = "high"
	BucketMedium = "medium"
	BucketLow    = "low"
)

// ClassifyScore maps an overall score to its report bucket.
func ClassifyScore(overall float64) string {
	switch {
	case overall >= 0.8:
		return BucketHigh
	case overall >= 0.7:
		return BucketMedium
	default:
		return BucketLow
	}
}

// Embedder produces text embeddings for the semantic pass.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options tunes one analysis run.
type Options struct {
	// TopK bounds result count; NewEngine's defaults apply when zero.
	TopK int

	// IncludePhonetic enables the phonetic pass.
	IncludePhonetic bool

	// IncludeVisual is accepted but inert: no visual backend exists and the
	// flag never contributes to the fused score.
	IncludeVisual bool

	// DateRange, when set, restricts candidates by reception date.
	// Candidates without a parseable reception date are excluded.
	DateRange *common.DateRange
}

// Result is one scored candidate.  Component scores are nil when the pass
// did not produce a score for this candidate, which the fusion treats as 0
// but the API reports as absent.
type Result struct {
	Record   *trademark.Record
	Lexical  *float64
	Phonetic *float64
	Semantic *float64
	Overall  float64
	Bucket   string
}

// Engine runs the multi-pass similarity analysis.  It is safe for concurrent
// use; candidate embeddings are computed on a bounded worker pool so a large
// corpus cannot exhaust the embedding backend.
type Engine struct {
	embedder   Embedder
	thresholds *Store
	pool       *ants.Pool
	logger     logging.Logger

	defaultTopK int
	maxTopK     int
}

// NewEngine constructs an Engine.  embedder may be nil, which disables the
// semantic pass.  concurrency bounds the embedding worker pool.
func NewEngine(embedder Embedder, thresholds *Store, concurrency, defaultTopK, maxTopK int, logger logging.Logger) (*Engine, error) {
	if concurrency <= 0 {
		concurrency = 8
	}
	if defaultTopK <= 0 {
		defaultTopK = 20
	}
	if maxTopK <= 0 {
		maxTopK = 100
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create embedding worker pool")
	}
	return &Engine{
		embedder:    embedder,
		thresholds:  thresholds,
		pool:        pool,
		logger:      logger.Named("similarity"),
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
	}, nil
}

// Close releases the worker pool.
func (e *Engine) Close() {
	e.pool.Release()
}

// fusionEntry accumulates per-candidate component scores across passes.
type fusionEntry struct {
	record   *trademark.Record
	lexical  *float64
	phonetic *float64
	semantic *float64
}

// Analyze scores query against the corpus and returns matches above the
// overall threshold, sorted by descending overall score and truncated to
// TopK.  The threshold snapshot is taken once at the start so a concurrent
// threshold update cannot produce a half-old, half-new ranking.
func (e *Engine) Analyze(ctx context.Context, query string, corpus []*trademark.Record, opts Options) ([]Result, error) {
	if NormalizeText(query) == "" {
		return nil, errors.New(errors.ErrCodeEmptyQuery, "query trademark name must not be empty")
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = e.defaultTopK
	}
	if topK > e.maxTopK {
		topK = e.maxTopK
	}

	th := e.thresholds.Current()
	candidates := e.filterByDate(corpus, opts.DateRange)

	// Fusion state keyed by canonical identity; order preserves first-seen
	// candidate order so the final sort is deterministic.
	entries := make(map[string]*fusionEntry, len(candidates))
	order := make([]string, 0, len(candidates))
	entry := func(r *trademark.Record) *fusionEntry {
		key := r.IdentityKey()
		fe, ok := entries[key]
		if !ok {
			fe = &fusionEntry{record: r}
			entries[key] = fe
			order = append(order, key)
		}
		return fe
	}

	// Lexical pass.
	for _, cand := range candidates {
		score := LexicalScore(query, cand.MarkName)
		if score >= th.Lexical {
			s := score
			entry(cand).lexical = &s
		}
	}

	// Phonetic pass.
	if opts.IncludePhonetic {
		for _, cand := range candidates {
			score := PhoneticSimilarity(query, cand.MarkName)
			if score >= th.Phonetic {
				s := score
				entry(cand).phonetic = &s
			}
		}
	}

	// Semantic pass.
	if e.embedder != nil {
		if err := e.semanticPass(ctx, query, candidates, th.Semantic, entry); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAnalysisTimeout, "similarity analysis aborted")
	}

	// Fusion: overall = 0.4*lexical + 0.3*semantic + 0.3*phonetic, absent
	// components counting as 0.  Candidates below the overall threshold drop.
	results := make([]Result, 0, len(order))
	for _, key := range order {
		fe := entries[key]
		overall := fuseWeightLexical*deref(fe.lexical) +
			fuseWeightSemantic*deref(fe.semantic) +
			fuseWeightPhonetic*deref(fe.phonetic)
		if overall < th.Overall {
			continue
		}
		results = append(results, Result{
			Record:   fe.record,
			Lexical:  fe.lexical,
			Phonetic: fe.phonetic,
			Semantic: fe.semantic,
			Overall:  overall,
			Bucket:   ClassifyScore(overall),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Overall > results[j].Overall
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// semanticPass embeds the query once and each candidate's search text on the
// worker pool.  A failed query embedding is fatal to the pass; a failed
// candidate embedding only degrades that candidate (its semantic score stays
// absent) and the analysis continues.  A dimension mismatch is never
// degradation: it means the embedding provider is misconfigured, and the
// whole analysis fails.  Candidates without a goods description are skipped
// outright, with no semantic score rather than a zero one.
func (e *Engine) semanticPass(ctx context.Context, query string, candidates []*trademark.Record, threshold float64, entry func(*trademark.Record) *fusionEntry) error {
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "failed to embed query trademark")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		skipped  int
		fatalErr error
	)
	// One slot per candidate; each worker writes only its own index, so the
	// slice needs no locking and the fusion below stays in candidate order.
	scores := make([]*float64, len(candidates))

	for i, cand := range candidates {
		if err := ctx.Err(); err != nil {
			break
		}
		if strings.TrimSpace(cand.GoodsDescription) == "" {
			continue
		}
		i, cand := i, cand
		wg.Add(1)
		submitErr := e.pool.Submit(func() {
			defer wg.Done()
			vec, err := e.embedder.Embed(ctx, cand.SearchText())
			if err != nil {
				mu.Lock()
				skipped++
				mu.Unlock()
				e.logger.Warn("candidate embedding failed, semantic score absent",
					logging.String("application_number", cand.ApplicationNumber),
					logging.Err(err))
				return
			}
			score, err := CosineSimilarity(queryVec, vec)
			if err != nil {
				if errors.IsCode(err, errors.ErrCodeDimensionMismatch) {
					mu.Lock()
					if fatalErr == nil {
						fatalErr = err
					}
					mu.Unlock()
					return
				}
				mu.Lock()
				skipped++
				mu.Unlock()
				e.logger.Warn("candidate cosine failed, semantic score absent",
					logging.String("application_number", cand.ApplicationNumber),
					logging.Err(err))
				return
			}
			if score >= threshold {
				scores[i] = &score
			}
		})
		if submitErr != nil {
			wg.Done()
			return errors.Wrap(submitErr, errors.ErrCodeInternal, "failed to schedule embedding task")
		}
	}
	wg.Wait()

	if fatalErr != nil {
		return fatalErr
	}

	if skipped > 0 {
		e.logger.Info("semantic pass finished with degraded candidates",
			logging.Int("skipped", skipped),
			logging.Int("total", len(candidates)))
	}

	// Apply in candidate order from a single goroutine; entry() is not safe
	// for concurrent use and map insertion order drives the final ranking's
	// tie-break.
	for i, s := range scores {
		if s != nil {
			entry(candidates[i]).semantic = s
		}
	}
	return nil
}

// filterByDate drops candidates outside the requested reception-date range.
func (e *Engine) filterByDate(corpus []*trademark.Record, dr *common.DateRange) []*trademark.Record {
	if dr == nil || dr.IsZero() {
		return corpus
	}
	out := make([]*trademark.Record, 0, len(corpus))
	for _, r := range corpus {
		ts, ok := r.ParseReceptionDate()
		if !ok {
			continue
		}
		if dr.Contains(ts) {
			out = append(out, r)
		}
	}
	return out
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
