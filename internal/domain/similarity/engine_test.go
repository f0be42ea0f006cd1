package similarity

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirkancil/markintel/internal/domain/trademark"
	"github.com/wirkancil/markintel/pkg/errors"
	"github.com/wirkancil/markintel/pkg/types/common"
)

// stubEmbedder returns canned vectors per exact input text.  Unknown texts
// fail, which doubles as the candidate-degradation fixture.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("no embedding for %q", text)
}

func record(appNo, mark string) *trademark.Record {
	return &trademark.Record{
		ApplicationNumber: appNo,
		MarkName:          mark,
		Class:             "25",
		ApplicantName:     "PT Uji",
		GoodsDescription:  "Pakaian jadi",
	}
}

func newTestEngine(t *testing.T, embedder Embedder, store *Store) *Engine {
	t.Helper()
	if store == nil {
		store = NewStore(DefaultThresholds())
	}
	e, err := NewEngine(embedder, store, 4, 20, 100, nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestAnalyzeEmptyQuery(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	_, err := e.Analyze(context.Background(), "   !!! ", nil, Options{IncludePhonetic: true})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyQuery))
}

func TestAnalyzeLexicalIdentity(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	corpus := []*trademark.Record{
		record("DID2024000001", "SUPERCOLA"),
		record("DID2024000002", "BATIK INDAH"),
	}

	results, err := e.Analyze(context.Background(), "SUPERCOLA", corpus, Options{IncludePhonetic: true})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "DID2024000001", r.Record.ApplicationNumber)
	require.NotNil(t, r.Lexical)
	assert.InDelta(t, 1.0, *r.Lexical, 1e-9)
	require.NotNil(t, r.Phonetic)
	assert.InDelta(t, 1.0, *r.Phonetic, 1e-9)
	assert.Nil(t, r.Semantic)
	// 0.4*1.0 + 0.3*0 + 0.3*1.0 with no semantic backend.
	assert.InDelta(t, 0.7, r.Overall, 1e-9)
	assert.Equal(t, BucketMedium, r.Bucket)
}

func TestAnalyzeOverallThresholdFiltersWeakFusion(t *testing.T) {
	// Force a phonetic-only match: lexical threshold 1.0 cannot be reached
	// by a non-identical pair, and there is no semantic backend.  The codes
	// of the two names differ by one edit over ten characters, so the
	// phonetic score is exactly 0.9 and the fused overall is 0.3*0.9 = 0.27.
	store := NewStore(Thresholds{Lexical: 1.0, Phonetic: 0.8, Semantic: 0.6, Overall: 0.3})
	e := newTestEngine(t, nil, store)
	corpus := []*trademark.Record{record("DID2024000001", "KARTUPOLAS")}

	results, err := e.Analyze(context.Background(), "KARTUPOLAT", corpus, Options{IncludePhonetic: true})
	require.NoError(t, err)
	assert.Empty(t, results, "0.27 must fall below the 0.3 overall threshold")

	// Lowering the overall threshold lets the same candidate through.
	_, err = store.Update(ThresholdPatch{Overall: f(0.25)})
	require.NoError(t, err)

	results, err = e.Analyze(context.Background(), "KARTUPOLAT", corpus, Options{IncludePhonetic: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Lexical)
	require.NotNil(t, results[0].Phonetic)
	assert.InDelta(t, 0.9, *results[0].Phonetic, 1e-9)
	assert.InDelta(t, 0.27, results[0].Overall, 1e-9)
	assert.Equal(t, BucketLow, results[0].Bucket)
}

func TestAnalyzeTopKBound(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	var corpus []*trademark.Record
	for i := 0; i < 30; i++ {
		corpus = append(corpus, record(fmt.Sprintf("DID20240000%02d", i), "SUPERCOLA"))
	}

	results, err := e.Analyze(context.Background(), "SUPERCOLA", corpus, Options{TopK: 5, IncludePhonetic: true})
	require.NoError(t, err)
	assert.Len(t, results, 5)

	// TopK above the engine maximum is clamped, not rejected.
	results, err = e.Analyze(context.Background(), "SUPERCOLA", corpus, Options{TopK: 10_000, IncludePhonetic: true})
	require.NoError(t, err)
	assert.Len(t, results, 30)
}

func TestAnalyzeDeterministic(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	var corpus []*trademark.Record
	for i := 0; i < 10; i++ {
		corpus = append(corpus, record(fmt.Sprintf("DID20240001%02d", i), "SUPERCOLA"))
	}

	first, err := e.Analyze(context.Background(), "SUPERCOLA", corpus, Options{IncludePhonetic: true})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.Analyze(context.Background(), "SUPERCOLA", corpus, Options{IncludePhonetic: true})
		require.NoError(t, err)
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].Record.ApplicationNumber, again[j].Record.ApplicationNumber,
				"run %d position %d", i, j)
		}
	}
}

func TestAnalyzeFusesDuplicateIdentities(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	// The same application number seen twice must fuse into one result.
	corpus := []*trademark.Record{
		record("DID2024000001", "SUPERCOLA"),
		record("DID2024000001", "SUPERCOLA"),
	}
	results, err := e.Analyze(context.Background(), "SUPERCOLA", corpus, Options{IncludePhonetic: true})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestAnalyzeDateRangeFilter(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	inRange := record("DID2024000001", "SUPERCOLA")
	inRange.ReceptionDate = "15/06/2020 09:00:00"
	outOfRange := record("DID2024000002", "SUPERCOLA")
	outOfRange.ReceptionDate = "15/06/2023 09:00:00"
	noDate := record("DID2024000003", "SUPERCOLA")

	results, err := e.Analyze(context.Background(), "SUPERCOLA",
		[]*trademark.Record{inRange, outOfRange, noDate},
		Options{
			IncludePhonetic: true,
			DateRange:       &common.DateRange{From: "2020-01-01", To: "2020-12-31"},
		})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "DID2024000001", results[0].Record.ApplicationNumber)
}

func TestAnalyzeSemanticPass(t *testing.T) {
	query := "SUPERCOLA"
	match := record("DID2024000001", "TOTALLY DIFFERENT")
	miss := record("DID2024000002", "ALSO DIFFERENT")

	embedder := &stubEmbedder{vectors: map[string][]float32{
		query:              {1, 0},
		match.SearchText(): {1, 0},
		miss.SearchText():  {0, 1},
	}}
	e := newTestEngine(t, embedder, nil)

	results, err := e.Analyze(context.Background(), query,
		[]*trademark.Record{match, miss}, Options{IncludePhonetic: true})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "DID2024000001", r.Record.ApplicationNumber)
	assert.Nil(t, r.Lexical)
	assert.Nil(t, r.Phonetic)
	require.NotNil(t, r.Semantic)
	assert.InDelta(t, 1.0, *r.Semantic, 1e-6)
	assert.InDelta(t, 0.3, r.Overall, 1e-6)
}

func TestAnalyzeSemanticSkipsEmptyGoodsDescription(t *testing.T) {
	query := "SUPERCOLA"
	scored := record("DID2024000001", "SUPERCOLA")
	blank := record("DID2024000002", "SUPERCOLA")
	blank.GoodsDescription = "   "

	// Even with an embedding stubbed for the blank candidate, the semantic
	// pass must not score it: no goods description means no semantic score
	// at all, not a zero one.
	embedder := &stubEmbedder{vectors: map[string][]float32{
		query:               {1, 0},
		scored.SearchText(): {1, 0},
		blank.SearchText():  {1, 0},
	}}
	e := newTestEngine(t, embedder, nil)

	results, err := e.Analyze(context.Background(), query,
		[]*trademark.Record{scored, blank}, Options{IncludePhonetic: true})
	require.NoError(t, err)
	require.Len(t, results, 2)

	byApp := map[string]Result{}
	for _, r := range results {
		byApp[r.Record.ApplicationNumber] = r
	}
	assert.NotNil(t, byApp["DID2024000001"].Semantic)
	assert.Nil(t, byApp["DID2024000002"].Semantic)
}

func TestAnalyzeDimensionMismatchIsFatal(t *testing.T) {
	query := "SUPERCOLA"
	cand := record("DID2024000001", "TOTALLY DIFFERENT")

	// The candidate vector has a different dimension than the query vector.
	// That is a provider misconfiguration, not a degradable per-candidate
	// failure, so the whole analysis must fail.
	embedder := &stubEmbedder{vectors: map[string][]float32{
		query:             {1, 0},
		cand.SearchText(): {1, 0, 0},
	}}
	e := newTestEngine(t, embedder, nil)

	_, err := e.Analyze(context.Background(), query,
		[]*trademark.Record{cand}, Options{IncludePhonetic: true})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDimensionMismatch))
}

func TestAnalyzeCandidateEmbeddingFailureDegrades(t *testing.T) {
	query := "SUPERCOLA"
	healthy := record("DID2024000001", "SUPERCOLA")
	broken := record("DID2024000002", "SUPERCOLA MAX")

	// The broken candidate's search text is missing from the stub, so its
	// embedding call fails; the analysis must still complete and the
	// candidate keeps its lexical/phonetic scores with semantic absent.
	embedder := &stubEmbedder{vectors: map[string][]float32{
		query:                {1, 0},
		healthy.SearchText(): {1, 0},
	}}
	e := newTestEngine(t, embedder, nil)

	results, err := e.Analyze(context.Background(), query,
		[]*trademark.Record{healthy, broken}, Options{IncludePhonetic: true})
	require.NoError(t, err)
	require.Len(t, results, 2)

	byApp := map[string]Result{}
	for _, r := range results {
		byApp[r.Record.ApplicationNumber] = r
	}
	assert.NotNil(t, byApp["DID2024000001"].Semantic)
	assert.Nil(t, byApp["DID2024000002"].Semantic)
}

func TestAnalyzeQueryEmbeddingFailureIsFatal(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{}}
	e := newTestEngine(t, embedder, nil)

	_, err := e.Analyze(context.Background(), "SUPERCOLA",
		[]*trademark.Record{record("DID2024000001", "SUPERCOLA")},
		Options{IncludePhonetic: true})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmbeddingFailed))
}

func TestAnalyzeCancelledContext(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Analyze(ctx, "SUPERCOLA",
		[]*trademark.Record{record("DID2024000001", "SUPERCOLA")},
		Options{IncludePhonetic: true})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAnalysisTimeout))
}

func TestClassifyScore(t *testing.T) {
	assert.Equal(t, BucketHigh, ClassifyScore(0.8))
	assert.Equal(t, BucketHigh, ClassifyScore(0.95))
	assert.Equal(t, BucketMedium, ClassifyScore(0.7))
	assert.Equal(t, BucketMedium, ClassifyScore(0.79))
	assert.Equal(t, BucketLow, ClassifyScore(0.69))
	assert.Equal(t, BucketLow, ClassifyScore(0))
}
