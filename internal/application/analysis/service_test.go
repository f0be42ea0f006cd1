package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirkancil/markintel/internal/domain/similarity"
	"github.com/wirkancil/markintel/internal/domain/trademark"
	milvussearch "github.com/wirkancil/markintel/internal/infrastructure/search/milvus"
	"github.com/wirkancil/markintel/pkg/errors"
	tmtypes "github.com/wirkancil/markintel/pkg/types/trademark"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type fakeCorpus struct {
	hits     []milvussearch.Hit
	lastTopK int
}

func (c *fakeCorpus) QueryNearest(_ context.Context, _ []float32, topK int) ([]milvussearch.Hit, error) {
	c.lastTopK = topK
	return c.hits, nil
}

type fakeReader struct {
	records map[string]*trademark.Record
	listed  []*trademark.Record
}

func (r *fakeReader) FindByApplicationNumber(_ context.Context, appNo string) (*trademark.Record, error) {
	if rec, ok := r.records[appNo]; ok {
		return rec, nil
	}
	return nil, errors.Newf(errors.ErrCodeRecordNotFound, "trademark record %q not found", appNo)
}

func (r *fakeReader) List(_ context.Context, limit, _ int) ([]*trademark.Record, error) {
	if len(r.listed) > limit {
		return r.listed[:limit], nil
	}
	return r.listed, nil
}

func record(appNo, mark string) *trademark.Record {
	return &trademark.Record{
		ApplicationNumber: appNo,
		MarkName:          mark,
		Class:             "25",
		ApplicantName:     "PT Contoh",
		GoodsDescription:  "Pakaian jadi",
	}
}

func newTestService(t *testing.T, corpus VectorCorpus, reader RecordReader) *Service {
	t.Helper()
	store := similarity.NewStore(similarity.DefaultThresholds())
	engine, err := similarity.NewEngine(nil, store, 2, 20, 100, nil)
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	svc, err := NewService(Config{
		Engine:   engine,
		Embedder: stubEmbedder{},
		Corpus:   corpus,
		Records:  reader,
	})
	require.NoError(t, err)
	return svc
}

func TestAnalyzeHydratesVectorHits(t *testing.T) {
	corpus := &fakeCorpus{hits: []milvussearch.Hit{
		{RecordKey: "1234567890", Score: 0.95},
		{RecordKey: "1234567891", Score: 0.61},
	}}
	reader := &fakeReader{records: map[string]*trademark.Record{
		"1234567890": record("1234567890", "SUPERCOLA"),
		"1234567891": record("1234567891", "TOKOBAGUS"),
	}}
	svc := newTestService(t, corpus, reader)

	resp, err := svc.Analyze(context.Background(), tmtypes.AnalysisRequest{Trademark: "SUPERCOLA"})
	require.NoError(t, err)

	assert.Equal(t, "SUPERCOLA", resp.TargetTrademark)
	assert.Equal(t, 2, resp.TotalCompared)
	require.NotEmpty(t, resp.SimilarTrademarks)
	assert.Equal(t, "SUPERCOLA", resp.SimilarTrademarks[0].Record.MarkName)
	require.NotNil(t, resp.SimilarTrademarks[0].Overall)
	assert.Greater(t, *resp.SimilarTrademarks[0].Overall, 0.0)
	assert.NotEmpty(t, resp.AnalysisDate)
}

func TestAnalyzeOversamplesVectorQuery(t *testing.T) {
	corpus := &fakeCorpus{}
	svc := newTestService(t, corpus, &fakeReader{})

	_, err := svc.Analyze(context.Background(), tmtypes.AnalysisRequest{
		Trademark: "SUPERCOLA",
		Options:   tmtypes.AnalysisOptions{TopK: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 50, corpus.lastTopK)
}

func TestAnalyzeMetadataFallbackForMissingRecord(t *testing.T) {
	corpus := &fakeCorpus{hits: []milvussearch.Hit{{
		RecordKey:  "9999999999",
		DocumentID: "doc-7",
		SearchText: "Nama Merek: SUPERCOLA | Pemohon: PT Lama | Barang/Jasa: Minuman | Kelas: 32",
		Score:      0.9,
	}}}
	svc := newTestService(t, corpus, &fakeReader{})

	resp, err := svc.Analyze(context.Background(), tmtypes.AnalysisRequest{Trademark: "SUPERCOLA"})
	require.NoError(t, err)

	require.Len(t, resp.SimilarTrademarks, 1)
	match := resp.SimilarTrademarks[0]
	assert.Equal(t, "SUPERCOLA", match.Record.MarkName)
	assert.Equal(t, "PT Lama", match.Record.ApplicantName)
	assert.Equal(t, "32", match.Record.Class)
	assert.Equal(t, "doc-7", match.Record.SourceDocumentID)
}

func TestAnalyzeFallsBackToListWithoutCorpus(t *testing.T) {
	reader := &fakeReader{listed: []*trademark.Record{
		record("1234567890", "SUPERCOLA"),
	}}
	store := similarity.NewStore(similarity.DefaultThresholds())
	engine, err := similarity.NewEngine(nil, store, 2, 20, 100, nil)
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	svc, err := NewService(Config{Engine: engine, Records: reader})
	require.NoError(t, err)

	resp, err := svc.Analyze(context.Background(), tmtypes.AnalysisRequest{Trademark: "SUPERCOLA"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalCompared)
	require.Len(t, resp.SimilarTrademarks, 1)
}

func TestAnalyzeEmptyQuery(t *testing.T) {
	svc := newTestService(t, &fakeCorpus{}, &fakeReader{})

	_, err := svc.Analyze(context.Background(), tmtypes.AnalysisRequest{Trademark: "   "})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyQuery))
}

func TestRecordFromHit(t *testing.T) {
	rec := recordFromHit(milvussearch.Hit{
		RecordKey:  "doc:abc",
		DocumentID: "abc",
		SearchText: "Nama Merek: KOPIKAP | Pemohon:  | Barang/Jasa: Kopi | Kelas: 30",
	})
	require.NotNil(t, rec)
	assert.Empty(t, rec.ApplicationNumber)
	assert.Equal(t, "KOPIKAP", rec.MarkName)
	assert.Equal(t, "30", rec.Class)

	assert.Nil(t, recordFromHit(milvussearch.Hit{RecordKey: "x", SearchText: "garbage"}))
}
