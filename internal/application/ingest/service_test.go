package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirkancil/markintel/internal/domain/trademark"
	"github.com/wirkancil/markintel/internal/infrastructure/messaging/kafka"
	"github.com/wirkancil/markintel/pkg/errors"
)

type fakeRepo struct {
	saved   []*trademark.Record
	deleted []string
}

func (r *fakeRepo) SaveBatch(_ context.Context, records []*trademark.Record) (int, error) {
	r.saved = append(r.saved, records...)
	return len(records), nil
}

func (r *fakeRepo) FindByApplicationNumber(context.Context, string) (*trademark.Record, error) {
	return nil, errors.New(errors.ErrCodeRecordNotFound, "not found")
}

func (r *fakeRepo) ListByDocument(context.Context, string) ([]*trademark.Record, error) {
	return nil, nil
}

func (r *fakeRepo) List(context.Context, int, int) ([]*trademark.Record, error) {
	return nil, nil
}

func (r *fakeRepo) DeleteByDocument(_ context.Context, documentID string) (int64, error) {
	r.deleted = append(r.deleted, documentID)
	return 3, nil
}

func (r *fakeRepo) Count(context.Context) (int64, error)                   { return 0, nil }
func (r *fakeRepo) CountByClass(context.Context) (map[string]int64, error) { return nil, nil }
func (r *fakeRepo) CountDocuments(context.Context) (int64, error)          { return 0, nil }

type fakeStore struct {
	objects map[string][]byte
	removed []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Put(_ context.Context, id string, text []byte) error {
	s.objects[id] = text
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) ([]byte, error) {
	data, ok := s.objects[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeDocumentNotFound, "document %q not found", id)
	}
	return data, nil
}

func (s *fakeStore) Remove(_ context.Context, id string) error {
	s.removed = append(s.removed, id)
	delete(s.objects, id)
	return nil
}

type fakeVectors struct {
	upserted int
	deleted  []string
}

func (v *fakeVectors) Upsert(_ context.Context, records []*trademark.Record, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return errors.New(errors.ErrCodeDimensionMismatch, "length mismatch")
	}
	v.upserted += len(records)
	return nil
}

func (v *fakeVectors) DeleteByDocument(_ context.Context, id string) error {
	v.deleted = append(v.deleted, id)
	return nil
}

type fakeChunks struct {
	indexed map[string]int
	deleted []string
}

func newFakeChunks() *fakeChunks { return &fakeChunks{indexed: make(map[string]int)} }

func (c *fakeChunks) IndexChunks(_ context.Context, id string, chunks []trademark.Chunk) error {
	c.indexed[id] = len(chunks)
	return nil
}

func (c *fakeChunks) DeleteByDocument(_ context.Context, id string) error {
	c.deleted = append(c.deleted, id)
	return nil
}

type fakePublisher struct {
	topics []string
}

func (p *fakePublisher) Publish(_ context.Context, topic, _ string, _ *kafka.EventEnvelope) error {
	p.topics = append(p.topics, topic)
	return nil
}

type stubEmbedder struct {
	fail bool
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.fail {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed, "embedding unavailable")
	}
	return []float32{float32(len(text)), 1}, nil
}

func gazetteDocument(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "210 220 320 01/02/2020 10:00:00 JID %010d\n", 1234567890+i)
		fmt.Fprintf(&b, "730 Nama Pemohon : PT Contoh Abadi %d\n", i)
		fmt.Fprintf(&b, "Nama Referensi Label Merek : MERK%d\n", i)
		b.WriteString("511 Kelas Barang/Jasa : 25\n")
		b.WriteString("510 Uraian Barang/Jasa : Pakaian jadi, kaos, celana\n\n")
	}
	return b.String()
}

func newTestService(t *testing.T, repo *fakeRepo, store *fakeStore, vectors *fakeVectors, chunks *fakeChunks, pub *fakePublisher, embedder *stubEmbedder) *Service {
	t.Helper()
	seg := trademark.NewSegmenter(1000, 200, 50, 200)
	svc, err := NewService(Config{
		Assembler:  trademark.NewAssembler(seg, trademark.NewExtractor(), nil),
		Segmenter:  seg,
		Repository: repo,
		Store:      store,
		Vectors:    vectors,
		Chunks:     chunks,
		Embedder:   embedder,
		Publisher:  pub,
	})
	require.NoError(t, err)
	return svc
}

func TestIngestTextFullPipeline(t *testing.T) {
	repo := &fakeRepo{}
	store := newFakeStore()
	vectors := &fakeVectors{}
	chunks := newFakeChunks()
	pub := &fakePublisher{}
	svc := newTestService(t, repo, store, vectors, chunks, pub, &stubEmbedder{})

	res, err := svc.IngestText(context.Background(), "doc-1", "gazette.txt", []byte(gazetteDocument(3)))
	require.NoError(t, err)

	assert.Equal(t, "doc-1", res.DocumentID)
	assert.Equal(t, 3, res.RecordsExtracted)
	assert.Equal(t, 3, res.RecordsStored)
	assert.Equal(t, 3, res.RecordsIndexed)
	assert.Equal(t, trademark.MethodAnchorBased, res.Method)
	assert.Greater(t, res.ChunksIndexed, 0)

	assert.Len(t, repo.saved, 3)
	assert.Contains(t, store.objects, "doc-1")
	assert.Equal(t, 3, vectors.upserted)
	assert.Equal(t, res.ChunksIndexed, chunks.indexed["doc-1"])
	assert.Contains(t, pub.topics, kafka.TopicDocumentSubmitted)
	assert.Contains(t, pub.topics, kafka.TopicDocumentProcessed)
}

func TestIngestTextEmptyDocument(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, newFakeStore(), &fakeVectors{}, newFakeChunks(), &fakePublisher{}, &stubEmbedder{})

	_, err := svc.IngestText(context.Background(), "doc-1", "", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentEmpty))
}

func TestIngestTextTooLarge(t *testing.T) {
	seg := trademark.NewSegmenter(1000, 200, 50, 200)
	svc, err := NewService(Config{
		Assembler:        trademark.NewAssembler(seg, trademark.NewExtractor(), nil),
		Repository:       &fakeRepo{},
		Store:            newFakeStore(),
		MaxDocumentBytes: 10,
	})
	require.NoError(t, err)

	_, err = svc.IngestText(context.Background(), "doc-1", "", []byte(gazetteDocument(1)))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentTooLarge))
}

func TestIngestTextGeneratesDocumentID(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, &fakeRepo{}, store, &fakeVectors{}, newFakeChunks(), &fakePublisher{}, &stubEmbedder{})

	res, err := svc.IngestText(context.Background(), "", "", []byte(gazetteDocument(1)))
	require.NoError(t, err)
	assert.NotEmpty(t, res.DocumentID)
	assert.Contains(t, store.objects, res.DocumentID)
}

func TestIngestTextEmbeddingFailureSkipsVectors(t *testing.T) {
	vectors := &fakeVectors{}
	svc := newTestService(t, &fakeRepo{}, newFakeStore(), vectors, newFakeChunks(), &fakePublisher{}, &stubEmbedder{fail: true})

	res, err := svc.IngestText(context.Background(), "doc-1", "", []byte(gazetteDocument(2)))
	require.NoError(t, err)
	assert.Equal(t, 2, res.RecordsStored)
	assert.Equal(t, 0, res.RecordsIndexed)
	assert.Equal(t, 0, vectors.upserted)
}

func TestProcessStored(t *testing.T) {
	store := newFakeStore()
	store.objects["doc-9"] = []byte(gazetteDocument(2))
	svc := newTestService(t, &fakeRepo{}, store, &fakeVectors{}, newFakeChunks(), &fakePublisher{}, &stubEmbedder{})

	res, err := svc.ProcessStored(context.Background(), "doc-9")
	require.NoError(t, err)
	assert.Equal(t, 2, res.RecordsStored)
}

func TestProcessStoredMissingDocument(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, newFakeStore(), &fakeVectors{}, newFakeChunks(), &fakePublisher{}, &stubEmbedder{})

	_, err := svc.ProcessStored(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentNotFound))
}

func TestDeleteRemovesEverything(t *testing.T) {
	repo := &fakeRepo{}
	store := newFakeStore()
	store.objects["doc-1"] = []byte("text")
	vectors := &fakeVectors{}
	chunks := newFakeChunks()
	pub := &fakePublisher{}
	svc := newTestService(t, repo, store, vectors, chunks, pub, &stubEmbedder{})

	deleted, err := svc.Delete(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Equal(t, []string{"doc-1"}, repo.deleted)
	assert.Equal(t, []string{"doc-1"}, vectors.deleted)
	assert.Equal(t, []string{"doc-1"}, chunks.deleted)
	assert.Equal(t, []string{"doc-1"}, store.removed)
	assert.Contains(t, pub.topics, kafka.TopicDocumentDeleted)
}
