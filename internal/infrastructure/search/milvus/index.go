package milvus

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/wirkancil/markintel/internal/config"
	"github.com/wirkancil/markintel/internal/domain/trademark"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/pkg/errors"
)

const (
	fieldRecordKey  = "record_key"
	fieldDocumentID = "document_id"
	fieldSearchText = "search_text"
	fieldVector     = "vector"

	hnswM              = 8
	hnswEfConstruction = 200
	defaultSearchEf    = 64
)

// Hit is a single nearest-neighbour result. SearchText is carried so
// callers can fall back to metadata when the record is missing from
// the relational store.
type Hit struct {
	RecordKey  string
	DocumentID string
	SearchText string
	Score      float32
}

// RecordIndex manages the trademark search-text vector collection.
type RecordIndex struct {
	client     *Client
	collection string
	dimension  int
	searchEf   int
	logger     logging.Logger
}

func NewRecordIndex(c *Client, cfg config.MilvusConfig, log logging.Logger) (*RecordIndex, error) {
	if cfg.Dimension <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "vector dimension must be positive")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	searchEf := cfg.SearchEf
	if searchEf <= 0 {
		searchEf = defaultSearchEf
	}
	return &RecordIndex{
		client:     c,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		searchEf:   searchEf,
		logger:     log.Named("record_index"),
	}, nil
}

// EnsureCollection creates the collection, its HNSW index, and loads it
// into memory. Existing collections are loaded as-is.
func (ix *RecordIndex) EnsureCollection(ctx context.Context) error {
	mc := ix.client.Milvus()

	has, err := mc.HasCollection(ctx, ix.collection)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to check collection existence")
	}

	if !has {
		schema := entity.NewSchema().
			WithName(ix.collection).
			WithDescription("trademark record search-text embeddings").
			WithField(entity.NewField().WithName(fieldRecordKey).WithDataType(entity.FieldTypeVarChar).WithMaxLength(128).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(fieldDocumentID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(128)).
			WithField(entity.NewField().WithName(fieldSearchText).WithDataType(entity.FieldTypeVarChar).WithMaxLength(4096)).
			WithField(entity.NewField().WithName(fieldVector).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(ix.dimension)))

		if err := mc.CreateCollection(ctx, schema, 2); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create collection")
		}

		idx, err := entity.NewIndexHNSW(entity.COSINE, hnswM, hnswEfConstruction)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to build index definition")
		}
		if err := mc.CreateIndex(ctx, ix.collection, fieldVector, idx, false); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create vector index")
		}
		ix.logger.Info("created vector collection",
			logging.String("collection", ix.collection),
			logging.Int("dimension", ix.dimension))
	}

	if err := mc.LoadCollection(ctx, ix.collection, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load collection")
	}
	return nil
}

// Upsert writes one vector per record, keyed by the record identity so
// re-ingestion overwrites instead of duplicating. records and vectors
// must be aligned.
func (ix *RecordIndex) Upsert(ctx context.Context, records []*trademark.Record, vectors [][]float32) error {
	if len(records) == 0 {
		return nil
	}
	if len(records) != len(vectors) {
		return errors.Newf(errors.ErrCodeDimensionMismatch,
			"record count %d does not match vector count %d", len(records), len(vectors))
	}

	keys := make([]string, len(records))
	docIDs := make([]string, len(records))
	texts := make([]string, len(records))
	for i, rec := range records {
		if len(vectors[i]) != ix.dimension {
			return errors.Newf(errors.ErrCodeDimensionMismatch,
				"vector %d has dimension %d, expected %d", i, len(vectors[i]), ix.dimension)
		}
		keys[i] = rec.IdentityKey()
		docIDs[i] = rec.SourceDocumentID
		texts[i] = rec.SearchText()
	}

	_, err := ix.client.Milvus().Upsert(ctx, ix.collection, "",
		entity.NewColumnVarChar(fieldRecordKey, keys),
		entity.NewColumnVarChar(fieldDocumentID, docIDs),
		entity.NewColumnVarChar(fieldSearchText, texts),
		entity.NewColumnFloatVector(fieldVector, ix.dimension, vectors),
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeIndexingFailed, "failed to upsert vectors")
	}

	ix.logger.Debug("upserted vectors", logging.Int("count", len(records)))
	return nil
}

// QueryNearest returns the topK nearest records to the query vector,
// highest cosine similarity first.
func (ix *RecordIndex) QueryNearest(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	if len(vector) != ix.dimension {
		return nil, errors.Newf(errors.ErrCodeDimensionMismatch,
			"query vector has dimension %d, expected %d", len(vector), ix.dimension)
	}
	if topK <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "topK must be positive")
	}

	sp, err := entity.NewIndexHNSWSearchParam(ix.searchEf)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSimilaritySearchFailed, "failed to build search params")
	}

	results, err := ix.client.Milvus().Search(ctx, ix.collection, nil, "",
		[]string{fieldDocumentID, fieldSearchText},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldVector, entity.COSINE, topK, sp,
		client.WithSearchQueryConsistencyLevel(entity.ClBounded),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSimilaritySearchFailed, "vector search failed")
	}

	var hits []Hit
	for _, res := range results {
		keyCol, ok := res.IDs.(*entity.ColumnVarChar)
		if !ok {
			return nil, errors.New(errors.ErrCodeSimilaritySearchFailed, "unexpected primary key column type")
		}
		docCol, _ := res.Fields.GetColumn(fieldDocumentID).(*entity.ColumnVarChar)
		textCol, _ := res.Fields.GetColumn(fieldSearchText).(*entity.ColumnVarChar)

		for i, key := range keyCol.Data() {
			h := Hit{RecordKey: key, Score: res.Scores[i]}
			if docCol != nil && i < docCol.Len() {
				h.DocumentID = docCol.Data()[i]
			}
			if textCol != nil && i < textCol.Len() {
				h.SearchText = textCol.Data()[i]
			}
			hits = append(hits, h)
		}
	}
	return hits, nil
}

// DeleteByDocument removes every vector belonging to a document.
func (ix *RecordIndex) DeleteByDocument(ctx context.Context, documentID string) error {
	expr := fmt.Sprintf("%s == %q", fieldDocumentID, escapeExpr(documentID))
	if err := ix.client.Milvus().Delete(ctx, ix.collection, "", expr); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete vectors")
	}
	return nil
}

// Count returns the collection's row count.
func (ix *RecordIndex) Count(ctx context.Context) (int64, error) {
	stats, err := ix.client.Milvus().GetCollectionStatistics(ctx, ix.collection)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read collection statistics")
	}
	raw, ok := stats["row_count"]
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "invalid row count statistic")
	}
	return n, nil
}

// Dimension reports the configured vector width.
func (ix *RecordIndex) Dimension() int {
	return ix.dimension
}

// escapeExpr neutralizes quote characters in user-supplied expression
// operands.
func escapeExpr(s string) string {
	return strings.NewReplacer(`"`, ``, `\`, ``).Replace(s)
}
