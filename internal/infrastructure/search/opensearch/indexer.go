package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/wirkancil/markintel/internal/domain/trademark"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/pkg/errors"
)

// chunkMapping is the index mapping for document text chunks.
const chunkMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 1
  },
  "mappings": {
    "properties": {
      "document_id": {"type": "keyword"},
      "chunk_index": {"type": "integer"},
      "text":        {"type": "text"}
    }
  }
}`

// ChunkDoc is the indexed form of one segmenter chunk.
type ChunkDoc struct {
	DocumentID string `json:"document_id"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
}

// ChunkIndexer writes segmenter chunks into OpenSearch for generic
// full-text access to the raw gazette text.
type ChunkIndexer struct {
	client *Client
	index  string
	logger logging.Logger
}

func NewChunkIndexer(client *Client, index string, log logging.Logger) *ChunkIndexer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ChunkIndexer{client: client, index: index, logger: log.Named("chunk_indexer")}
}

// EnsureIndex creates the chunk index if it does not exist.
func (ix *ChunkIndexer) EnsureIndex(ctx context.Context) error {
	osc := ix.client.OpenSearch()

	existsReq := opensearchapi.IndicesExistsRequest{Index: []string{ix.index}}
	resp, err := existsReq.Do(ctx, osc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to check index existence")
	}
	resp.Body.Close()
	if resp.StatusCode == 200 {
		return nil
	}

	createReq := opensearchapi.IndicesCreateRequest{
		Index: ix.index,
		Body:  strings.NewReader(chunkMapping),
	}
	resp, err = createReq.Do(ctx, osc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create index")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return responseError(resp, "index creation failed")
	}

	ix.logger.Info("created chunk index", logging.String("index", ix.index))
	return nil
}

// IndexChunks bulk-indexes the chunks of one document. Document IDs are
// "<documentID>:<chunkIndex>" so re-ingestion overwrites.
func (ix *ChunkIndexer) IndexChunks(ctx context.Context, documentID string, chunks []trademark.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, chunk := range chunks {
		meta := fmt.Sprintf(`{"index":{"_index":%q,"_id":%q}}`, ix.index,
			fmt.Sprintf("%s:%d", documentID, chunk.Index))
		buf.WriteString(meta)
		buf.WriteByte('\n')

		doc, err := json.Marshal(ChunkDoc{
			DocumentID: documentID,
			ChunkIndex: chunk.Index,
			Text:       chunk.Text,
		})
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeIndexingFailed, "failed to encode chunk")
		}
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	req := opensearchapi.BulkRequest{Body: &buf}
	resp, err := req.Do(ctx, ix.client.OpenSearch())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeIndexingFailed, "bulk index request failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return responseError(resp, "bulk index failed")
	}

	ix.logger.Debug("indexed chunks",
		logging.String("document_id", documentID),
		logging.Int("count", len(chunks)))
	return nil
}

// DeleteByDocument removes every chunk of a document.
func (ix *ChunkIndexer) DeleteByDocument(ctx context.Context, documentID string) error {
	query := fmt.Sprintf(`{"query":{"term":{"document_id":%q}}}`, documentID)
	req := opensearchapi.DeleteByQueryRequest{
		Index: []string{ix.index},
		Body:  strings.NewReader(query),
	}
	resp, err := req.Do(ctx, ix.client.OpenSearch())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "delete by query request failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return responseError(resp, "delete by query failed")
	}
	return nil
}

// Count returns the number of indexed chunks.
func (ix *ChunkIndexer) Count(ctx context.Context) (int64, error) {
	req := opensearchapi.CountRequest{Index: []string{ix.index}}
	resp, err := req.Do(ctx, ix.client.OpenSearch())
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "count request failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return 0, responseError(resp, "count failed")
	}

	var parsed struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to decode count response")
	}
	return parsed.Count, nil
}

func responseError(resp *opensearchapi.Response, msg string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return errors.Newf(errors.ErrCodeDatabaseError, "%s: %s %s", msg, resp.Status(), string(body))
}
