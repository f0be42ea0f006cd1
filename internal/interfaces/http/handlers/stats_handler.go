package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wirkancil/markintel/internal/domain/similarity"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	tmtypes "github.com/wirkancil/markintel/pkg/types/trademark"
)

// RecordCounter reports aggregate counts from the relational store.
type RecordCounter interface {
	Count(ctx context.Context) (int64, error)
	CountByClass(ctx context.Context) (map[string]int64, error)
	CountDocuments(ctx context.Context) (int64, error)
}

// VectorCounter reports the vector index size and dimension.
type VectorCounter interface {
	Count(ctx context.Context) (int64, error)
	Dimension() int
}

// StatsHandler serves corpus statistics.
type StatsHandler struct {
	records    RecordCounter
	vectors    VectorCounter
	thresholds *similarity.Store
	logger     logging.Logger
}

func NewStatsHandler(records RecordCounter, vectors VectorCounter, thresholds *similarity.Store, log logging.Logger) *StatsHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &StatsHandler{records: records, vectors: vectors, thresholds: thresholds, logger: log.Named("stats")}
}

// Stats handles GET /api/v1/stats.  A degraded vector index does not fail
// the endpoint; its counts are reported as zero.
func (h *StatsHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.records.Count(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	documents, err := h.records.CountDocuments(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	byClass, err := h.records.CountByClass(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := tmtypes.StatsResponse{
		TotalRecords:   total,
		TotalDocuments: documents,
		ClassCounts:    byClass,
	}
	if h.thresholds != nil {
		t := h.thresholds.Current()
		resp.Thresholds = tmtypes.Thresholds{
			Lexical:  t.Lexical,
			Phonetic: t.Phonetic,
			Semantic: t.Semantic,
			Overall:  t.Overall,
		}
	}
	if h.vectors != nil {
		resp.IndexDimension = h.vectors.Dimension()
		if vectorCount, err := h.vectors.Count(ctx); err != nil {
			h.logger.Warn("vector count unavailable", logging.Err(err))
		} else {
			resp.VectorCount = vectorCount
		}
	}

	c.JSON(http.StatusOK, resp)
}
