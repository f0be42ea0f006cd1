package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wirkancil/markintel/internal/domain/similarity"
	tmtypes "github.com/wirkancil/markintel/pkg/types/trademark"
)

// Analyzer runs a single similarity analysis.  Satisfied by the analysis
// application service.
type Analyzer interface {
	Analyze(ctx context.Context, req tmtypes.AnalysisRequest) (*tmtypes.AnalysisResponse, error)
}

// AnalysisHandler serves similarity analysis and threshold tuning.
type AnalysisHandler struct {
	analyzer   Analyzer
	thresholds *similarity.Store
}

func NewAnalysisHandler(analyzer Analyzer, thresholds *similarity.Store) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer, thresholds: thresholds}
}

// Analyze handles POST /api/v1/analysis/similarity.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req tmtypes.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetThresholds handles GET /api/v1/thresholds.
func (h *AnalysisHandler) GetThresholds(c *gin.Context) {
	c.JSON(http.StatusOK, thresholdsView(h.thresholds.Current()))
}

// UpdateThresholds handles PUT /api/v1/thresholds.  Absent fields keep
// their current values; out-of-range values reject the whole patch.
func (h *AnalysisHandler) UpdateThresholds(c *gin.Context) {
	var patch tmtypes.ThresholdPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, err)
		return
	}

	updated, err := h.thresholds.Update(similarity.ThresholdPatch{
		Lexical:  patch.Lexical,
		Phonetic: patch.Phonetic,
		Semantic: patch.Semantic,
		Overall:  patch.Overall,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, thresholdsView(updated))
}

func thresholdsView(t similarity.Thresholds) tmtypes.Thresholds {
	return tmtypes.Thresholds{
		Lexical:  t.Lexical,
		Phonetic: t.Phonetic,
		Semantic: t.Semantic,
		Overall:  t.Overall,
	}
}
