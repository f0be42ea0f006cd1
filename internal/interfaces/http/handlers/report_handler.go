package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	tmtypes "github.com/wirkancil/markintel/pkg/types/trademark"
)

// Reporter generates batch similarity reports.
type Reporter interface {
	Generate(ctx context.Context, req tmtypes.ReportRequest) (*tmtypes.ReportResponse, error)
}

// ReportHandler serves batch similarity report generation.
type ReportHandler struct {
	reporter Reporter
}

func NewReportHandler(reporter Reporter) *ReportHandler {
	return &ReportHandler{reporter: reporter}
}

// Generate handles POST /api/v1/reports/similarity.
func (h *ReportHandler) Generate(c *gin.Context) {
	var req tmtypes.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.reporter.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
