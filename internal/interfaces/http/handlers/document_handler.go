package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wirkancil/markintel/internal/application/analysis"
	"github.com/wirkancil/markintel/internal/application/ingest"
	"github.com/wirkancil/markintel/internal/domain/trademark"
	"github.com/wirkancil/markintel/pkg/errors"
	tmtypes "github.com/wirkancil/markintel/pkg/types/trademark"
)

// Ingester runs the document ingest pipeline.  Satisfied by the ingest
// application service.
type Ingester interface {
	IngestText(ctx context.Context, documentID, filename string, text []byte) (*ingest.Result, error)
	Delete(ctx context.Context, documentID string) (int64, error)
}

// RecordLister reads stored records per document.
type RecordLister interface {
	ListByDocument(ctx context.Context, documentID string) ([]*trademark.Record, error)
}

// DocumentHandler serves gazette document upload, deletion and record
// listing.
type DocumentHandler struct {
	ingester Ingester
	records  RecordLister
	maxBytes int64
}

func NewDocumentHandler(ingester Ingester, records RecordLister, maxBytes int64) *DocumentHandler {
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	return &DocumentHandler{ingester: ingester, records: records, maxBytes: maxBytes}
}

// Upload handles POST /api/v1/documents.  The gazette text arrives either
// as a multipart "file" part or as a raw text body; an optional
// "document_id" form value or query parameter pins the document identity
// for re-ingestion.
func (h *DocumentHandler) Upload(c *gin.Context) {
	documentID := c.Query("document_id")

	filename, text, err := h.readDocument(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if id := c.PostForm("document_id"); id != "" {
		documentID = id
	}

	res, err := h.ingester.IngestText(c.Request.Context(), documentID, filename, text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tmtypes.UploadResponse{
		DocumentID:       res.DocumentID,
		Filename:         filename,
		RecordsExtracted: res.RecordsExtracted,
		RecordsIndexed:   res.RecordsIndexed,
		ChunksIndexed:    res.ChunksIndexed,
		Status:           "processed",
	})
}

// readDocument extracts the gazette text from the request, enforcing the
// upload size limit in both transport forms.
func (h *DocumentHandler) readDocument(c *gin.Context) (string, []byte, error) {
	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return "", nil, errors.Wrap(err, errors.ErrCodeBadRequest, "multipart form must carry a \"file\" part")
		}
		if fileHeader.Size > h.maxBytes {
			return "", nil, errors.Newf(errors.ErrCodeDocumentTooLarge,
				"document is %d bytes, limit is %d", fileHeader.Size, h.maxBytes)
		}
		f, err := fileHeader.Open()
		if err != nil {
			return "", nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to open uploaded file")
		}
		defer f.Close()
		text, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
		if err != nil {
			return "", nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read uploaded file")
		}
		return fileHeader.Filename, text, nil
	}

	text, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBytes+1))
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read request body")
	}
	return "", text, nil
}

// Delete handles DELETE /api/v1/documents/:documentID.
func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID := c.Param("documentID")

	deleted, err := h.ingester.Delete(c.Request.Context(), documentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document_id":     documentID,
		"records_deleted": deleted,
	})
}

// Records handles GET /api/v1/documents/:documentID/records.
func (h *DocumentHandler) Records(c *gin.Context) {
	documentID := c.Param("documentID")

	records, err := h.records.ListByDocument(c.Request.Context(), documentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document_id": documentID,
		"total":       len(records),
		"records":     analysis.RecordViews(records),
	})
}
