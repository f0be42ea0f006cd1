package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	tmtypes "github.com/wirkancil/markintel/pkg/types/trademark"
)

// Analyze runs a similarity analysis for one trademark name.
func (c *Client) Analyze(ctx context.Context, req tmtypes.AnalysisRequest) (*tmtypes.AnalysisResponse, error) {
	var resp tmtypes.AnalysisResponse
	if err := c.post(ctx, "/api/v1/analysis/similarity", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Thresholds returns the active similarity thresholds.
func (c *Client) Thresholds(ctx context.Context) (*tmtypes.Thresholds, error) {
	var resp tmtypes.Thresholds
	if err := c.get(ctx, "/api/v1/thresholds", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateThresholds applies a partial threshold update and returns the
// resulting configuration.
func (c *Client) UpdateThresholds(ctx context.Context, patch tmtypes.ThresholdPatch) (*tmtypes.Thresholds, error) {
	var resp tmtypes.Thresholds
	if err := c.put(ctx, "/api/v1/thresholds", patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateReport runs a batch similarity report.
func (c *Client) GenerateReport(ctx context.Context, req tmtypes.ReportRequest) (*tmtypes.ReportResponse, error) {
	var resp tmtypes.ReportResponse
	if err := c.post(ctx, "/api/v1/reports/similarity", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadDocument submits gazette text for extraction and indexing.  An
// empty documentID lets the server mint one.
func (c *Client) UploadDocument(ctx context.Context, documentID string, text io.Reader) (*tmtypes.UploadResponse, error) {
	path := "/api/v1/documents"
	if documentID != "" {
		path += "?document_id=" + url.QueryEscape(documentID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if httpResp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: httpResp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Message = string(bytes.TrimSpace(respBody))
		}
		return nil, apiErr
	}

	var resp tmtypes.UploadResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &resp, nil
}

// DeleteDocument removes a document and everything extracted from it.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	return c.delete(ctx, "/api/v1/documents/"+url.PathEscape(documentID), nil)
}

// DocumentRecordsResponse lists the records extracted from one document.
type DocumentRecordsResponse struct {
	DocumentID string               `json:"document_id"`
	Total      int                  `json:"total"`
	Records    []tmtypes.RecordView `json:"records"`
}

// DocumentRecords lists the records extracted from a document.
func (c *Client) DocumentRecords(ctx context.Context, documentID string) (*DocumentRecordsResponse, error) {
	var resp DocumentRecordsResponse
	if err := c.get(ctx, "/api/v1/documents/"+url.PathEscape(documentID)+"/records", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats returns corpus-level statistics.
func (c *Client) Stats(ctx context.Context) (*tmtypes.StatsResponse, error) {
	var resp tmtypes.StatsResponse
	if err := c.get(ctx, "/api/v1/stats", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
