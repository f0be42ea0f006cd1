package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tmtypes "github.com/wirkancil/markintel/pkg/types/trademark"
)

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)

	_, err = NewClient("ftp://host")
	require.Error(t, err)

	c, err := NewClient("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
}

func TestAnalyzeRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/analysis/similarity", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var req tmtypes.AnalysisRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SUPERCOLA", req.Trademark)

		json.NewEncoder(w).Encode(tmtypes.AnalysisResponse{
			TargetTrademark: req.Trademark,
			TotalCompared:   10,
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.Analyze(context.Background(), tmtypes.AnalysisRequest{Trademark: "SUPERCOLA"})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.TotalCompared)
}

func TestAPIErrorParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"TM_003","message":"trademark record not found"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetryMax(0))
	require.NoError(t, err)

	_, err = c.DocumentRecords(context.Background(), "missing-doc")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "TM_003", apiErr.Code)
	assert.Contains(t, apiErr.Message, "not found")
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(tmtypes.Thresholds{Overall: 0.7})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetryWait(time.Millisecond, 2*time.Millisecond))
	require.NoError(t, err)

	resp, err := c.Thresholds(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.7, resp.Overall, 1e-9)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"COMMON_002","message":"bad request"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetryWait(time.Millisecond, 2*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Thresholds(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUploadDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/documents", r.URL.Path)
		assert.Equal(t, "doc-42", r.URL.Query().Get("document_id"))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(tmtypes.UploadResponse{
			DocumentID:       "doc-42",
			RecordsExtracted: 7,
			Status:           "processed",
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.UploadDocument(context.Background(), "doc-42", strings.NewReader("BERITA RESMI MEREK"))
	require.NoError(t, err)
	assert.Equal(t, 7, resp.RecordsExtracted)
}
