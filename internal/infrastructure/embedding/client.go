// Package embedding calls an external OpenAI-compatible embedding
// service and adapts it to the similarity engine's Embedder contract.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/wirkancil/markintel/internal/config"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// Client calls the /v1/embeddings endpoint of an OpenAI-compatible
// service and validates the returned vector dimension.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	dimension  int
	maxChars   int
	httpClient *http.Client
	logger     logging.Logger
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient builds an embedding client from configuration.
func NewClient(cfg config.EmbeddingConfig, log logging.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "embedding base URL is required")
	}
	if cfg.Dimension <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "embedding dimension must be positive")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimension:  cfg.Dimension,
		maxChars:   cfg.MaxChars,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.Named("embedding"),
	}, nil
}

// Dimension reports the vector size this client is configured for.
func (c *Client) Dimension() int {
	return c.dimension
}

// Embed returns the embedding vector for text. Input longer than the
// configured maximum is truncated before the call; the service's own
// token limit would otherwise reject long gazette fragments.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed, "cannot embed empty text")
	}
	if c.maxChars > 0 && len(text) > c.maxChars {
		text = text[:c.maxChars]
	}

	body, err := json.Marshal(embeddingRequest{Input: text, Model: c.model})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "failed to encode embedding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "failed to build embedding request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "embedding request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "failed to read embedding response")
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "failed to decode embedding response")
	}

	if resp.StatusCode != http.StatusOK {
		msg := "embedding service returned non-200 status"
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return nil, errors.Newf(errors.ErrCodeEmbeddingFailed, "%s (status %d)", msg, resp.StatusCode)
	}

	if len(parsed.Data) == 0 {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed, "embedding response contains no data")
	}
	vec := parsed.Data[0].Embedding
	if len(vec) != c.dimension {
		return nil, errors.Newf(errors.ErrCodeDimensionMismatch,
			"embedding dimension %d does not match configured %d", len(vec), c.dimension)
	}
	return vec, nil
}
