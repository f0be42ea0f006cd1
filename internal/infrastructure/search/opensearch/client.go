// Package opensearch indexes document text chunks for full-text lookup
// alongside the vector index.
package opensearch

import (
	"context"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/wirkancil/markintel/internal/config"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/pkg/errors"
)

// Client wraps the OpenSearch connection.
type Client struct {
	client *opensearch.Client
	logger logging.Logger
}

// NewClient connects to OpenSearch and verifies the cluster responds.
func NewClient(ctx context.Context, cfg config.OpenSearchConfig, log logging.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "opensearch addresses are required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	osc, err := opensearch.NewClient(opensearch.Config{
		Addresses:  cfg.Addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: 3,
		RetryBackoff: func(int) time.Duration {
			return 100 * time.Millisecond
		},
		Transport: &http.Transport{MaxIdleConnsPerHost: 10},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create opensearch client")
	}

	resp, err := osc.Ping(osc.Ping.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "opensearch connection failed")
	}
	resp.Body.Close()
	if resp.IsError() {
		return nil, errors.Newf(errors.ErrCodeDatabaseError, "opensearch ping returned %s", resp.Status())
	}

	log.Info("connected to opensearch", logging.Any("addresses", cfg.Addresses))
	return &Client{client: osc, logger: log.Named("opensearch")}, nil
}

// OpenSearch returns the underlying SDK client.
func (c *Client) OpenSearch() *opensearch.Client {
	return c.client
}

func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errors.Newf(errors.ErrCodeDatabaseError, "opensearch ping returned %s", resp.Status())
	}
	return nil
}
