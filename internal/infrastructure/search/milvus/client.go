// Package milvus hosts the trademark vector index: one collection of
// per-record search-text embeddings queried during similarity analysis.
package milvus

import (
	"context"

	"github.com/milvus-io/milvus-sdk-go/v2/client"

	"github.com/wirkancil/markintel/internal/config"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/pkg/errors"
)

// Client wraps the Milvus SDK connection.
type Client struct {
	mc     client.Client
	logger logging.Logger
}

// NewClient connects to Milvus and verifies the connection.
func NewClient(ctx context.Context, cfg config.MilvusConfig, log logging.Logger) (*Client, error) {
	if cfg.Address == "" {
		return nil, errors.New(errors.ErrCodeValidation, "milvus address is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	mc, err := client.NewClient(ctx, client.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to connect to milvus")
	}

	log.Info("connected to milvus", logging.String("address", cfg.Address))
	return &Client{mc: mc, logger: log.Named("milvus")}, nil
}

// Milvus returns the underlying SDK client.
func (c *Client) Milvus() client.Client {
	return c.mc
}

func (c *Client) Close() error {
	return c.mc.Close()
}
