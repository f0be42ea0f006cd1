// Package minio stores uploaded gazette documents as raw text objects.
package minio

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/wirkancil/markintel/internal/config"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/pkg/errors"
)

// DocumentStore keeps the original text of each ingested document so it
// can be re-processed without a fresh upload.
type DocumentStore struct {
	client *minio.Client
	bucket string
	logger logging.Logger
}

// NewDocumentStore connects to MinIO and ensures the document bucket
// exists.
func NewDocumentStore(ctx context.Context, cfg config.MinIOConfig, log logging.Logger) (*DocumentStore, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New(errors.ErrCodeValidation, "minio endpoint is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := mc.BucketExists(checkCtx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}
	if !exists {
		if err := mc.MakeBucket(checkCtx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create bucket")
		}
		log.Info("created document bucket", logging.String("bucket", cfg.Bucket))
	}

	log.Info("connected to minio",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket))
	return &DocumentStore{client: mc, bucket: cfg.Bucket, logger: log.Named("document_store")}, nil
}

// Put stores the raw text of a document under its ID.
func (s *DocumentStore) Put(ctx context.Context, documentID string, text []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName(documentID),
		bytes.NewReader(text), int64(len(text)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to store document")
	}
	return nil
}

// Get retrieves the raw text of a stored document.
func (s *DocumentStore) Get(ctx context.Context, documentID string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName(documentID), minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to open document object")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, errors.Newf(errors.ErrCodeDocumentNotFound, "document %q not found", documentID)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to read document object")
	}
	return data, nil
}

// Remove deletes a stored document. Removing a missing document is not
// an error.
func (s *DocumentStore) Remove(ctx context.Context, documentID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName(documentID), minio.RemoveObjectOptions{})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to remove document object")
	}
	return nil
}

// Ping verifies the bucket is reachable.
func (s *DocumentStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

func objectName(documentID string) string {
	return "documents/" + documentID + ".txt"
}
