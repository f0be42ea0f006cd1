package trademark

import "context"

// Repository is the persistence contract for trademark records.  The
// PostgreSQL implementation lives under internal/infrastructure/database.
type Repository interface {
	// SaveBatch upserts records keyed by application number and returns the
	// number of rows written.
	SaveBatch(ctx context.Context, records []*Record) (int, error)

	// FindByApplicationNumber returns the record with the given application
	// number, or an ErrCodeRecordNotFound error.
	FindByApplicationNumber(ctx context.Context, appNo string) (*Record, error)

	// ListByDocument returns every record extracted from a document, in
	// extraction order.
	ListByDocument(ctx context.Context, documentID string) ([]*Record, error)

	// List returns up to limit records ordered by application number.
	List(ctx context.Context, limit, offset int) ([]*Record, error)

	// DeleteByDocument removes all records for a document and returns the
	// number deleted.
	DeleteByDocument(ctx context.Context, documentID string) (int64, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// CountByClass returns record counts grouped by Nice class.
	CountByClass(ctx context.Context) (map[string]int64, error)

	// CountDocuments returns the number of distinct source documents.
	CountDocuments(ctx context.Context) (int64, error)
}
