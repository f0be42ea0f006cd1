// Package repositories provides the PostgreSQL-backed implementations of
// the domain repository interfaces.
package repositories

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wirkancil/markintel/internal/domain/trademark"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/pkg/errors"
)

const recordColumns = `
	application_number, mark_name, class,
	applicant_name, applicant_address, goods_description, mark_type,
	reception_date, publication_date, certificate_number, certificate_date,
	validity_period, agent_name, agent_address, priority_claim,
	language_note, color_description,
	source_document_id, extraction_method, page, window`

// TrademarkRepository implements trademark.Repository on PostgreSQL.
// Records are keyed by application number; re-ingesting a document
// upserts rather than duplicating.
type TrademarkRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

func NewTrademarkRepository(pool *pgxpool.Pool, log logging.Logger) *TrademarkRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &TrademarkRepository{pool: pool, logger: log.Named("trademark_repo")}
}

// SaveBatch upserts records in a single pgx batch. Invalid records are
// never stored; callers are expected to filter them during extraction.
func (r *TrademarkRepository) SaveBatch(ctx context.Context, records []*trademark.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO trademark_records (`+recordColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
			ON CONFLICT (application_number) DO UPDATE SET
				mark_name          = EXCLUDED.mark_name,
				class              = EXCLUDED.class,
				applicant_name     = EXCLUDED.applicant_name,
				applicant_address  = EXCLUDED.applicant_address,
				goods_description  = EXCLUDED.goods_description,
				mark_type          = EXCLUDED.mark_type,
				reception_date     = EXCLUDED.reception_date,
				publication_date   = EXCLUDED.publication_date,
				certificate_number = EXCLUDED.certificate_number,
				certificate_date   = EXCLUDED.certificate_date,
				validity_period    = EXCLUDED.validity_period,
				agent_name         = EXCLUDED.agent_name,
				agent_address      = EXCLUDED.agent_address,
				priority_claim     = EXCLUDED.priority_claim,
				language_note      = EXCLUDED.language_note,
				color_description  = EXCLUDED.color_description,
				source_document_id = EXCLUDED.source_document_id,
				extraction_method  = EXCLUDED.extraction_method,
				page               = EXCLUDED.page,
				window             = EXCLUDED.window,
				updated_at         = now()`,
			rec.ApplicationNumber, rec.MarkName, rec.Class,
			rec.ApplicantName, rec.ApplicantAddress, rec.GoodsDescription, rec.MarkType,
			rec.ReceptionDate, rec.PublicationDate, rec.CertificateNumber, rec.CertificateDate,
			rec.ValidityPeriod, rec.AgentName, rec.AgentAddress, rec.PriorityClaim,
			rec.LanguageNote, rec.ColorDescription,
			rec.SourceDocumentID, string(rec.Provenance.Method), rec.Provenance.Page, rec.Provenance.Window,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for range records {
		if _, err := results.Exec(); err != nil {
			return written, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert trademark record")
		}
		written++
	}
	return written, nil
}

func (r *TrademarkRepository) FindByApplicationNumber(ctx context.Context, appNo string) (*trademark.Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM trademark_records
		WHERE application_number = $1`, appNo)

	rec, err := scanRecord(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Newf(errors.ErrCodeRecordNotFound, "trademark record %q not found", appNo)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query trademark record")
	}
	return rec, nil
}

func (r *TrademarkRepository) ListByDocument(ctx context.Context, documentID string) ([]*trademark.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM trademark_records
		WHERE source_document_id = $1
		ORDER BY window, application_number`, documentID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list records by document")
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *TrademarkRepository) List(ctx context.Context, limit, offset int) ([]*trademark.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM trademark_records
		ORDER BY application_number
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list records")
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *TrademarkRepository) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM trademark_records WHERE source_document_id = $1`, documentID)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete records by document")
	}
	return tag.RowsAffected(), nil
}

func (r *TrademarkRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM trademark_records`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count records")
	}
	return n, nil
}

func (r *TrademarkRepository) CountByClass(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT class, count(*) FROM trademark_records GROUP BY class`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count records by class")
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var class string
		var n int64
		if err := rows.Scan(&class, &n); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan class count")
		}
		counts[class] = n
	}
	return counts, rows.Err()
}

func (r *TrademarkRepository) CountDocuments(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(DISTINCT source_document_id)
		FROM trademark_records
		WHERE source_document_id <> ''`).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count documents")
	}
	return n, nil
}

func scanRecord(row pgx.Row) (*trademark.Record, error) {
	var rec trademark.Record
	var method string
	err := row.Scan(
		&rec.ApplicationNumber, &rec.MarkName, &rec.Class,
		&rec.ApplicantName, &rec.ApplicantAddress, &rec.GoodsDescription, &rec.MarkType,
		&rec.ReceptionDate, &rec.PublicationDate, &rec.CertificateNumber, &rec.CertificateDate,
		&rec.ValidityPeriod, &rec.AgentName, &rec.AgentAddress, &rec.PriorityClaim,
		&rec.LanguageNote, &rec.ColorDescription,
		&rec.SourceDocumentID, &method, &rec.Provenance.Page, &rec.Provenance.Window,
	)
	if err != nil {
		return nil, err
	}
	rec.Provenance.Method = trademark.ExtractionMethod(method)
	return &rec, nil
}

func collectRecords(rows pgx.Rows) ([]*trademark.Record, error) {
	var out []*trademark.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan trademark record")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate trademark records")
	}
	return out, nil
}
