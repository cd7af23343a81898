package postgres

import (
	"context"
	"time"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SyncRecordRepository is the append-only ledger of search index writes
// that did not land. Entries are never updated except for their synced
// flag and never deleted, so the ledger doubles as an audit trail.
type SyncRecordRepository struct {
	pool *pgxpool.Pool
}

// NewSyncRecordRepository creates a new SyncRecordRepository
func NewSyncRecordRepository(pool *pgxpool.Pool) *SyncRecordRepository {
	return &SyncRecordRepository{pool: pool}
}

// Append adds a ledger entry. The database assigns the entry id, which
// totally orders entries appended within the same instant.
func (r *SyncRecordRepository) Append(record *domain.SyncRecord) (*domain.SyncRecord, error) {
	ctx := context.Background()

	if record.OperationAt.IsZero() {
		record.OperationAt = time.Now().UTC()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO workshop_sync_ledger (record_id, operation, operation_at, synced)
		 VALUES ($1, $2, $3, FALSE)
		 RETURNING id`,
		record.RecordID, record.Operation, record.OperationAt,
	).Scan(&record.ID)
	if err != nil {
		return nil, err
	}
	record.Synced = false
	return record, nil
}

// GetOutstanding returns, per record, the single effective pending entry:
// the one with the greatest (operation_at, id). Records whose every entry
// is already synced do not appear.
func (r *SyncRecordRepository) GetOutstanding() ([]*domain.SyncRecord, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ON (record_id) id, record_id, operation, operation_at, synced
		 FROM workshop_sync_ledger
		 WHERE synced = FALSE
		 ORDER BY record_id, operation_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSyncRecords(rows)
}

// GetLatestForRecord returns the newest ledger entry for one record,
// synced or not.
func (r *SyncRecordRepository) GetLatestForRecord(recordID uuid.UUID) (*domain.SyncRecord, error) {
	ctx := context.Background()

	var rec domain.SyncRecord
	err := r.pool.QueryRow(ctx,
		`SELECT id, record_id, operation, operation_at, synced
		 FROM workshop_sync_ledger
		 WHERE record_id = $1
		 ORDER BY operation_at DESC, id DESC
		 LIMIT 1`, recordID,
	).Scan(&rec.ID, &rec.RecordID, &rec.Operation, &rec.OperationAt, &rec.Synced)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// GetByOperation lists all entries carrying one operation kind, newest first.
func (r *SyncRecordRepository) GetByOperation(operation domain.SyncOperation) ([]*domain.SyncRecord, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx,
		`SELECT id, record_id, operation, operation_at, synced
		 FROM workshop_sync_ledger
		 WHERE operation = $1
		 ORDER BY operation_at DESC, id DESC`, operation)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSyncRecords(rows)
}

// MarkSyncedThrough marks every entry for the record up to and including
// entryID as synced. Entries appended after the replay read keep a higher
// id, stay pending, and are picked up on the next pass.
func (r *SyncRecordRepository) MarkSyncedThrough(recordID uuid.UUID, entryID int64) error {
	ctx := context.Background()

	_, err := r.pool.Exec(ctx,
		`UPDATE workshop_sync_ledger
		 SET synced = TRUE
		 WHERE record_id = $1 AND id <= $2 AND synced = FALSE`,
		recordID, entryID)
	return err
}

// GetAll returns the full ledger, newest first. Serves the audit view.
func (r *SyncRecordRepository) GetAll() ([]*domain.SyncRecord, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx,
		`SELECT id, record_id, operation, operation_at, synced
		 FROM workshop_sync_ledger
		 ORDER BY operation_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSyncRecords(rows)
}

func collectSyncRecords(rows pgx.Rows) ([]*domain.SyncRecord, error) {
	var records []*domain.SyncRecord
	for rows.Next() {
		var rec domain.SyncRecord
		if err := rows.Scan(&rec.ID, &rec.RecordID, &rec.Operation, &rec.OperationAt, &rec.Synced); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
