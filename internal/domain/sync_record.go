package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncOperation is the kind of index write a ledger entry replays.
type SyncOperation string

const (
	SyncOperationCreate SyncOperation = "create"
	SyncOperationUpdate SyncOperation = "update"
	SyncOperationDelete SyncOperation = "delete"
)

// Valid reports whether op is a known operation.
func (op SyncOperation) Valid() bool {
	switch op {
	case SyncOperationCreate, SyncOperationUpdate, SyncOperationDelete:
		return true
	}
	return false
}

// SyncRecord is one entry of the append-only sync ledger. An entry is
// written exactly when a search index propagation fails; it is never
// rewritten. The effective outstanding operation for a record is the
// unsynced entry with the greatest (OperationAt, ID); the monotonic ID
// breaks timestamp ties deterministically.
type SyncRecord struct {
	ID          int64         `json:"id"`
	RecordID    uuid.UUID     `json:"recordId"`
	Operation   SyncOperation `json:"operation"`
	OperationAt time.Time     `json:"operationAt"`
	Synced      bool          `json:"synced"`
}

// SyncRecordRepository is the ledger surface.
//
// MarkSyncedThrough flips the synced flag on all entries of a record up to
// and including entryID. Entries appended after the replayed one keep their
// outstanding status, so a newer operation arriving mid-replay is never
// lost; the re-check-before-commit discipline lives in that predicate.
type SyncRecordRepository interface {
	Append(record *SyncRecord) (*SyncRecord, error)
	GetOutstanding() ([]*SyncRecord, error)
	GetLatestForRecord(recordID uuid.UUID) (*SyncRecord, error)
	GetByOperation(operation SyncOperation) ([]*SyncRecord, error)
	MarkSyncedThrough(recordID uuid.UUID, entryID int64) error
	GetAll() ([]*SyncRecord, error)
}
