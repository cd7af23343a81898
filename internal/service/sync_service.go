package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/afterclass/afterclass-backend/internal/ws"
)

// SyncService replays outstanding sync ledger entries against the search
// index until the index converges on the record store. Replays are
// idempotent, so running a pass twice, or racing a pass against live
// writes, cannot corrupt the index.
type SyncService struct {
	syncRepo     domain.SyncRecordRepository
	workshopRepo domain.WorkshopRepository
	index        domain.WorkshopIndex
	publisher    ws.EventPublisher
}

// NewSyncService creates a new SyncService
func NewSyncService(
	syncRepo domain.SyncRecordRepository,
	workshopRepo domain.WorkshopRepository,
	index domain.WorkshopIndex,
	publisher ws.EventPublisher,
) *SyncService {
	if publisher == nil {
		publisher = &ws.NoOpPublisher{}
	}
	return &SyncService{
		syncRepo:     syncRepo,
		workshopRepo: workshopRepo,
		index:        index,
		publisher:    publisher,
	}
}

// SyncResult summarizes one reconciliation pass.
type SyncResult struct {
	Outstanding int `json:"outstanding"`
	Replayed    int `json:"replayed"`
	Failed      int `json:"failed"`
}

// Synchronize runs one reconciliation pass. For each record with pending
// ledger entries it replays only the latest entry; older entries for the
// same record are superseded and marked synced together with it. A failed
// replay stays pending for the next pass and never blocks other records.
func (s *SyncService) Synchronize() (*SyncResult, error) {
	start := time.Now()

	outstanding, err := s.syncRepo.GetOutstanding()
	if err != nil {
		return nil, fmt.Errorf("failed to get outstanding sync records: %w", err)
	}

	result := &SyncResult{Outstanding: len(outstanding)}
	if len(outstanding) == 0 {
		return result, nil
	}

	log.Info().Int("outstanding", len(outstanding)).Msg("Starting sync ledger replay")

	for _, record := range outstanding {
		workshop, err := s.replay(record)
		if err != nil {
			log.Error().
				Err(err).
				Int64("entryID", record.ID).
				Str("recordID", record.RecordID.String()).
				Str("operation", string(record.Operation)).
				Msg("Failed to replay sync record")
			result.Failed++
			continue
		}

		// Entries appended after GetOutstanding carry a higher id and
		// stay pending, so a concurrent write is never marked away.
		if err := s.syncRepo.MarkSyncedThrough(record.RecordID, record.ID); err != nil {
			log.Error().
				Err(err).
				Int64("entryID", record.ID).
				Str("recordID", record.RecordID.String()).
				Msg("Replayed but failed to mark ledger entries synced")
			result.Failed++
			continue
		}
		result.Replayed++

		// Delete replays have no surviving record, so no provider to notify.
		if workshop != nil {
			s.publisher.Publish(workshop.ProviderID, ws.SyncReplayed(record))
		}
	}

	log.Info().
		Int("replayed", result.Replayed).
		Int("failed", result.Failed).
		Dur("duration", time.Since(start)).
		Msg("Sync ledger replay completed")

	return result, nil
}

// replay applies one ledger entry to the index and returns the workshop it
// re-indexed, if any. A create or update whose record has since been
// deleted converges as an index delete.
func (s *SyncService) replay(record *domain.SyncRecord) (*domain.Workshop, error) {
	switch record.Operation {
	case domain.SyncOperationDelete:
		return nil, s.index.Delete(record.RecordID)

	case domain.SyncOperationCreate, domain.SyncOperationUpdate:
		workshop, err := s.workshopRepo.GetByID(record.RecordID)
		if err != nil {
			if errors.Is(err, domain.ErrWorkshopNotFound) {
				return nil, s.index.Delete(record.RecordID)
			}
			return nil, fmt.Errorf("failed to load workshop: %w", err)
		}
		if err := s.index.Index(workshop.ToDoc()); err != nil {
			return nil, err
		}
		return workshop, nil

	default:
		return nil, domain.ErrInvalidOperation
	}
}

// GetRecords returns the full ledger for the audit view.
func (s *SyncService) GetRecords() ([]*domain.SyncRecord, error) {
	return s.syncRepo.GetAll()
}

// GetRecordsByOperation returns ledger entries of one operation kind.
func (s *SyncService) GetRecordsByOperation(op domain.SyncOperation) ([]*domain.SyncRecord, error) {
	if !op.Valid() {
		return nil, domain.ErrInvalidOperation
	}
	return s.syncRepo.GetByOperation(op)
}
