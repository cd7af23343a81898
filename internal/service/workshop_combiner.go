package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/afterclass/afterclass-backend/internal/ws"
)

// WorkshopCombiner coordinates every workshop write across the record store
// and the search index. The record store write is the transaction of record:
// once it commits, the operation has succeeded. The index write is
// best-effort; when it fails the operation is appended to the sync ledger
// and the caller still gets a success.
type WorkshopCombiner struct {
	workshopService *WorkshopService
	index           domain.WorkshopIndex
	syncRepo        domain.SyncRecordRepository
	publisher       ws.EventPublisher
}

// NewWorkshopCombiner creates a new WorkshopCombiner
func NewWorkshopCombiner(
	workshopService *WorkshopService,
	index domain.WorkshopIndex,
	syncRepo domain.SyncRecordRepository,
	publisher ws.EventPublisher,
) *WorkshopCombiner {
	if publisher == nil {
		publisher = &ws.NoOpPublisher{}
	}
	return &WorkshopCombiner{
		workshopService: workshopService,
		index:           index,
		syncRepo:        syncRepo,
		publisher:       publisher,
	}
}

// Create persists a workshop, then propagates it to the search index.
func (c *WorkshopCombiner) Create(workshop *domain.Workshop) (*domain.Workshop, error) {
	created, err := c.workshopService.Create(workshop)
	if err != nil {
		return nil, err
	}

	c.propagate(created, domain.SyncOperationCreate)
	c.publisher.Publish(created.ProviderID, ws.WorkshopCreated(created))
	return created, nil
}

// Update persists workshop changes, then propagates them to the search index.
func (c *WorkshopCombiner) Update(workshop *domain.Workshop) (*domain.Workshop, error) {
	updated, err := c.workshopService.Update(workshop)
	if err != nil {
		return nil, err
	}

	c.propagate(updated, domain.SyncOperationUpdate)
	c.publisher.Publish(updated.ProviderID, ws.WorkshopUpdated(updated))
	return updated, nil
}

// Delete removes a workshop from the record store, then from the index.
func (c *WorkshopCombiner) Delete(id uuid.UUID) error {
	workshop, err := c.workshopService.GetByID(id)
	if err != nil {
		return err
	}

	if err := c.workshopService.Delete(id); err != nil {
		return err
	}

	if err := c.index.Delete(id); err != nil {
		log.Warn().
			Err(err).
			Str("workshopID", id.String()).
			Msg("Index delete failed, appending to sync ledger")
		c.appendLedger(id, domain.SyncOperationDelete)
	}

	c.publisher.Publish(workshop.ProviderID, ws.WorkshopDeleted(workshop))
	return nil
}

// GetByID reads the authoritative record. Detail reads never consult the
// index; only filtered listings do.
func (c *WorkshopCombiner) GetByID(id uuid.UUID) (*domain.Workshop, error) {
	return c.workshopService.GetByID(id)
}

// GetByProviderID reads a provider's workshops from the record store.
func (c *WorkshopCombiner) GetByProviderID(providerID uuid.UUID) ([]*domain.Workshop, error) {
	return c.workshopService.GetByProviderID(providerID)
}

// GetAll pages through the whole catalog. Ordered by id so offset pages
// stay stable while ratings move.
func (c *WorkshopCombiner) GetAll(offset domain.OffsetFilter) (*domain.SearchResult[domain.WorkshopCard], error) {
	filter := domain.NewWorkshopFilter()
	filter.OffsetFilter = offset
	filter.OrderByField = domain.OrderByID
	return c.GetByFilter(filter)
}

// GetByFilter serves the public catalog listing. The search index is the
// preferred path. A zero-hit result from a healthy index is a real answer
// and is returned as-is; the record store fallback engages only when the
// index is unreachable or answers zero while failing its health check.
func (c *WorkshopCombiner) GetByFilter(filter *domain.WorkshopFilter) (*domain.SearchResult[domain.WorkshopCard], error) {
	if filter == nil {
		filter = domain.NewWorkshopFilter()
	}
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	result, err := c.index.Search(filter)
	if err != nil {
		log.Warn().Err(err).Msg("Index search failed, falling back to record store")
		return c.filterFromStore(filter)
	}

	if result.TotalAmount == 0 && !c.index.Ping() {
		log.Warn().Msg("Index returned no hits and is unhealthy, falling back to record store")
		return c.filterFromStore(filter)
	}

	cards := make([]domain.WorkshopCard, 0, len(result.Entities))
	for i := range result.Entities {
		cards = append(cards, result.Entities[i].ToCard())
	}
	return &domain.SearchResult[domain.WorkshopCard]{
		TotalAmount: result.TotalAmount,
		Entities:    cards,
	}, nil
}

// SetCoverImage updates the cover key and re-propagates the record so the
// index document stays current.
func (c *WorkshopCombiner) SetCoverImage(id uuid.UUID, key *string) error {
	if err := c.workshopService.SetCoverImage(id, key); err != nil {
		return err
	}

	workshop, err := c.workshopService.GetByID(id)
	if err != nil {
		return err
	}
	c.propagate(workshop, domain.SyncOperationUpdate)
	return nil
}

// filterFromStore answers a listing from the record store in the exact
// shape the index path produces.
func (c *WorkshopCombiner) filterFromStore(filter *domain.WorkshopFilter) (*domain.SearchResult[domain.WorkshopCard], error) {
	result, err := c.workshopService.GetByFilter(filter)
	if err != nil {
		return nil, err
	}

	cards := make([]domain.WorkshopCard, 0, len(result.Entities))
	for i := range result.Entities {
		cards = append(cards, result.Entities[i].ToCard())
	}
	return &domain.SearchResult[domain.WorkshopCard]{
		TotalAmount: result.TotalAmount,
		Entities:    cards,
	}, nil
}

// propagate pushes the current record state into the index and records a
// ledger entry when the push fails. A ledger append failure is logged and
// swallowed: the record store write already succeeded and must stand.
func (c *WorkshopCombiner) propagate(workshop *domain.Workshop, op domain.SyncOperation) {
	if err := c.index.Index(workshop.ToDoc()); err != nil {
		log.Warn().
			Err(err).
			Str("workshopID", workshop.ID.String()).
			Str("operation", string(op)).
			Msg("Index write failed, appending to sync ledger")
		c.appendLedger(workshop.ID, op)
	}
}

func (c *WorkshopCombiner) appendLedger(recordID uuid.UUID, op domain.SyncOperation) {
	record := &domain.SyncRecord{
		RecordID:    recordID,
		Operation:   op,
		OperationAt: time.Now().UTC(),
	}
	if _, err := c.syncRepo.Append(record); err != nil {
		log.Error().
			Err(err).
			Str("recordID", recordID.String()).
			Str("operation", string(op)).
			Msg("Failed to append sync ledger entry")
	}
}
