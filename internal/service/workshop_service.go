package service

import (
	"strings"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/google/uuid"
)

// WorkshopService handles workshop business logic against the record store.
// It never touches the search index; the combiner layers that on top.
type WorkshopService struct {
	workshopRepo domain.WorkshopRepository
}

// NewWorkshopService creates a new WorkshopService
func NewWorkshopService(workshopRepo domain.WorkshopRepository) *WorkshopService {
	return &WorkshopService{workshopRepo: workshopRepo}
}

// Create validates and persists a new workshop.
func (s *WorkshopService) Create(workshop *domain.Workshop) (*domain.Workshop, error) {
	if err := validateWorkshop(workshop); err != nil {
		return nil, err
	}
	return s.workshopRepo.Create(workshop)
}

// GetByID retrieves a workshop with its owned collections.
func (s *WorkshopService) GetByID(id uuid.UUID) (*domain.Workshop, error) {
	if id == uuid.Nil {
		return nil, domain.ErrInvalidID
	}
	return s.workshopRepo.GetByID(id)
}

// GetByProviderID lists a provider's workshops from the record store.
func (s *WorkshopService) GetByProviderID(providerID uuid.UUID) ([]*domain.Workshop, error) {
	if providerID == uuid.Nil {
		return nil, domain.ErrInvalidID
	}
	return s.workshopRepo.GetByProviderID(providerID)
}

// GetByFilter runs the filtered listing against the record store.
func (s *WorkshopService) GetByFilter(filter *domain.WorkshopFilter) (*domain.SearchResult[domain.Workshop], error) {
	if filter == nil {
		filter = domain.NewWorkshopFilter()
	}
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	workshops, total, err := s.workshopRepo.GetByFilter(filter)
	if err != nil {
		return nil, err
	}

	entities := make([]domain.Workshop, 0, len(workshops))
	for _, w := range workshops {
		entities = append(entities, *w)
	}
	return &domain.SearchResult[domain.Workshop]{
		TotalAmount: total,
		Entities:    entities,
	}, nil
}

// Update validates and persists changes to an existing workshop.
func (s *WorkshopService) Update(workshop *domain.Workshop) (*domain.Workshop, error) {
	if workshop.ID == uuid.Nil {
		return nil, domain.ErrInvalidID
	}
	if err := validateWorkshop(workshop); err != nil {
		return nil, err
	}
	return s.workshopRepo.Update(workshop)
}

// Delete removes a workshop and everything it owns.
func (s *WorkshopService) Delete(id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.ErrInvalidID
	}
	return s.workshopRepo.Delete(id)
}

// SetCoverImage stores or clears the cover photo object key.
func (s *WorkshopService) SetCoverImage(id uuid.UUID, key *string) error {
	if id == uuid.Nil {
		return domain.ErrInvalidID
	}
	return s.workshopRepo.SetCoverImage(id, key)
}

func validateWorkshop(w *domain.Workshop) error {
	w.Title = strings.TrimSpace(w.Title)
	if w.Title == "" {
		return domain.ErrTitleRequired
	}
	if len(w.Title) > domain.MaxTitleLength {
		return domain.ErrTitleTooLong
	}
	if w.ProviderID == uuid.Nil {
		return domain.ErrProviderRequired
	}
	if w.MinAge < 0 || w.MaxAge < w.MinAge {
		return domain.ErrInvalidAgeRange
	}
	if w.Price.IsNegative() {
		return domain.ErrNegativePrice
	}
	return nil
}
