package service

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/afterclass/afterclass-backend/internal/testutil"
)

func TestWorkshopServiceCreate_Success(t *testing.T) {
	repo := testutil.NewMockWorkshopRepository()
	svc := NewWorkshopService(repo)

	created, err := svc.Create(validWorkshop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("Expected an assigned id")
	}
	if created.Title != "Pottery for beginners" {
		t.Errorf("Expected title 'Pottery for beginners', got %s", created.Title)
	}
}

func TestWorkshopServiceCreate_TrimsTitle(t *testing.T) {
	repo := testutil.NewMockWorkshopRepository()
	svc := NewWorkshopService(repo)

	w := validWorkshop()
	w.Title = "  Chess club  "

	created, err := svc.Create(w)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if created.Title != "Chess club" {
		t.Errorf("Expected trimmed title, got %q", created.Title)
	}
}

func TestWorkshopServiceCreate_TitleRequired(t *testing.T) {
	repo := testutil.NewMockWorkshopRepository()
	svc := NewWorkshopService(repo)

	w := validWorkshop()
	w.Title = "   "

	if _, err := svc.Create(w); err != domain.ErrTitleRequired {
		t.Errorf("Expected ErrTitleRequired, got %v", err)
	}
}

func TestWorkshopServiceCreate_TitleTooLong(t *testing.T) {
	repo := testutil.NewMockWorkshopRepository()
	svc := NewWorkshopService(repo)

	w := validWorkshop()
	w.Title = strings.Repeat("x", domain.MaxTitleLength+1)

	if _, err := svc.Create(w); err != domain.ErrTitleTooLong {
		t.Errorf("Expected ErrTitleTooLong, got %v", err)
	}
}

func TestWorkshopServiceCreate_InvalidAgeRange(t *testing.T) {
	repo := testutil.NewMockWorkshopRepository()
	svc := NewWorkshopService(repo)

	w := validWorkshop()
	w.MinAge = 10
	w.MaxAge = 5

	if _, err := svc.Create(w); err != domain.ErrInvalidAgeRange {
		t.Errorf("Expected ErrInvalidAgeRange, got %v", err)
	}
}

func TestWorkshopServiceCreate_NegativePrice(t *testing.T) {
	repo := testutil.NewMockWorkshopRepository()
	svc := NewWorkshopService(repo)

	w := validWorkshop()
	w.Price = decimal.NewFromInt(-1)

	if _, err := svc.Create(w); err != domain.ErrNegativePrice {
		t.Errorf("Expected ErrNegativePrice, got %v", err)
	}
}

func TestWorkshopServiceCreate_ProviderRequired(t *testing.T) {
	repo := testutil.NewMockWorkshopRepository()
	svc := NewWorkshopService(repo)

	w := validWorkshop()
	w.ProviderID = uuid.Nil

	if _, err := svc.Create(w); err != domain.ErrProviderRequired {
		t.Errorf("Expected ErrProviderRequired, got %v", err)
	}
}

func TestWorkshopServiceGetByID_InvalidID(t *testing.T) {
	repo := testutil.NewMockWorkshopRepository()
	svc := NewWorkshopService(repo)

	if _, err := svc.GetByID(uuid.Nil); err != domain.ErrInvalidID {
		t.Errorf("Expected ErrInvalidID, got %v", err)
	}
}

func TestWorkshopServiceUpdate_RequiresID(t *testing.T) {
	repo := testutil.NewMockWorkshopRepository()
	svc := NewWorkshopService(repo)

	w := validWorkshop()
	if _, err := svc.Update(w); err != domain.ErrInvalidID {
		t.Errorf("Expected ErrInvalidID, got %v", err)
	}
}

func TestWorkshopServiceGetByFilter_NormalizesPagination(t *testing.T) {
	repo := testutil.NewMockWorkshopRepository()
	svc := NewWorkshopService(repo)

	var captured *domain.WorkshopFilter
	repo.FilterFn = func(filter *domain.WorkshopFilter) ([]*domain.Workshop, int64, error) {
		captured = filter
		return nil, 0, nil
	}

	filter := &domain.WorkshopFilter{}
	filter.Size = 10000
	filter.From = -5

	if _, err := svc.GetByFilter(filter); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if captured.Size != domain.MaxPageSize {
		t.Errorf("Expected size clamped to %d, got %d", domain.MaxPageSize, captured.Size)
	}
	if captured.From != 0 {
		t.Errorf("Expected from clamped to 0, got %d", captured.From)
	}
	if captured.OrderByField != domain.OrderByRating {
		t.Errorf("Expected default ordering by rating, got %s", captured.OrderByField)
	}
}
