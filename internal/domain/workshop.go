package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Workshop is the authoritative record for an extracurricular workshop.
// It owns its teachers, applications and address: deleting a workshop
// removes all of them in a single transaction.
type Workshop struct {
	ID                    uuid.UUID       `json:"id"`
	Title                 string          `json:"title"`
	Keywords              string          `json:"keywords"`
	CategoryID            int32           `json:"categoryId"`
	Price                 decimal.Decimal `json:"price"`
	MinAge                int             `json:"minAge"`
	MaxAge                int             `json:"maxAge"`
	WithDisabilityOptions bool            `json:"withDisabilityOptions"`
	Rating                float32         `json:"rating"`
	ProviderID            uuid.UUID       `json:"providerId"`
	ProviderTitle         string          `json:"providerTitle"`
	CoverImageKey         *string         `json:"coverImageKey,omitempty"`
	Address               Address         `json:"address"`
	Teachers              []Teacher       `json:"teachers,omitempty"`
	Applications          []Application   `json:"applications,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// Address is the workshop venue. Owned by the workshop row.
type Address struct {
	ID       int64   `json:"id"`
	City     string  `json:"city"`
	Street   string  `json:"street"`
	Building string  `json:"building"`
	Lat      float64 `json:"lat,omitempty"`
	Lon      float64 `json:"lon,omitempty"`
}

// Teacher is a workshop instructor row owned by the workshop.
type Teacher struct {
	ID         int64     `json:"id"`
	WorkshopID uuid.UUID `json:"workshopId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	About      string    `json:"about,omitempty"`
}

// Application is a parent's application to a workshop, owned by the workshop.
type Application struct {
	ID         int64     `json:"id"`
	WorkshopID uuid.UUID `json:"workshopId"`
	ParentID   uuid.UUID `json:"parentId"`
	ChildName  string    `json:"childName"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WorkshopCard is the read-optimized listing shape returned by both the
// search index path and the database fallback path. Callers must not be
// able to tell which path produced it.
type WorkshopCard struct {
	ID                    uuid.UUID       `json:"id"`
	Title                 string          `json:"title"`
	CategoryID            int32           `json:"categoryId"`
	Price                 decimal.Decimal `json:"price"`
	MinAge                int             `json:"minAge"`
	MaxAge                int             `json:"maxAge"`
	City                  string          `json:"city"`
	Rating                float32         `json:"rating"`
	WithDisabilityOptions bool            `json:"withDisabilityOptions"`
	ProviderTitle         string          `json:"providerTitle"`
}

// WorkshopDoc is the denormalized search index document. Not authoritative:
// always reconstructible from the Workshop record and may lag behind it.
type WorkshopDoc struct {
	ID                    uuid.UUID `json:"id"`
	Title                 string    `json:"title"`
	Keywords              string    `json:"keywords"`
	CategoryID            int32     `json:"categoryId"`
	Price                 float64   `json:"price"`
	MinAge                int       `json:"minAge"`
	MaxAge                int       `json:"maxAge"`
	City                  string    `json:"city"`
	Rating                float32   `json:"rating"`
	WithDisabilityOptions bool      `json:"withDisabilityOptions"`
	ProviderID            uuid.UUID `json:"providerId"`
	ProviderTitle         string    `json:"providerTitle"`
}

// SearchResult is the common result envelope for filtered listings,
// identical for the index path and the database fallback path.
type SearchResult[T any] struct {
	TotalAmount int64 `json:"totalAmount"`
	Entities    []T   `json:"entities"`
}

// ToDoc projects the authoritative record into its index document.
func (w *Workshop) ToDoc() WorkshopDoc {
	return WorkshopDoc{
		ID:                    w.ID,
		Title:                 w.Title,
		Keywords:              w.Keywords,
		CategoryID:            w.CategoryID,
		Price:                 w.Price.InexactFloat64(),
		MinAge:                w.MinAge,
		MaxAge:                w.MaxAge,
		City:                  w.Address.City,
		Rating:                w.Rating,
		WithDisabilityOptions: w.WithDisabilityOptions,
		ProviderID:            w.ProviderID,
		ProviderTitle:         w.ProviderTitle,
	}
}

// ToCard projects the authoritative record into a listing card.
func (w *Workshop) ToCard() WorkshopCard {
	return WorkshopCard{
		ID:                    w.ID,
		Title:                 w.Title,
		CategoryID:            w.CategoryID,
		Price:                 w.Price,
		MinAge:                w.MinAge,
		MaxAge:                w.MaxAge,
		City:                  w.Address.City,
		Rating:                w.Rating,
		WithDisabilityOptions: w.WithDisabilityOptions,
		ProviderTitle:         w.ProviderTitle,
	}
}

// ToCard converts an index document into the same card shape.
func (d *WorkshopDoc) ToCard() WorkshopCard {
	return WorkshopCard{
		ID:                    d.ID,
		Title:                 d.Title,
		CategoryID:            d.CategoryID,
		Price:                 decimal.NewFromFloat(d.Price),
		MinAge:                d.MinAge,
		MaxAge:                d.MaxAge,
		City:                  d.City,
		Rating:                d.Rating,
		WithDisabilityOptions: d.WithDisabilityOptions,
		ProviderTitle:         d.ProviderTitle,
	}
}

// WorkshopRepository is the record store surface for workshops.
type WorkshopRepository interface {
	Create(workshop *Workshop) (*Workshop, error)
	GetByID(id uuid.UUID) (*Workshop, error)
	GetByProviderID(providerID uuid.UUID) ([]*Workshop, error)
	GetByFilter(filter *WorkshopFilter) ([]*Workshop, int64, error)
	Update(workshop *Workshop) (*Workshop, error)
	Delete(id uuid.UUID) error
	SetCoverImage(id uuid.UUID, key *string) error
}

// WorkshopIndex is the capability boundary to the external search service.
// Operations report expected failure modes (unreachable host, missing index)
// as errors; they never panic.
type WorkshopIndex interface {
	Index(doc WorkshopDoc) error
	Delete(id uuid.UUID) error
	Search(filter *WorkshopFilter) (*SearchResult[WorkshopDoc], error)
	Ping() bool
}
