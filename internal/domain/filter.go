package domain

import "github.com/google/uuid"

// Ordering fields accepted by filtered listings.
const (
	OrderByID     = "id"
	OrderByRating = "rating"
	OrderByPrice  = "price"
	OrderByTitle  = "title"
)

// Pagination bounds
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// OffsetFilter carries plain offset pagination.
type OffsetFilter struct {
	From int `json:"from"`
	Size int `json:"size"`
}

// WorkshopFilter describes a filtered workshop listing query. The zero
// value of a bound means "unbounded" (MaxAge and MaxPrice of 0 are
// normalized by NewWorkshopFilter).
type WorkshopFilter struct {
	OffsetFilter

	IDs                   []uuid.UUID `json:"ids,omitempty"`
	SearchText            string      `json:"searchText"`
	OrderByField          string      `json:"orderByField"`
	MinAge                int         `json:"minAge"`
	MaxAge                int         `json:"maxAge"`
	IsFree                bool        `json:"isFree"`
	MinPrice              int         `json:"minPrice"`
	MaxPrice              int         `json:"maxPrice"`
	DirectionIDs          []int32     `json:"directionIds,omitempty"`
	City                  string      `json:"city"`
	WithDisabilityOptions bool        `json:"withDisabilityOptions"`
}

// NewWorkshopFilter returns a filter with the catalog defaults: full age
// range, unbounded price, ordered by rating.
func NewWorkshopFilter() *WorkshopFilter {
	return &WorkshopFilter{
		OffsetFilter: OffsetFilter{From: 0, Size: DefaultPageSize},
		OrderByField: OrderByRating,
		MinAge:       0,
		MaxAge:       100,
		MinPrice:     0,
		MaxPrice:     0,
	}
}

// Normalize clamps pagination and fills defaulted fields in place.
func (f *WorkshopFilter) Normalize() {
	if f.Size <= 0 {
		f.Size = DefaultPageSize
	}
	if f.Size > MaxPageSize {
		f.Size = MaxPageSize
	}
	if f.From < 0 {
		f.From = 0
	}
	if f.OrderByField == "" {
		f.OrderByField = OrderByRating
	}
	if f.MaxAge <= 0 {
		f.MaxAge = 100
	}
}

// Validate reports structurally impossible filters.
func (f *WorkshopFilter) Validate() error {
	if f.MinAge < 0 || (f.MaxAge > 0 && f.MinAge > f.MaxAge) {
		return ErrInvalidAgeRange
	}
	if f.MinPrice < 0 || f.MaxPrice < 0 {
		return ErrNegativePrice
	}
	switch f.OrderByField {
	case "", OrderByID, OrderByRating, OrderByPrice, OrderByTitle:
	default:
		return ErrInvalidInput
	}
	return nil
}
