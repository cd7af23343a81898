package domain

import "time"

// Category is a workshop direction (art, sport, science, ...).
type Category struct {
	ID          int32     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SocialGroup is an administrative child classification used for benefits.
type SocialGroup struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EntityRepository is the common CRUD surface shared by simple catalog
// entities. One generic implementation per store replaces the per-entity
// repository boilerplate.
type EntityRepository[T any] interface {
	Create(entity *T) (*T, error)
	GetByID(id int32) (*T, error)
	GetAll() ([]*T, error)
	Update(entity *T) (*T, error)
	Delete(id int32) error
}
