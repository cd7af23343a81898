package service

import (
	"strings"

	"github.com/afterclass/afterclass-backend/internal/domain"
)

// EntityService is the shared CRUD service for simple catalog entities.
// One generic implementation with a per-entity validate hook replaces the
// per-entity service boilerplate.
type EntityService[T any] struct {
	repo     domain.EntityRepository[T]
	validate func(*T) error
}

// NewEntityService creates a new EntityService
func NewEntityService[T any](repo domain.EntityRepository[T], validate func(*T) error) *EntityService[T] {
	if validate == nil {
		validate = func(*T) error { return nil }
	}
	return &EntityService[T]{repo: repo, validate: validate}
}

func (s *EntityService[T]) Create(entity *T) (*T, error) {
	if err := s.validate(entity); err != nil {
		return nil, err
	}
	return s.repo.Create(entity)
}

func (s *EntityService[T]) GetByID(id int32) (*T, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	return s.repo.GetByID(id)
}

func (s *EntityService[T]) GetAll() ([]*T, error) {
	return s.repo.GetAll()
}

func (s *EntityService[T]) Update(entity *T) (*T, error) {
	if err := s.validate(entity); err != nil {
		return nil, err
	}
	return s.repo.Update(entity)
}

func (s *EntityService[T]) Delete(id int32) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}
	return s.repo.Delete(id)
}

// NewCategoryService builds the category catalog service.
func NewCategoryService(repo domain.EntityRepository[domain.Category]) *EntityService[domain.Category] {
	return NewEntityService(repo, func(c *domain.Category) error {
		c.Title = strings.TrimSpace(c.Title)
		if c.Title == "" {
			return domain.ErrTitleRequired
		}
		if len(c.Title) > domain.MaxTitleLength {
			return domain.ErrTitleTooLong
		}
		return nil
	})
}

// NewSocialGroupService builds the social group catalog service.
func NewSocialGroupService(repo domain.EntityRepository[domain.SocialGroup]) *EntityService[domain.SocialGroup] {
	return NewEntityService(repo, func(g *domain.SocialGroup) error {
		g.Name = strings.TrimSpace(g.Name)
		if g.Name == "" {
			return domain.ErrTitleRequired
		}
		if len(g.Name) > domain.MaxTitleLength {
			return domain.ErrTitleTooLong
		}
		return nil
	})
}
