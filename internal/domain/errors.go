package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidID           = errors.New("invalid id")
	ErrWorkshopNotFound    = errors.New("workshop not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSocialGroupNotFound = errors.New("social group not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooLong        = errors.New("title exceeds maximum length")
	ErrInvalidAgeRange     = errors.New("minimum age exceeds maximum age")
	ErrNegativePrice       = errors.New("price must not be negative")
	ErrProviderRequired    = errors.New("provider is required")
	ErrInvalidOperation    = errors.New("invalid sync operation")
)

// Validation constants
const (
	MaxTitleLength = 100
	MaxCityLength  = 60
)
