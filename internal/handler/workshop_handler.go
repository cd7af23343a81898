package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/afterclass/afterclass-backend/internal/service"
)

// WorkshopHandler handles workshop-related HTTP requests
type WorkshopHandler struct {
	combiner *service.WorkshopCombiner
}

// NewWorkshopHandler creates a new WorkshopHandler
func NewWorkshopHandler(combiner *service.WorkshopCombiner) *WorkshopHandler {
	return &WorkshopHandler{combiner: combiner}
}

// AddressRequest represents a workshop venue in request bodies
type AddressRequest struct {
	City     string  `json:"city"`
	Street   string  `json:"street"`
	Building string  `json:"building"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// TeacherRequest represents a workshop instructor in request bodies
type TeacherRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	About     string `json:"about"`
}

// WorkshopRequest represents the create/update workshop request body
type WorkshopRequest struct {
	Title                 string           `json:"title"`
	Keywords              string           `json:"keywords"`
	CategoryID            int32            `json:"categoryId"`
	Price                 string           `json:"price"`
	MinAge                int              `json:"minAge"`
	MaxAge                int              `json:"maxAge"`
	WithDisabilityOptions bool             `json:"withDisabilityOptions"`
	ProviderID            string           `json:"providerId"`
	ProviderTitle         string           `json:"providerTitle"`
	Address               AddressRequest   `json:"address"`
	Teachers              []TeacherRequest `json:"teachers"`
}

func (r *WorkshopRequest) toDomain() (*domain.Workshop, error) {
	price := decimal.Zero
	if r.Price != "" {
		var err error
		price, err = decimal.NewFromString(r.Price)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
	}

	providerID, err := uuid.Parse(r.ProviderID)
	if err != nil {
		return nil, domain.ErrProviderRequired
	}

	workshop := &domain.Workshop{
		Title:                 r.Title,
		Keywords:              r.Keywords,
		CategoryID:            r.CategoryID,
		Price:                 price,
		MinAge:                r.MinAge,
		MaxAge:                r.MaxAge,
		WithDisabilityOptions: r.WithDisabilityOptions,
		ProviderID:            providerID,
		ProviderTitle:         r.ProviderTitle,
		Address: domain.Address{
			City:     r.Address.City,
			Street:   r.Address.Street,
			Building: r.Address.Building,
			Lat:      r.Address.Lat,
			Lon:      r.Address.Lon,
		},
	}
	for _, t := range r.Teachers {
		workshop.Teachers = append(workshop.Teachers, domain.Teacher{
			FirstName: t.FirstName,
			LastName:  t.LastName,
			About:     t.About,
		})
	}
	return workshop, nil
}

// CreateWorkshop handles POST /api/v1/workshops
func (h *WorkshopHandler) CreateWorkshop(c echo.Context) error {
	var req WorkshopRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	workshop, err := req.toDomain()
	if err != nil {
		return workshopValidationResponse(c, err)
	}

	created, err := h.combiner.Create(workshop)
	if err != nil {
		if resp := workshopValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Msg("Failed to create workshop")
		return NewInternalError(c, "Failed to create workshop")
	}

	log.Info().
		Str("workshop_id", created.ID.String()).
		Str("provider_id", created.ProviderID.String()).
		Msg("Workshop created")

	return c.JSON(http.StatusCreated, created)
}

// GetWorkshop handles GET /api/v1/workshops/:id
func (h *WorkshopHandler) GetWorkshop(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid workshop id", nil)
	}

	workshop, err := h.combiner.GetByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrWorkshopNotFound) {
			return NewNotFoundError(c, "Workshop not found")
		}
		log.Error().Err(err).Str("workshop_id", id.String()).Msg("Failed to get workshop")
		return NewInternalError(c, "Failed to get workshop")
	}

	return c.JSON(http.StatusOK, workshop)
}

// GetWorkshops handles GET /api/v1/workshops
func (h *WorkshopHandler) GetWorkshops(c echo.Context) error {
	filter, err := parseWorkshopFilter(c)
	if err != nil {
		return NewValidationError(c, "Invalid filter", nil)
	}

	result, err := h.combiner.GetByFilter(filter)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAgeRange) || errors.Is(err, domain.ErrNegativePrice) ||
			errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Invalid filter", nil)
		}
		log.Error().Err(err).Msg("Failed to list workshops")
		return NewInternalError(c, "Failed to list workshops")
	}

	return c.JSON(http.StatusOK, result)
}

// GetProviderWorkshops handles GET /api/v1/providers/:providerId/workshops
func (h *WorkshopHandler) GetProviderWorkshops(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("providerId"))
	if err != nil {
		return NewValidationError(c, "Invalid provider id", nil)
	}

	workshops, err := h.combiner.GetByProviderID(providerID)
	if err != nil {
		log.Error().Err(err).Str("provider_id", providerID.String()).Msg("Failed to list provider workshops")
		return NewInternalError(c, "Failed to list provider workshops")
	}

	return c.JSON(http.StatusOK, workshops)
}

// UpdateWorkshop handles PUT /api/v1/workshops/:id
func (h *WorkshopHandler) UpdateWorkshop(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid workshop id", nil)
	}

	var req WorkshopRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	workshop, err := req.toDomain()
	if err != nil {
		return workshopValidationResponse(c, err)
	}
	workshop.ID = id

	updated, err := h.combiner.Update(workshop)
	if err != nil {
		if errors.Is(err, domain.ErrWorkshopNotFound) {
			return NewNotFoundError(c, "Workshop not found")
		}
		if resp := workshopValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("workshop_id", id.String()).Msg("Failed to update workshop")
		return NewInternalError(c, "Failed to update workshop")
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteWorkshop handles DELETE /api/v1/workshops/:id
func (h *WorkshopHandler) DeleteWorkshop(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid workshop id", nil)
	}

	if err := h.combiner.Delete(id); err != nil {
		if errors.Is(err, domain.ErrWorkshopNotFound) {
			return NewNotFoundError(c, "Workshop not found")
		}
		log.Error().Err(err).Str("workshop_id", id.String()).Msg("Failed to delete workshop")
		return NewInternalError(c, "Failed to delete workshop")
	}

	log.Info().Str("workshop_id", id.String()).Msg("Workshop deleted")

	return c.NoContent(http.StatusNoContent)
}

// workshopValidationResponse maps workshop validation errors to problem
// responses; returns nil for errors it does not recognize.
func workshopValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrTitleRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Title is required"},
		})
	case errors.Is(err, domain.ErrTitleTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Title must be 100 characters or less"},
		})
	case errors.Is(err, domain.ErrInvalidAgeRange):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "minAge", Message: "Minimum age must not exceed maximum age"},
		})
	case errors.Is(err, domain.ErrNegativePrice):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "price", Message: "Price must not be negative"},
		})
	case errors.Is(err, domain.ErrProviderRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "providerId", Message: "Provider is required"},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, "Invalid request body", nil)
	}
	return nil
}

// parseWorkshopFilter reads listing filter parameters from the query string.
func parseWorkshopFilter(c echo.Context) (*domain.WorkshopFilter, error) {
	filter := domain.NewWorkshopFilter()

	filter.SearchText = c.QueryParam("search")
	if v := c.QueryParam("orderBy"); v != "" {
		filter.OrderByField = v
	}
	if v := c.QueryParam("city"); v != "" {
		filter.City = v
	}
	filter.IsFree = c.QueryParam("isFree") == "true"
	filter.WithDisabilityOptions = c.QueryParam("withDisabilityOptions") == "true"

	intParams := map[string]*int{
		"minAge":   &filter.MinAge,
		"maxAge":   &filter.MaxAge,
		"minPrice": &filter.MinPrice,
		"maxPrice": &filter.MaxPrice,
		"from":     &filter.From,
		"size":     &filter.Size,
	}
	for name, dst := range intParams {
		if v := c.QueryParam(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, domain.ErrInvalidInput
			}
			*dst = n
		}
	}

	if v := c.QueryParam("directionIds"); v != "" {
		for _, part := range strings.Split(v, ",") {
			n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 32)
			if err != nil {
				return nil, domain.ErrInvalidInput
			}
			filter.DirectionIDs = append(filter.DirectionIDs, int32(n))
		}
	}
	if v := c.QueryParam("ids"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return nil, domain.ErrInvalidInput
			}
			filter.IDs = append(filter.IDs, id)
		}
	}

	return filter, nil
}
