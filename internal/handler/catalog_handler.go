package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/afterclass/afterclass-backend/internal/service"
)

// CatalogHandler handles category and social group HTTP requests
type CatalogHandler struct {
	categories   *service.EntityService[domain.Category]
	socialGroups *service.EntityService[domain.SocialGroup]
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(
	categories *service.EntityService[domain.Category],
	socialGroups *service.EntityService[domain.SocialGroup],
) *CatalogHandler {
	return &CatalogHandler{categories: categories, socialGroups: socialGroups}
}

// CategoryRequest represents the create/update category request body
type CategoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SocialGroupRequest represents the create/update social group request body
type SocialGroupRequest struct {
	Name string `json:"name"`
}

// CreateCategory handles POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categories.Create(&domain.Category{Title: req.Title, Description: req.Description})
	if err != nil {
		return h.catalogError(c, err, "Failed to create category")
	}
	return c.JSON(http.StatusCreated, category)
}

// GetCategories handles GET /api/v1/categories
func (h *CatalogHandler) GetCategories(c echo.Context) error {
	categories, err := h.categories.GetAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		return NewInternalError(c, "Failed to list categories")
	}
	return c.JSON(http.StatusOK, categories)
}

// GetCategory handles GET /api/v1/categories/:id
func (h *CatalogHandler) GetCategory(c echo.Context) error {
	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid category id", nil)
	}

	category, err := h.categories.GetByID(id)
	if err != nil {
		return h.catalogError(c, err, "Failed to get category")
	}
	return c.JSON(http.StatusOK, category)
}

// UpdateCategory handles PUT /api/v1/categories/:id
func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid category id", nil)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categories.Update(&domain.Category{ID: id, Title: req.Title, Description: req.Description})
	if err != nil {
		return h.catalogError(c, err, "Failed to update category")
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/v1/categories/:id
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid category id", nil)
	}

	if err := h.categories.Delete(id); err != nil {
		return h.catalogError(c, err, "Failed to delete category")
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateSocialGroup handles POST /api/v1/social-groups
func (h *CatalogHandler) CreateSocialGroup(c echo.Context) error {
	var req SocialGroupRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	group, err := h.socialGroups.Create(&domain.SocialGroup{Name: req.Name})
	if err != nil {
		return h.catalogError(c, err, "Failed to create social group")
	}
	return c.JSON(http.StatusCreated, group)
}

// GetSocialGroups handles GET /api/v1/social-groups
func (h *CatalogHandler) GetSocialGroups(c echo.Context) error {
	groups, err := h.socialGroups.GetAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list social groups")
		return NewInternalError(c, "Failed to list social groups")
	}
	return c.JSON(http.StatusOK, groups)
}

// GetSocialGroup handles GET /api/v1/social-groups/:id
func (h *CatalogHandler) GetSocialGroup(c echo.Context) error {
	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid social group id", nil)
	}

	group, err := h.socialGroups.GetByID(id)
	if err != nil {
		return h.catalogError(c, err, "Failed to get social group")
	}
	return c.JSON(http.StatusOK, group)
}

// UpdateSocialGroup handles PUT /api/v1/social-groups/:id
func (h *CatalogHandler) UpdateSocialGroup(c echo.Context) error {
	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid social group id", nil)
	}

	var req SocialGroupRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	group, err := h.socialGroups.Update(&domain.SocialGroup{ID: id, Name: req.Name})
	if err != nil {
		return h.catalogError(c, err, "Failed to update social group")
	}
	return c.JSON(http.StatusOK, group)
}

// DeleteSocialGroup handles DELETE /api/v1/social-groups/:id
func (h *CatalogHandler) DeleteSocialGroup(c echo.Context) error {
	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid social group id", nil)
	}

	if err := h.socialGroups.Delete(id); err != nil {
		return h.catalogError(c, err, "Failed to delete social group")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) catalogError(c echo.Context, err error, internalDetail string) error {
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewNotFoundError(c, "Category not found")
	case errors.Is(err, domain.ErrSocialGroupNotFound):
		return NewNotFoundError(c, "Social group not found")
	case errors.Is(err, domain.ErrInvalidID):
		return NewValidationError(c, "Invalid id", nil)
	case errors.Is(err, domain.ErrTitleRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Title is required"},
		})
	case errors.Is(err, domain.ErrTitleTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Title must be 100 characters or less"},
		})
	}
	log.Error().Err(err).Msg(internalDetail)
	return NewInternalError(c, internalDetail)
}

func parseInt32Param(c echo.Context, name string) (int32, error) {
	n, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || n <= 0 {
		return 0, domain.ErrInvalidID
	}
	return int32(n), nil
}
