package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/afterclass/afterclass-backend/internal/service"
)

// PhotoHandler handles workshop cover photo HTTP requests
type PhotoHandler struct {
	photoService *service.PhotoService
	combiner     *service.WorkshopCombiner
}

// NewPhotoHandler creates a new PhotoHandler
func NewPhotoHandler(photoService *service.PhotoService, combiner *service.WorkshopCombiner) *PhotoHandler {
	return &PhotoHandler{photoService: photoService, combiner: combiner}
}

// CoverResponse carries the stored cover key and a temporary download URL
type CoverResponse struct {
	Key string `json:"key"`
	URL string `json:"url,omitempty"`
}

// UploadCover handles POST /api/v1/workshops/:id/cover
func (h *PhotoHandler) UploadCover(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid workshop id", nil)
	}

	if !h.photoService.IsEnabled() {
		return NewUnavailableError(c, "Photo storage is not configured")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return NewValidationError(c, "Photo file is required", []ValidationError{
			{Field: "photo", Message: "Multipart field 'photo' is required"},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return NewValidationError(c, "Failed to read photo", nil)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxPhotoSize+1))
	if err != nil {
		return NewValidationError(c, "Failed to read photo", nil)
	}

	ctx := c.Request().Context()
	meta, err := h.photoService.ProcessAndUpload(ctx, id, data, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhotoTooLarge),
			errors.Is(err, service.ErrInvalidPhotoFormat),
			errors.Is(err, service.ErrPhotoTooSmall),
			errors.Is(err, service.ErrInvalidPhotoData):
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Str("workshop_id", id.String()).Msg("Failed to upload cover photo")
		return NewInternalError(c, "Failed to upload photo")
	}

	if err := h.combiner.SetCoverImage(id, &meta.DisplayKey); err != nil {
		if errors.Is(err, domain.ErrWorkshopNotFound) {
			return NewNotFoundError(c, "Workshop not found")
		}
		log.Error().Err(err).Str("workshop_id", id.String()).Msg("Failed to set cover image")
		return NewInternalError(c, "Failed to set cover image")
	}

	url, err := h.photoService.ResolveURL(ctx, meta.DisplayKey)
	if err != nil {
		log.Warn().Err(err).Str("key", meta.DisplayKey).Msg("Failed to presign cover URL")
	}

	return c.JSON(http.StatusCreated, CoverResponse{Key: meta.DisplayKey, URL: url})
}

// GetCover handles GET /api/v1/workshops/:id/cover
func (h *PhotoHandler) GetCover(c echo.Context) error {
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

	if workshop.CoverImageKey == nil || *workshop.CoverImageKey == "" {
		return NewNotFoundError(c, "Workshop has no cover photo")
	}

	if !h.photoService.IsEnabled() {
		return NewUnavailableError(c, "Photo storage is not configured")
	}

	url, err := h.photoService.ResolveURL(c.Request().Context(), *workshop.CoverImageKey)
	if err != nil {
		log.Error().Err(err).Str("key", *workshop.CoverImageKey).Msg("Failed to presign cover URL")
		return NewInternalError(c, "Failed to resolve photo URL")
	}

	return c.JSON(http.StatusOK, CoverResponse{Key: *workshop.CoverImageKey, URL: url})
}

// DeleteCover handles DELETE /api/v1/workshops/:id/cover
func (h *PhotoHandler) DeleteCover(c echo.Context) error {
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

	if workshop.CoverImageKey != nil && *workshop.CoverImageKey != "" && h.photoService.IsEnabled() {
		if err := h.photoService.Delete(c.Request().Context(), *workshop.CoverImageKey); err != nil {
			log.Warn().Err(err).Str("key", *workshop.CoverImageKey).Msg("Failed to delete stored photo")
		}
	}

	if err := h.combiner.SetCoverImage(id, nil); err != nil {
		log.Error().Err(err).Str("workshop_id", id.String()).Msg("Failed to clear cover image")
		return NewInternalError(c, "Failed to clear cover image")
	}

	return c.NoContent(http.StatusNoContent)
}
