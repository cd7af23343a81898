package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/afterclass/afterclass-backend/internal/service"
)

// SyncHandler exposes the sync ledger audit view and the manual
// reconciliation trigger.
type SyncHandler struct {
	syncService *service.SyncService
	syncWorker  *service.SyncWorker
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *service.SyncService, syncWorker *service.SyncWorker) *SyncHandler {
	return &SyncHandler{syncService: syncService, syncWorker: syncWorker}
}

// GetSyncRecords handles GET /api/v1/admin/sync-records
func (h *SyncHandler) GetSyncRecords(c echo.Context) error {
	var (
		records []*domain.SyncRecord
		err     error
	)

	if op := c.QueryParam("operation"); op != "" {
		records, err = h.syncService.GetRecordsByOperation(domain.SyncOperation(op))
		if errors.Is(err, domain.ErrInvalidOperation) {
			return NewValidationError(c, "Invalid operation", []ValidationError{
				{Field: "operation", Message: "Must be one of: create, update, delete"},
			})
		}
	} else {
		records, err = h.syncService.GetRecords()
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to list sync records")
		return NewInternalError(c, "Failed to list sync records")
	}

	if records == nil {
		records = []*domain.SyncRecord{}
	}
	return c.JSON(http.StatusOK, records)
}

// TriggerSync handles POST /api/v1/admin/sync
func (h *SyncHandler) TriggerSync(c echo.Context) error {
	result, err := h.syncWorker.TriggerSync()
	if err != nil {
		log.Error().Err(err).Msg("Manual sync failed")
		return NewInternalError(c, "Sync failed")
	}
	return c.JSON(http.StatusOK, result)
}
