package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	workshopHandler *WorkshopHandler,
	catalogHandler *CatalogHandler,
	photoHandler *PhotoHandler,
	syncHandler *SyncHandler,
	wsHandler *WebSocketHandler,
) {
	// API version 1
	api := e.Group("/api/v1")

	// Workshop routes
	workshops := api.Group("/workshops")
	workshops.POST("", workshopHandler.CreateWorkshop)
	workshops.GET("", workshopHandler.GetWorkshops)
	workshops.GET("/:id", workshopHandler.GetWorkshop)
	workshops.PUT("/:id", workshopHandler.UpdateWorkshop)
	workshops.DELETE("/:id", workshopHandler.DeleteWorkshop)
	workshops.POST("/:id/cover", photoHandler.UploadCover)
	workshops.GET("/:id/cover", photoHandler.GetCover)
	workshops.DELETE("/:id/cover", photoHandler.DeleteCover)

	// Provider routes
	api.GET("/providers/:providerId/workshops", workshopHandler.GetProviderWorkshops)

	// Category routes
	categories := api.Group("/categories")
	categories.POST("", catalogHandler.CreateCategory)
	categories.GET("", catalogHandler.GetCategories)
	categories.GET("/:id", catalogHandler.GetCategory)
	categories.PUT("/:id", catalogHandler.UpdateCategory)
	categories.DELETE("/:id", catalogHandler.DeleteCategory)

	// Social group routes
	socialGroups := api.Group("/social-groups")
	socialGroups.POST("", catalogHandler.CreateSocialGroup)
	socialGroups.GET("", catalogHandler.GetSocialGroups)
	socialGroups.GET("/:id", catalogHandler.GetSocialGroup)
	socialGroups.PUT("/:id", catalogHandler.UpdateSocialGroup)
	socialGroups.DELETE("/:id", catalogHandler.DeleteSocialGroup)

	// Admin routes
	admin := api.Group("/admin")
	admin.GET("/sync-records", syncHandler.GetSyncRecords)
	admin.POST("/sync", syncHandler.TriggerSync)

	// WebSocket endpoint
	e.GET("/ws", wsHandler.HandleWS)
}
