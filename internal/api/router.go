package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"maintenance-tracker-backend/config"
	"maintenance-tracker-backend/internal/maintenance"
	"maintenance-tracker-backend/internal/mw"
	"maintenance-tracker-backend/internal/store"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// NewRouter creates and configures a new Gin router.
func NewRouter(svc *maintenance.Service, s store.Store, webpushOptions *webpush.Options, cfg *config.ServerConfig, logger *zap.Logger) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestID(), mw.Logger(logger), mw.BodyLimit(maxBodyBytes))

	handler := NewHandler(svc, s, webpushOptions, logger)

	r.GET("/health", handler.Health)

	// API group
	api := r.Group("/api")
	api.Use(mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	{
		api.GET("/machines", handler.ListMachines)
		api.POST("/machines", handler.CreateMachine)
		api.GET("/machines/:id", handler.GetMachine)
		api.PUT("/machines/:id", handler.UpdateMachine)
		api.DELETE("/machines/:id", handler.DeleteMachine)
		api.GET("/machines/:id/history", handler.MachineHistory)

		api.GET("/maintenance", handler.ListMaintenance)
		api.POST("/maintenance", handler.ScheduleMaintenance)
		api.GET("/maintenance/export", handler.ExportMaintenance)
		api.GET("/maintenance/calendar.ics", handler.MaintenanceCalendar)
		api.GET("/maintenance/:id", handler.GetMaintenance)
		api.POST("/maintenance/:id/complete", handler.CompleteMaintenance)

		api.GET("/stats/dashboard", handler.GetDashboardStats)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
