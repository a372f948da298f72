package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"maintenance-tracker-backend/internal/maintenance"
	"maintenance-tracker-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc     *maintenance.Service
	store   store.Store
	webpush *webpush.Options
	logger  *zap.Logger
}

// NewHandler creates a new API handler. webpushOptions may be nil when push
// reminders are disabled.
func NewHandler(svc *maintenance.Service, s store.Store, webpushOptions *webpush.Options, logger *zap.Logger) *Handler {
	return &Handler{
		svc:     svc,
		store:   s,
		webpush: webpushOptions,
		logger:  logger,
	}
}
