// Package maintenance holds the maintenance lifecycle: due-date computation,
// completion side effects, overdue/upcoming classification and the derived
// machine health score.
package maintenance

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"maintenance-tracker-backend/internal/model"
	"maintenance-tracker-backend/internal/store"
)

// Service implements the lifecycle on top of a Store.
type Service struct {
	store   store.Store
	logger  *zap.Logger
	now     func() time.Time
	horizon int
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithUpcomingHorizon sets the width in days of the upcoming window.
// Non-positive values are ignored.
func WithUpcomingHorizon(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.horizon = days
		}
	}
}

// NewService creates a Service.
func NewService(s store.Store, logger *zap.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   s,
		logger:  logger,
		now:     time.Now,
		horizon: DefaultUpcomingHorizonDays,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Today is the current calendar day in the clock's location.
func (s *Service) Today() model.Date {
	return model.DateOf(s.now())
}

// Horizon is the upcoming window in days.
func (s *Service) Horizon() int {
	return s.horizon
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
