// Package reminder periodically looks for overdue maintenance and hands a
// push notification job to the worker pool for each of it.
package reminder

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"maintenance-tracker-backend/config"
	"maintenance-tracker-backend/internal/maintenance"
	"maintenance-tracker-backend/internal/notification"
)

// Dispatcher accepts notification jobs. *notification.WorkerPool satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, job notification.Job) error
}

// Service sweeps overdue records on a fixed interval.
type Service struct {
	cfg        *config.ReminderConfig
	maint      *maintenance.Service
	dispatcher Dispatcher
	logger     *zap.Logger

	// record id -> struct{}, expires after the renotify window
	notified *cache.Cache
}

// NewService creates a reminder sweeper.
func NewService(cfg *config.ReminderConfig, maint *maintenance.Service, dispatcher Dispatcher, logger *zap.Logger) *Service {
	return &Service{
		cfg:        cfg,
		maint:      maint,
		dispatcher: dispatcher,
		logger:     logger.Named("reminder"),
		notified:   cache.New(cfg.Renotify, cfg.Renotify),
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info("reminder sweeper disabled")
		return
	}

	s.logger.Info("reminder sweeper started", zap.Duration("interval", s.cfg.Interval))
	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder sweeper stopping")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SweepOnce dispatches a job for every overdue record not already reminded
// about within the renotify window and returns how many were dispatched.
func (s *Service) SweepOnce(ctx context.Context) int {
	overdue, err := s.maint.Overdue(ctx, nil)
	if err != nil {
		s.logger.Error("failed to list overdue maintenance", zap.Error(err))
		return 0
	}

	dispatched := 0
	for _, r := range overdue {
		key := strconv.FormatInt(r.ID, 10)
		if _, seen := s.notified.Get(key); seen {
			continue
		}

		job := notification.Job{
			RecordID:      r.ID,
			MachineID:     r.MachineID,
			MachineName:   r.MachineName,
			ScheduledDate: r.ScheduledDate,
		}
		if err := s.dispatcher.Dispatch(ctx, job); err != nil {
			s.logger.Warn("sweep interrupted", zap.Int("dispatched", dispatched), zap.Error(err))
			return dispatched
		}
		s.notified.SetDefault(key, struct{}{})
		dispatched++
	}

	if dispatched > 0 {
		s.logger.Info("overdue reminders dispatched", zap.Int("count", dispatched), zap.Int("overdue", len(overdue)))
	}
	return dispatched
}
