package maintenance

import (
	"context"
	"fmt"

	"maintenance-tracker-backend/internal/model"
)

// DashboardStats are the aggregate counts of the dashboard.
type DashboardStats struct {
	TotalMachines         int64 `json:"totalMachines"`
	MachinesInMaintenance int64 `json:"machinesInMaintenance"`
	OverdueTasks          int64 `json:"overdueTasks"`
	UpcomingTasks         int64 `json:"upcomingTasks"`
}

// DashboardStats counts machines and classified records as of today.
func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.TotalMachines, err = s.store.CountMachines(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count machines: %w", err)
	}
	inMaintenance := model.MachineMaintenance
	if stats.MachinesInMaintenance, err = s.store.CountMachines(ctx, &inMaintenance); err != nil {
		return nil, fmt.Errorf("failed to count machines in maintenance: %w", err)
	}

	overdue, err := s.filter(RecordQuery{Range: RangeOverdue})
	if err != nil {
		return nil, err
	}
	if stats.OverdueTasks, err = s.store.CountRecords(ctx, overdue); err != nil {
		return nil, fmt.Errorf("failed to count overdue records: %w", err)
	}

	upcoming, err := s.filter(RecordQuery{Range: RangeUpcoming})
	if err != nil {
		return nil, err
	}
	if stats.UpcomingTasks, err = s.store.CountRecords(ctx, upcoming); err != nil {
		return nil, fmt.Errorf("failed to count upcoming records: %w", err)
	}

	return &stats, nil
}
