// Package seed fills an empty database with demo machines and maintenance.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"maintenance-tracker-backend/internal/maintenance"
	"maintenance-tracker-backend/internal/model"
	"maintenance-tracker-backend/internal/store"
)

type demoMachine struct {
	name      string
	location  string
	frequency int
	status    model.MachineStatus
	dueOffset int // days from today
}

var demoMachines = []demoMachine{
	{"CNC Lathe A1", "Zone 1", 30, model.MachineRunning, -3},
	{"Hydraulic Press H5", "Zone 2", 14, model.MachineRunning, 4},
	{"Conveyor Belt C3", "Loading Bay", 7, model.MachineMaintenance, 1},
	{"Robotic Arm R2", "Assembly Line", 60, model.MachineRunning, 12},
	{"Welding Station W1", "Zone 1", 10, model.MachineStopped, -1},
}

// Run creates the demo data unless machines already exist. It reports
// whether anything was written.
func Run(ctx context.Context, svc *maintenance.Service, s store.Store, logger *zap.Logger) (bool, error) {
	n, err := s.CountMachines(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("count machines: %w", err)
	}
	if n > 0 {
		logger.Info("database already has machines, skipping seed", zap.Int64("machines", n))
		return false, nil
	}

	today := svc.Today()
	machines := make([]*model.Machine, 0, len(demoMachines))
	for _, d := range demoMachines {
		m, err := svc.CreateMachine(ctx, maintenance.MachineInput{
			Name:                     d.name,
			Location:                 d.location,
			Status:                   d.status,
			MaintenanceFrequencyDays: d.frequency,
			LastMaintenanceDate:      today.AddDays(-30).Ptr(),
			NextDueDate:              today.AddDays(d.dueOffset).Ptr(),
		})
		if err != nil {
			return false, fmt.Errorf("create machine %q: %w", d.name, err)
		}
		machines = append(machines, m)
	}

	if _, err := svc.Schedule(ctx, maintenance.ScheduleInput{MachineID: machines[0].ID, ScheduledDate: today.AddDays(-5)}); err != nil {
		return false, fmt.Errorf("schedule overdue task: %w", err)
	}
	if _, err := svc.Schedule(ctx, maintenance.ScheduleInput{MachineID: machines[1].ID, ScheduledDate: today.AddDays(1)}); err != nil {
		return false, fmt.Errorf("schedule upcoming task: %w", err)
	}

	technician, remarks := "John Doe", "Replaced filter"
	yesterday := today.AddDays(-1)
	done := &model.MaintenanceRecord{
		MachineID:      machines[2].ID,
		ScheduledDate:  yesterday,
		CompletedDate:  yesterday.Ptr(),
		Status:         model.RecordCompleted,
		TechnicianName: &technician,
		Remarks:        &remarks,
	}
	if err := s.CreateRecord(ctx, done); err != nil {
		return false, fmt.Errorf("create completed task: %w", err)
	}

	logger.Info("database seeded", zap.Int("machines", len(machines)), zap.Int("records", 3))
	return true, nil
}
