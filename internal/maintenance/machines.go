package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"maintenance-tracker-backend/internal/model"
	"maintenance-tracker-backend/internal/store"
)

// MachineInput is the payload for creating a machine.
type MachineInput struct {
	Name                     string
	Location                 string
	Status                   model.MachineStatus
	MaintenanceFrequencyDays int
	LastMaintenanceDate      *model.Date
	NextDueDate              *model.Date
	ImageURL                 *string
}

// Validate checks the fields of a new machine. An empty status means Running.
func (in *MachineInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "name is required")
	}
	if strings.TrimSpace(in.Location) == "" {
		return invalid("location", "location is required")
	}
	if err := validateFrequency(in.MaintenanceFrequencyDays); err != nil {
		return err
	}
	if in.Status != "" && !in.Status.Valid() {
		return invalid("status", "status must be one of Running, Stopped, Maintenance")
	}
	return nil
}

// MachinePatch lists the fields a machine update may change. Nil fields are
// left alone. NextDueDate is accepted only to be rejected: it is derived.
type MachinePatch struct {
	Name                     *string
	Location                 *string
	Status                   *model.MachineStatus
	MaintenanceFrequencyDays *int
	LastMaintenanceDate      *model.Date
	NextDueDate              *model.Date
	ImageURL                 *string
}

func (p *MachinePatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid("name", "name cannot be empty")
	}
	if p.Location != nil && strings.TrimSpace(*p.Location) == "" {
		return invalid("location", "location cannot be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("status", "status must be one of Running, Stopped, Maintenance")
	}
	if p.MaintenanceFrequencyDays != nil {
		if err := validateFrequency(*p.MaintenanceFrequencyDays); err != nil {
			return err
		}
	}
	if p.NextDueDate != nil {
		return invalid("nextDueDate", "nextDueDate is derived from lastMaintenanceDate and maintenanceFrequencyDays")
	}
	return nil
}

// MaxFrequencyDays bounds the maintenance interval so derived due dates stay
// within four-digit years.
const MaxFrequencyDays = 36500

func validateFrequency(days int) error {
	if days <= 0 {
		return invalid("maintenanceFrequencyDays", "maintenanceFrequencyDays must be a positive number of days")
	}
	if days > MaxFrequencyDays {
		return invalid("maintenanceFrequencyDays", "maintenanceFrequencyDays must be at most %d", MaxFrequencyDays)
	}
	return nil
}

// MachineDetail is a machine with its computed health score.
type MachineDetail struct {
	model.Machine
	HealthScore int `json:"healthScore"`
}

// ListMachines lists machines by name. A nil status lists all of them.
func (s *Service) ListMachines(ctx context.Context, status *model.MachineStatus) ([]model.Machine, error) {
	machines, err := s.store.ListMachines(ctx, status)
	if err != nil {
		s.logger.Error("failed to list machines", zap.Error(err))
		return nil, err
	}
	if machines == nil {
		machines = []model.Machine{}
	}
	return machines, nil
}

// GetMachine returns the machine and its health score over all of its records.
func (s *Service) GetMachine(ctx context.Context, id int64) (*MachineDetail, error) {
	m, err := s.store.GetMachine(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMachineNotFound
		}
		s.logger.Error("failed to get machine", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	total, err := s.store.CountRecords(ctx, store.RecordFilter{MachineID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to count records of machine %d: %w", id, err)
	}
	completedStatus := model.RecordCompleted
	completed, err := s.store.CountRecords(ctx, store.RecordFilter{MachineID: &id, Status: &completedStatus})
	if err != nil {
		return nil, fmt.Errorf("failed to count completed records of machine %d: %w", id, err)
	}

	return &MachineDetail{Machine: *m, HealthScore: HealthScore(completed, total)}, nil
}

// CreateMachine persists a new machine. Without an explicit next due date the
// machine falls due maintenanceFrequencyDays after today.
func (s *Service) CreateMachine(ctx context.Context, in MachineInput) (*model.Machine, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	m := &model.Machine{
		Name:                     strings.TrimSpace(in.Name),
		Location:                 strings.TrimSpace(in.Location),
		Status:                   in.Status,
		MaintenanceFrequencyDays: in.MaintenanceFrequencyDays,
		LastMaintenanceDate:      in.LastMaintenanceDate,
		NextDueDate:              in.NextDueDate,
		ImageURL:                 in.ImageURL,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if m.Status == "" {
		m.Status = model.MachineRunning
	}
	if m.NextDueDate == nil {
		m.NextDueDate = NextDue(model.DateOf(now), m.MaintenanceFrequencyDays).Ptr()
	}

	if err := s.store.CreateMachine(ctx, m); err != nil {
		s.logger.Error("failed to create machine", zap.String("name", m.Name), zap.Error(err))
		return nil, err
	}
	return m, nil
}

// UpdateMachine applies a patch. When the frequency or the last maintenance
// date changes, the next due date is recomputed from the last maintenance
// date, or from the creation day if the machine was never serviced.
func (s *Service) UpdateMachine(ctx context.Context, id int64, p MachinePatch) (*model.Machine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var updated *model.Machine
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		m, err := tx.GetMachine(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrMachineNotFound
			}
			return err
		}

		reschedule := false
		if p.Name != nil {
			m.Name = strings.TrimSpace(*p.Name)
		}
		if p.Location != nil {
			m.Location = strings.TrimSpace(*p.Location)
		}
		if p.Status != nil {
			m.Status = *p.Status
		}
		if p.ImageURL != nil {
			m.ImageURL = p.ImageURL
		}
		if p.MaintenanceFrequencyDays != nil && *p.MaintenanceFrequencyDays != m.MaintenanceFrequencyDays {
			m.MaintenanceFrequencyDays = *p.MaintenanceFrequencyDays
			reschedule = true
		}
		if p.LastMaintenanceDate != nil {
			m.LastMaintenanceDate = p.LastMaintenanceDate
			reschedule = true
		}
		if reschedule {
			base := model.DateOf(m.CreatedAt.In(s.now().Location()))
			if m.LastMaintenanceDate != nil {
				base = *m.LastMaintenanceDate
			}
			m.NextDueDate = NextDue(base, m.MaintenanceFrequencyDays).Ptr()
		}

		if err := tx.UpdateMachine(ctx, m); err != nil {
			return fmt.Errorf("failed to update machine %d: %w", id, err)
		}
		updated = m
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrMachineNotFound) {
			s.logger.Error("failed to update machine", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}
	return updated, nil
}

// DeleteMachine removes the machine together with its maintenance records.
func (s *Service) DeleteMachine(ctx context.Context, id int64) error {
	var removedRecords int64
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		n, err := tx.DeleteRecordsByMachine(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete records of machine %d: %w", id, err)
		}
		removedRecords = n

		deleted, err := tx.DeleteMachine(ctx, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrMachineNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrMachineNotFound) {
			s.logger.Error("failed to delete machine", zap.Int64("id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("machine deleted", zap.Int64("id", id), zap.Int64("records", removedRecords))
	return nil
}
