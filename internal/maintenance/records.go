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

// Range selects a time-relative view of pending records.
type Range string

const (
	RangeNone     Range = ""
	RangeUpcoming Range = "upcoming"
	RangeOverdue  Range = "overdue"
)

// RecordQuery filters a record listing. The machine filter applies in every
// mode; a range implies Pending.
type RecordQuery struct {
	MachineID *int64
	Status    *model.RecordStatus
	Range     Range
}

// RecordView is a record with its machine name and its classification as of
// the time of the request.
type RecordView struct {
	store.RecordWithMachine
	Classification Classification `json:"classification"`
}

// ScheduleInput is the payload for scheduling maintenance.
type ScheduleInput struct {
	MachineID     int64
	ScheduledDate model.Date
}

func (in *ScheduleInput) Validate() error {
	if in.MachineID <= 0 {
		return invalid("machineId", "machineId is required")
	}
	if in.ScheduledDate.IsZero() {
		return invalid("scheduledDate", "scheduledDate is required")
	}
	return nil
}

// CompletionInput is the payload for completing maintenance.
type CompletionInput struct {
	TechnicianName string
	Remarks        *string
}

func (in *CompletionInput) Validate() error {
	if strings.TrimSpace(in.TechnicianName) == "" {
		return invalid("technicianName", "technicianName is required")
	}
	return nil
}

// Schedule creates a pending record for an existing machine. The machine
// itself is not modified.
func (s *Service) Schedule(ctx context.Context, in ScheduleInput) (*model.MaintenanceRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetMachine(ctx, in.MachineID); err != nil {
		if isNotFound(err) {
			return nil, ErrMachineNotFound
		}
		s.logger.Error("failed to look up machine for scheduling", zap.Int64("machine_id", in.MachineID), zap.Error(err))
		return nil, err
	}

	r := &model.MaintenanceRecord{
		MachineID:     in.MachineID,
		ScheduledDate: in.ScheduledDate,
		Status:        model.RecordPending,
	}
	if err := s.store.CreateRecord(ctx, r); err != nil {
		s.logger.Error("failed to schedule maintenance", zap.Int64("machine_id", in.MachineID), zap.Error(err))
		return nil, err
	}
	return r, nil
}

// Complete marks a pending record done today and advances its machine's
// schedule in the same transaction: the machine is serviced today, falls due
// again after its frequency, and is back to Running. A record whose machine
// no longer exists is still completed.
func (s *Service) Complete(ctx context.Context, id int64, in CompletionInput) (*model.MaintenanceRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	today := s.Today()
	technician := strings.TrimSpace(in.TechnicianName)

	var completed *model.MaintenanceRecord
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		r, err := tx.GetRecord(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrRecordNotFound
			}
			return err
		}
		if r.Status == model.RecordCompleted {
			return ErrAlreadyCompleted
		}

		r.Status = model.RecordCompleted
		r.CompletedDate = today.Ptr()
		r.TechnicianName = &technician
		r.Remarks = in.Remarks
		if err := tx.UpdateRecord(ctx, r); err != nil {
			return fmt.Errorf("failed to update record %d: %w", id, err)
		}

		m, err := tx.GetMachine(ctx, r.MachineID)
		switch {
		case isNotFound(err):
			s.logger.Warn("completed record has no machine", zap.Int64("record_id", id), zap.Int64("machine_id", r.MachineID))
		case err != nil:
			return err
		default:
			m.LastMaintenanceDate = today.Ptr()
			m.NextDueDate = NextDue(today, m.MaintenanceFrequencyDays).Ptr()
			m.Status = model.MachineRunning
			if err := tx.UpdateMachine(ctx, m); err != nil {
				return fmt.Errorf("failed to advance machine %d: %w", m.ID, err)
			}
		}

		completed = r
		return nil
	})
	if err != nil {
		var verr *ValidationError
		if !errors.Is(err, ErrRecordNotFound) && !errors.As(err, &verr) {
			s.logger.Error("failed to complete maintenance", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}
	return completed, nil
}

// GetRecord returns one record with its machine name.
func (s *Service) GetRecord(ctx context.Context, id int64) (*RecordView, error) {
	row, err := s.store.GetRecordWithMachine(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRecordNotFound
		}
		s.logger.Error("failed to get record", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	view := s.view(*row, s.Today())
	return &view, nil
}

// ListRecords lists records newest scheduled first, or soonest first for a
// range view.
func (s *Service) ListRecords(ctx context.Context, q RecordQuery) ([]RecordView, error) {
	f, err := s.filter(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListRecords(ctx, f)
	if err != nil {
		s.logger.Error("failed to list records", zap.Error(err))
		return nil, err
	}
	return s.views(rows), nil
}

// Upcoming lists pending records due within the upcoming window, today included.
func (s *Service) Upcoming(ctx context.Context, machineID *int64) ([]RecordView, error) {
	return s.ListRecords(ctx, RecordQuery{MachineID: machineID, Range: RangeUpcoming})
}

// Overdue lists pending records scheduled before today.
func (s *Service) Overdue(ctx context.Context, machineID *int64) ([]RecordView, error) {
	return s.ListRecords(ctx, RecordQuery{MachineID: machineID, Range: RangeOverdue})
}

// History lists every record of a machine, latest completion first and
// pending records last.
func (s *Service) History(ctx context.Context, machineID int64) ([]RecordView, error) {
	if _, err := s.store.GetMachine(ctx, machineID); err != nil {
		if isNotFound(err) {
			return nil, ErrMachineNotFound
		}
		return nil, err
	}
	rows, err := s.store.MachineHistory(ctx, machineID)
	if err != nil {
		s.logger.Error("failed to load machine history", zap.Int64("machine_id", machineID), zap.Error(err))
		return nil, err
	}
	return s.views(rows), nil
}

// filter translates a query into store terms relative to today.
func (s *Service) filter(q RecordQuery) (store.RecordFilter, error) {
	f := store.RecordFilter{MachineID: q.MachineID, Status: q.Status}
	if q.Status != nil && !q.Status.Valid() {
		return f, invalid("status", "status must be one of Pending, Completed, Overdue")
	}

	today := s.Today()
	switch q.Range {
	case RangeNone:
		return f, nil
	case RangeOverdue:
		f.ScheduledBefore = today.Ptr()
	case RangeUpcoming:
		f.ScheduledFrom = today.Ptr()
		f.ScheduledBefore = today.AddDays(s.horizon).Ptr()
	default:
		return f, invalid("range", "range must be one of upcoming, overdue")
	}

	if q.Status != nil && *q.Status != model.RecordPending {
		return f, invalid("status", "range %s only contains Pending records", q.Range)
	}
	pending := model.RecordPending
	f.Status = &pending
	f.Order = store.ScheduledAsc
	return f, nil
}

func (s *Service) view(row store.RecordWithMachine, today model.Date) RecordView {
	return RecordView{
		RecordWithMachine: row,
		Classification:    Classify(&row.MaintenanceRecord, today, s.horizon),
	}
}

func (s *Service) views(rows []store.RecordWithMachine) []RecordView {
	today := s.Today()
	out := make([]RecordView, len(rows))
	for i, row := range rows {
		out[i] = s.view(row, today)
	}
	return out
}
