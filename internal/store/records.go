package store

import (
	"context"

	"gorm.io/gorm"

	"maintenance-tracker-backend/internal/model"
)

const recordWithMachineColumns = "maintenance_records.*, COALESCE(machines.name, '') AS machine_name"

// filtered builds the WHERE clause shared by listing and counting.
func (s *gormStore) filtered(ctx context.Context, f RecordFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.MaintenanceRecord{})
	if f.MachineID != nil {
		q = q.Where("maintenance_records.machine_id = ?", *f.MachineID)
	}
	if f.Status != nil {
		q = q.Where("maintenance_records.status = ?", *f.Status)
	}
	if f.ScheduledFrom != nil {
		q = q.Where("maintenance_records.scheduled_date >= ?", *f.ScheduledFrom)
	}
	if f.ScheduledBefore != nil {
		q = q.Where("maintenance_records.scheduled_date < ?", *f.ScheduledBefore)
	}
	return q
}

func withMachineName(q *gorm.DB) *gorm.DB {
	return q.Select(recordWithMachineColumns).
		Joins("LEFT JOIN machines ON machines.id = maintenance_records.machine_id")
}

func (s *gormStore) ListRecords(ctx context.Context, f RecordFilter) ([]RecordWithMachine, error) {
	order := "maintenance_records.scheduled_date DESC, maintenance_records.id DESC"
	if f.Order == ScheduledAsc {
		order = "maintenance_records.scheduled_date ASC, maintenance_records.id ASC"
	}

	rows := make([]RecordWithMachine, 0)
	err := withMachineName(s.filtered(ctx, f)).Order(order).Scan(&rows).Error
	return rows, err
}

func (s *gormStore) CountRecords(ctx context.Context, f RecordFilter) (int64, error) {
	var n int64
	err := s.filtered(ctx, f).Count(&n).Error
	return n, err
}

// MachineHistory returns every record of a machine, most recently completed
// first and pending records last.
func (s *gormStore) MachineHistory(ctx context.Context, machineID int64) ([]RecordWithMachine, error) {
	rows := make([]RecordWithMachine, 0)
	err := withMachineName(s.filtered(ctx, RecordFilter{MachineID: &machineID})).
		Order("CASE WHEN maintenance_records.completed_date IS NULL THEN 1 ELSE 0 END").
		Order("maintenance_records.completed_date DESC").
		Order("maintenance_records.scheduled_date DESC").
		Order("maintenance_records.id DESC").
		Scan(&rows).Error
	return rows, err
}

// GetRecord returns gorm.ErrRecordNotFound when the record does not exist.
func (s *gormStore) GetRecord(ctx context.Context, id int64) (*model.MaintenanceRecord, error) {
	var r model.MaintenanceRecord
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *gormStore) GetRecordWithMachine(ctx context.Context, id int64) (*RecordWithMachine, error) {
	var row RecordWithMachine
	res := withMachineName(s.db.WithContext(ctx).Model(&model.MaintenanceRecord{})).
		Where("maintenance_records.id = ?", id).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (s *gormStore) CreateRecord(ctx context.Context, r *model.MaintenanceRecord) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *gormStore) UpdateRecord(ctx context.Context, r *model.MaintenanceRecord) error {
	return s.db.WithContext(ctx).Save(r).Error
}

func (s *gormStore) DeleteRecordsByMachine(ctx context.Context, machineID int64) (int64, error) {
	res := s.db.WithContext(ctx).Where("machine_id = ?", machineID).Delete(&model.MaintenanceRecord{})
	return res.RowsAffected, res.Error
}
