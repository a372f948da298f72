package store

import (
	"context"
	"fmt"

	"maintenance-tracker-backend/internal/model"
)

// ListMachines returns machines by name, optionally only those in status.
func (s *gormStore) ListMachines(ctx context.Context, status *model.MachineStatus) ([]model.Machine, error) {
	var machines []model.Machine
	q := s.db.WithContext(ctx).Order("name ASC, id ASC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	err := q.Find(&machines).Error
	return machines, err
}

// GetMachine returns gorm.ErrRecordNotFound when the machine does not exist.
func (s *gormStore) GetMachine(ctx context.Context, id int64) (*model.Machine, error) {
	var m model.Machine
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *gormStore) CreateMachine(ctx context.Context, m *model.Machine) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *gormStore) UpdateMachine(ctx context.Context, m *model.Machine) error {
	return s.db.WithContext(ctx).Save(m).Error
}

// DeleteMachine removes the machine and its subscription mappings. It reports
// the number of machine rows deleted. Records are removed separately with
// DeleteRecordsByMachine.
func (s *gormStore) DeleteMachine(ctx context.Context, id int64) (int64, error) {
	db := s.db.WithContext(ctx)
	if err := db.Exec("DELETE FROM subscription_machine_mapping WHERE machine_id = ?", id).Error; err != nil {
		return 0, fmt.Errorf("failed to delete subscription mappings for machine %d: %w", id, err)
	}
	res := db.Delete(&model.Machine{}, id)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete machine %d: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *gormStore) CountMachines(ctx context.Context, status *model.MachineStatus) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&model.Machine{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	err := q.Count(&n).Error
	return n, err
}
