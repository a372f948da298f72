package store

import (
	"context"

	"gorm.io/gorm"

	"maintenance-tracker-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// Transaction runs fn against a Store bound to a single database
	// transaction. fn must only use tx.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	ListMachines(ctx context.Context, status *model.MachineStatus) ([]model.Machine, error)
	GetMachine(ctx context.Context, id int64) (*model.Machine, error)
	CreateMachine(ctx context.Context, m *model.Machine) error
	UpdateMachine(ctx context.Context, m *model.Machine) error
	DeleteMachine(ctx context.Context, id int64) (int64, error)
	CountMachines(ctx context.Context, status *model.MachineStatus) (int64, error)

	ListRecords(ctx context.Context, f RecordFilter) ([]RecordWithMachine, error)
	CountRecords(ctx context.Context, f RecordFilter) (int64, error)
	MachineHistory(ctx context.Context, machineID int64) ([]RecordWithMachine, error)
	GetRecord(ctx context.Context, id int64) (*model.MaintenanceRecord, error)
	GetRecordWithMachine(ctx context.Context, id int64) (*RecordWithMachine, error)
	CreateRecord(ctx context.Context, r *model.MaintenanceRecord) error
	UpdateRecord(ctx context.Context, r *model.MaintenanceRecord) error
	DeleteRecordsByMachine(ctx context.Context, machineID int64) (int64, error)

	SaveSubscription(ctx context.Context, sub *model.PushSubscription, machineIDs []int64) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForMachine(ctx context.Context, machineID int64) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
