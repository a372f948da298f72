package store

import "maintenance-tracker-backend/internal/model"

// RecordWithMachine is a maintenance record joined with its machine's name.
type RecordWithMachine struct {
	model.MaintenanceRecord
	MachineName string `json:"machineName"`
}

// SortOrder selects the scheduled-date ordering of a record listing.
type SortOrder int

const (
	ScheduledDesc SortOrder = iota
	ScheduledAsc
)

// RecordFilter narrows a maintenance record query. Nil fields do not filter.
type RecordFilter struct {
	MachineID       *int64
	Status          *model.RecordStatus
	ScheduledFrom   *model.Date // inclusive
	ScheduledBefore *model.Date // exclusive
	Order           SortOrder
}
