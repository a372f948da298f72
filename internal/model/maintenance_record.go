package model

import "time"

// RecordStatus is the stored state of a maintenance record. Overdue is a
// derived view and never stored.
type RecordStatus string

const (
	RecordPending   RecordStatus = "Pending"
	RecordCompleted RecordStatus = "Completed"
)

// Valid reports whether s is a storable record state.
func (s RecordStatus) Valid() bool {
	return s == RecordPending || s == RecordCompleted
}

// MaintenanceRecord is one scheduled or completed service event of a machine.
type MaintenanceRecord struct {
	ID             int64        `gorm:"primaryKey" json:"id"`
	MachineID      int64        `gorm:"not null;index" json:"machineId"`
	ScheduledDate  Date         `gorm:"not null;index" json:"scheduledDate"`
	CompletedDate  *Date        `json:"completedDate"`
	Status         RecordStatus `gorm:"size:32;not null;default:Pending;index" json:"status"`
	TechnicianName *string      `gorm:"size:256" json:"technicianName"`
	Remarks        *string      `gorm:"type:text" json:"remarks"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}
