package model

import "time"

// MachineStatus is the operating state of a machine.
type MachineStatus string

const (
	MachineRunning     MachineStatus = "Running"
	MachineStopped     MachineStatus = "Stopped"
	MachineMaintenance MachineStatus = "Maintenance"
)

// Valid reports whether s is one of the known machine states.
func (s MachineStatus) Valid() bool {
	switch s {
	case MachineRunning, MachineStopped, MachineMaintenance:
		return true
	}
	return false
}

// Machine represents a piece of tracked equipment.
type Machine struct {
	ID                       int64         `gorm:"primaryKey" json:"id"`
	Name                     string        `gorm:"size:256;not null;index" json:"name"`
	Location                 string        `gorm:"size:256;not null" json:"location"`
	Status                   MachineStatus `gorm:"size:32;not null;default:Running;index" json:"status"`
	MaintenanceFrequencyDays int           `gorm:"not null" json:"maintenanceFrequencyDays"`
	LastMaintenanceDate      *Date         `json:"lastMaintenanceDate"`
	NextDueDate              *Date         `json:"nextDueDate"` // derived, see maintenance.Service
	ImageURL                 *string       `gorm:"column:image_url;size:1024" json:"imageUrl"`
	CreatedAt                time.Time     `json:"createdAt"`
	UpdatedAt                time.Time     `json:"updatedAt"`

	// Associations
	Records []MaintenanceRecord `gorm:"foreignKey:MachineID;constraint:OnDelete:CASCADE" json:"-"`
}
