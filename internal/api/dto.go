package api

import (
	"maintenance-tracker-backend/internal/maintenance"
	"maintenance-tracker-backend/internal/model"
	"maintenance-tracker-backend/internal/parse"
)

type createMachineRequest struct {
	Name                     string  `json:"name" binding:"required,max=256"`
	Location                 string  `json:"location" binding:"required,max=256"`
	Status                   string  `json:"status" binding:"omitempty,oneof=Running Stopped Maintenance"`
	MaintenanceFrequencyDays int     `json:"maintenanceFrequencyDays" binding:"required,gt=0,max=36500"`
	LastMaintenanceDate      *string `json:"lastMaintenanceDate" binding:"omitempty,datetime=2006-01-02"`
	NextDueDate              *string `json:"nextDueDate" binding:"omitempty,datetime=2006-01-02"`
	ImageURL                 *string `json:"imageUrl" binding:"omitempty,max=1024"`
}

func (r *createMachineRequest) input() (maintenance.MachineInput, error) {
	in := maintenance.MachineInput{
		Name:                     r.Name,
		Location:                 r.Location,
		Status:                   model.MachineStatus(r.Status),
		MaintenanceFrequencyDays: r.MaintenanceFrequencyDays,
		ImageURL:                 r.ImageURL,
	}
	var err error
	if in.LastMaintenanceDate, err = parse.OptionalDate("lastMaintenanceDate", r.LastMaintenanceDate); err != nil {
		return in, err
	}
	if in.NextDueDate, err = parse.OptionalDate("nextDueDate", r.NextDueDate); err != nil {
		return in, err
	}
	return in, nil
}

// updateMachineRequest is a partial update. Absent fields stay unchanged.
type updateMachineRequest struct {
	Name                     *string `json:"name" binding:"omitempty,max=256"`
	Location                 *string `json:"location" binding:"omitempty,max=256"`
	Status                   *string `json:"status" binding:"omitempty,oneof=Running Stopped Maintenance"`
	MaintenanceFrequencyDays *int    `json:"maintenanceFrequencyDays"`
	LastMaintenanceDate      *string `json:"lastMaintenanceDate" binding:"omitempty,datetime=2006-01-02"`
	NextDueDate              *string `json:"nextDueDate"`
	ImageURL                 *string `json:"imageUrl" binding:"omitempty,max=1024"`
}

func (r *updateMachineRequest) patch() (maintenance.MachinePatch, error) {
	p := maintenance.MachinePatch{
		Name:                     r.Name,
		Location:                 r.Location,
		MaintenanceFrequencyDays: r.MaintenanceFrequencyDays,
		ImageURL:                 r.ImageURL,
	}
	if r.Status != nil {
		status := model.MachineStatus(*r.Status)
		p.Status = &status
	}
	var err error
	if p.LastMaintenanceDate, err = parse.OptionalDate("lastMaintenanceDate", r.LastMaintenanceDate); err != nil {
		return p, err
	}
	if r.NextDueDate != nil {
		// Rejected by MachinePatch.Validate whatever the value.
		p.NextDueDate = &model.Date{}
	}
	return p, nil
}

type scheduleRequest struct {
	MachineID     int64  `json:"machineId" binding:"required,gt=0"`
	ScheduledDate string `json:"scheduledDate" binding:"required,datetime=2006-01-02"`
}

func (r *scheduleRequest) input() (maintenance.ScheduleInput, error) {
	d, err := parse.Date("scheduledDate", r.ScheduledDate)
	if err != nil {
		return maintenance.ScheduleInput{}, err
	}
	return maintenance.ScheduleInput{MachineID: r.MachineID, ScheduledDate: d}, nil
}

type completeRequest struct {
	TechnicianName string  `json:"technicianName" binding:"required,max=256"`
	Remarks        *string `json:"remarks"`
}

func (r *completeRequest) input() maintenance.CompletionInput {
	return maintenance.CompletionInput{TechnicianName: r.TechnicianName, Remarks: r.Remarks}
}
