// Package parse turns raw path and query parameters into typed values.
// Failures are maintenance.ValidationErrors naming the offending parameter.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"maintenance-tracker-backend/internal/maintenance"
	"maintenance-tracker-backend/internal/model"
)

var idRe = regexp.MustCompile(`^\d+$`)

func invalid(field, msg string) error {
	return &maintenance.ValidationError{Field: field, Message: msg}
}

// ID parses a positive integer id.
func ID(field, raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if !idRe.MatchString(s) {
		return 0, invalid(field, "must be a positive integer")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid(field, "must be a positive integer")
	}
	return id, nil
}

// OptionalID is ID for parameters that may be absent.
func OptionalID(field, raw string) (*int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := ID(field, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Date parses a YYYY-MM-DD day.
func Date(field, raw string) (model.Date, error) {
	d, err := model.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return model.Date{}, invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// OptionalDate is Date for fields that may be empty.
func OptionalDate(field string, raw *string) (*model.Date, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	d, err := Date(field, *raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// MachineStatus matches a machine status case-insensitively.
func MachineStatus(field, raw string) (model.MachineStatus, error) {
	for _, s := range []model.MachineStatus{model.MachineRunning, model.MachineStopped, model.MachineMaintenance} {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, nil
		}
	}
	return "", invalid(field, "must be one of Running, Stopped, Maintenance")
}

// RecordQuery builds a record listing query from the machineId, status and
// range query parameters. status=Overdue is shorthand for range=overdue.
func RecordQuery(machineID, status, rng string) (maintenance.RecordQuery, error) {
	var q maintenance.RecordQuery

	id, err := OptionalID("machineId", machineID)
	if err != nil {
		return q, err
	}
	q.MachineID = id

	switch r := strings.ToLower(strings.TrimSpace(rng)); r {
	case "":
	case string(maintenance.RangeUpcoming), string(maintenance.RangeOverdue):
		q.Range = maintenance.Range(r)
	default:
		return q, invalid("range", "must be one of upcoming, overdue")
	}

	s := strings.TrimSpace(status)
	switch {
	case s == "":
	case strings.EqualFold(s, string(maintenance.Overdue)):
		if q.Range == maintenance.RangeUpcoming {
			return q, invalid("status", "Overdue cannot be combined with range=upcoming")
		}
		q.Range = maintenance.RangeOverdue
	case strings.EqualFold(s, string(model.RecordPending)):
		st := model.RecordPending
		q.Status = &st
	case strings.EqualFold(s, string(model.RecordCompleted)):
		st := model.RecordCompleted
		q.Status = &st
	default:
		return q, invalid("status", "must be one of Pending, Completed, Overdue")
	}

	return q, nil
}
