package maintenance

import (
	"math"

	"maintenance-tracker-backend/internal/model"
)

// DefaultUpcomingHorizonDays is the width of the "next N days" window.
const DefaultUpcomingHorizonDays = 7

// Classification is the time-relative view of a record. It is derived on
// read and never stored.
type Classification string

const (
	Completed Classification = "Completed"
	Overdue   Classification = "Overdue"
	Upcoming  Classification = "Upcoming"
	Scheduled Classification = "Scheduled"
)

// Classify places a record in exactly one bucket. A pending record due today
// is Upcoming.
func Classify(r *model.MaintenanceRecord, today model.Date, horizonDays int) Classification {
	if r.Status == model.RecordCompleted {
		return Completed
	}
	switch {
	case r.ScheduledDate.Before(today):
		return Overdue
	case r.ScheduledDate.Before(today.AddDays(horizonDays)):
		return Upcoming
	default:
		return Scheduled
	}
}

// HealthScore is the rounded percentage of completed records, or 100 for a
// machine without any.
func HealthScore(completed, total int64) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// NextDue returns the day maintenance falls due again after base.
func NextDue(base model.Date, frequencyDays int) model.Date {
	return base.AddDays(frequencyDays)
}
