// Package export renders maintenance records as a spreadsheet or an
// iCalendar feed.
package export

import (
	"bytes"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"

	"maintenance-tracker-backend/internal/model"
)

const (
	SheetName = "Maintenance"
	productID = "-//maintenance-tracker//maintd//EN"
)

var header = []any{"ID", "Machine", "Scheduled", "Completed", "Status", "Technician", "Remarks"}

var columnWidths = []struct {
	from, to string
	width    float64
}{
	{"A", "A", 8},
	{"B", "B", 24},
	{"C", "E", 14},
	{"F", "F", 20},
	{"G", "G", 40},
}

// Row is one maintenance record flattened for export. Status is the
// classification shown to users, e.g. Overdue.
type Row struct {
	ID            int64
	Machine       string
	ScheduledDate model.Date
	CompletedDate *model.Date
	Status        string
	Technician    string
	Remarks       string
}

// Workbook writes rows to a single-sheet xlsx file.
func Workbook(rows []Row) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for _, w := range columnWidths {
		if err := f.SetColWidth(SheetName, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("failed to set width of columns %s-%s: %w", w.from, w.to, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "G1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		completed := ""
		if r.CompletedDate != nil {
			completed = r.CompletedDate.String()
		}
		values := []any{r.ID, r.Machine, r.ScheduledDate.String(), completed, r.Status, r.Technician, r.Remarks}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// Calendar renders rows as all-day events on their scheduled day.
func Calendar(rows []Row, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, r := range rows {
		event := cal.AddEvent(EventUID(r.ID))
		event.SetDtStampTime(stamp)
		event.SetSummary(fmt.Sprintf("Maintenance: %s", r.Machine))
		event.SetDescription(fmt.Sprintf("Status: %s", r.Status))
		event.SetAllDayStartAt(r.ScheduledDate.Time())
		event.SetAllDayEndAt(r.ScheduledDate.AddDays(1).Time())
	}
	return cal.Serialize()
}

// EventUID is the stable calendar UID of a record.
func EventUID(recordID int64) string {
	return fmt.Sprintf("maintenance-%d@maintenance-tracker", recordID)
}
