package maintenance

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"maintenance-tracker-backend/internal/export"
	"maintenance-tracker-backend/internal/model"
	"maintenance-tracker-backend/internal/store"
)

// ExportWorkbook renders the records matching q as an xlsx workbook and
// suggests a file name for it.
func (s *Service) ExportWorkbook(ctx context.Context, q RecordQuery) (*bytes.Buffer, string, error) {
	views, err := s.ListRecords(ctx, q)
	if err != nil {
		return nil, "", err
	}

	buf, err := export.Workbook(exportRows(views))
	if err != nil {
		s.logger.Error("failed to render workbook", zap.Error(err))
		return nil, "", err
	}
	return buf, fmt.Sprintf("maintenance_%s.xlsx", s.Today()), nil
}

// Calendar renders pending records, optionally of one machine, as an
// iCalendar feed.
func (s *Service) Calendar(ctx context.Context, machineID *int64) (string, error) {
	pending := model.RecordPending
	rows, err := s.store.ListRecords(ctx, store.RecordFilter{MachineID: machineID, Status: &pending, Order: store.ScheduledAsc})
	if err != nil {
		s.logger.Error("failed to list records for calendar", zap.Error(err))
		return "", err
	}
	return export.Calendar(exportRows(s.views(rows)), s.now().UTC()), nil
}

func exportRows(views []RecordView) []export.Row {
	out := make([]export.Row, len(views))
	for i, v := range views {
		out[i] = export.Row{
			ID:            v.ID,
			Machine:       v.MachineName,
			ScheduledDate: v.ScheduledDate,
			CompletedDate: v.CompletedDate,
			Status:        string(v.Classification),
		}
		if v.TechnicianName != nil {
			out[i].Technician = *v.TechnicianName
		}
		if v.Remarks != nil {
			out[i].Remarks = *v.Remarks
		}
	}
	return out
}
