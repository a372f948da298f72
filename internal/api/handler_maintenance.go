package api

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"maintenance-tracker-backend/internal/parse"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ListMaintenance handles GET /api/maintenance?machineId=&status=&range=.
func (h *Handler) ListMaintenance(c *gin.Context) {
	q, err := parse.RecordQuery(c.Query("machineId"), c.Query("status"), c.Query("range"))
	if err != nil {
		h.fail(c, err)
		return
	}

	records, err := h.svc.ListRecords(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetMaintenance handles GET /api/maintenance/:id.
func (h *Handler) GetMaintenance(c *gin.Context) {
	id, err := parse.ID("id", c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	record, err := h.svc.GetRecord(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ScheduleMaintenance handles POST /api/maintenance.
func (h *Handler) ScheduleMaintenance(c *gin.Context) {
	var req scheduleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(c, err)
		return
	}

	record, err := h.svc.Schedule(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// CompleteMaintenance handles POST /api/maintenance/:id/complete.
func (h *Handler) CompleteMaintenance(c *gin.Context) {
	id, err := parse.ID("id", c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	var req completeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	record, err := h.svc.Complete(c.Request.Context(), id, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ExportMaintenance handles GET /api/maintenance/export. It accepts the same
// filters as ListMaintenance and answers with an xlsx download.
func (h *Handler) ExportMaintenance(c *gin.Context) {
	q, err := parse.RecordQuery(c.Query("machineId"), c.Query("status"), c.Query("range"))
	if err != nil {
		h.fail(c, err)
		return
	}

	buf, filename, err := h.svc.ExportWorkbook(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// MaintenanceCalendar handles GET /api/maintenance/calendar.ics, the pending
// schedule as an iCalendar feed.
func (h *Handler) MaintenanceCalendar(c *gin.Context) {
	machineID, err := parse.OptionalID("machineId", c.Query("machineId"))
	if err != nil {
		h.fail(c, err)
		return
	}

	feed, err := h.svc.Calendar(c.Request.Context(), machineID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, icsContentType, []byte(feed))
}
