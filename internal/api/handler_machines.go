package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-tracker-backend/internal/model"
	"maintenance-tracker-backend/internal/parse"
)

// ListMachines handles GET /api/machines with an optional status filter.
func (h *Handler) ListMachines(c *gin.Context) {
	var status *model.MachineStatus
	if raw := c.Query("status"); raw != "" {
		s, err := parse.MachineStatus("status", raw)
		if err != nil {
			h.fail(c, err)
			return
		}
		status = &s
	}

	machines, err := h.svc.ListMachines(c.Request.Context(), status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// GetMachine handles GET /api/machines/:id.
func (h *Handler) GetMachine(c *gin.Context) {
	id, err := parse.ID("id", c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	machine, err := h.svc.GetMachine(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

// CreateMachine handles POST /api/machines.
func (h *Handler) CreateMachine(c *gin.Context) {
	var req createMachineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(c, err)
		return
	}

	machine, err := h.svc.CreateMachine(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, machine)
}

// UpdateMachine handles PUT /api/machines/:id.
func (h *Handler) UpdateMachine(c *gin.Context) {
	id, err := parse.ID("id", c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	var req updateMachineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		h.fail(c, err)
		return
	}

	machine, err := h.svc.UpdateMachine(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

// DeleteMachine handles DELETE /api/machines/:id. The machine's maintenance
// records go with it.
func (h *Handler) DeleteMachine(c *gin.Context) {
	id, err := parse.ID("id", c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.svc.DeleteMachine(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MachineHistory handles GET /api/machines/:id/history.
func (h *Handler) MachineHistory(c *gin.Context) {
	id, err := parse.ID("id", c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	history, err := h.svc.History(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
