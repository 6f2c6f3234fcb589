package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"laundry-booking-backend/internal/model"
)

// GetMachines handles GET /api/machines.
func (h *Handler) GetMachines(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}

	machines, err := h.store.Machines(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

type createMachineRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

// CreateMachine handles POST /api/machines (admin only).
func (h *Handler) CreateMachine(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var req createMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	machine := model.Machine{Name: req.Name, Location: req.Location}
	if err := h.store.CreateMachine(c.Request.Context(), &machine); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, machine)
}

// DeleteMachine handles DELETE /api/machines/:id (admin only). Future
// bookings on the machine are cancelled and its future slots removed in
// the same transaction; past data is kept as history.
func (h *Handler) DeleteMachine(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteMachine(c.Request.Context(), id, h.now()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
