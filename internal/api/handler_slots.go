package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"laundry-booking-backend/internal/metrics"
	"laundry-booking-backend/internal/model"
)

// GetSlots handles GET /api/slots. When auto-generation is enabled in the
// scheduling policy, today's timeline is generated lazily on this read;
// there is no background job.
func (h *Handler) GetSlots(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}

	now := h.now()
	from := now
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp, use RFC3339"})
			return
		}
		from = t
	}

	settings, err := h.store.Settings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if settings.AutoGenerate {
		if err := h.store.GenerateDailySlots(c.Request.Context(), now); err != nil {
			writeError(c, err)
			return
		}
		metrics.ObserveGeneration()
	}

	slots, err := h.store.ListAvailableSlots(c.Request.Context(), from)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

type createSlotRequest struct {
	MachineID int64  `json:"machine_id" binding:"required"`
	Date      string `json:"date" binding:"required"`  // YYYY-MM-DD
	Start     string `json:"start" binding:"required"` // HH:MM
	End       string `json:"end" binding:"required"`   // HH:MM
}

// CreateSlot handles POST /api/slots, the administrative escape hatch for
// slots outside the generated timeline. Unlike generated slots these are
// not checked against the packing rule and may overlap.
func (h *Handler) CreateSlot(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var req createSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	day, err := time.ParseInLocation("2006-01-02", req.Date, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return
	}
	start, err := time.Parse("15:04", req.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start time, use HH:MM"})
		return
	}
	end, err := time.Parse("15:04", req.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end time, use HH:MM"})
		return
	}

	slot := model.Slot{
		MachineID: req.MachineID,
		StartAt:   day.Add(time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute),
		EndAt:     day.Add(time.Duration(end.Hour())*time.Hour + time.Duration(end.Minute())*time.Minute),
	}
	if err := h.store.CreateSlot(c.Request.Context(), &slot); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}
