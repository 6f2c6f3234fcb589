package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"laundry-booking-backend/internal/model"
)

// GetSettings handles GET /api/settings (admin only).
func (h *Handler) GetSettings(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	settings, err := h.store.Settings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

type updateSettingsRequest struct {
	StartTime     string `json:"start_time" binding:"required"`
	EndTime       string `json:"end_time" binding:"required"`
	WashDuration  int    `json:"wash_duration" binding:"required"`
	BreakAfter    int    `json:"break_after"`
	BreakDuration int    `json:"break_duration"`
	SlotsPerDay   int    `json:"slots_per_day" binding:"required"`
	WeeklyLimit   int    `json:"weekly_limit"`
	MonthlyLimit  int    `json:"monthly_limit"`
	AutoGenerate  bool   `json:"auto_generate"`
}

// PutSettings handles PUT /api/settings (admin only). The new policy only
// affects slots generated afterwards.
func (h *Handler) PutSettings(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	settings := model.Settings{
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		WashDuration:  req.WashDuration,
		BreakAfter:    req.BreakAfter,
		BreakDuration: req.BreakDuration,
		SlotsPerDay:   req.SlotsPerDay,
		WeeklyLimit:   req.WeeklyLimit,
		MonthlyLimit:  req.MonthlyLimit,
		AutoGenerate:  req.AutoGenerate,
	}
	if err := h.store.UpdateSettings(c.Request.Context(), &settings); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
