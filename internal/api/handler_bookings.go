package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"laundry-booking-backend/internal/metrics"
	"laundry-booking-backend/internal/store"
)

type bookRequest struct {
	SlotID int64 `json:"slot_id" binding:"required"`
}

// PostBooking handles POST /api/bookings.
func (h *Handler) PostBooking(c *gin.Context) {
	a, ok := requireActor(c)
	if !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	reservation, err := h.store.Book(c.Request.Context(), a.UserID, req.SlotID, h.now())
	if err != nil {
		metrics.ObserveBooking(bookingOutcome(err))
		writeError(c, err)
		return
	}

	metrics.ObserveBooking("success")
	c.JSON(http.StatusCreated, reservation)
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, store.ErrSlotTaken):
		return "slot_taken"
	case errors.Is(err, store.ErrWeeklyLimitReached), errors.Is(err, store.ErrMonthlyLimitReached):
		return "limit_reached"
	case errors.Is(err, store.ErrSlotNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// GetBookings handles GET /api/bookings: the acting user's reservations,
// most recent slot first.
func (h *Handler) GetBookings(c *gin.Context) {
	a, ok := requireActor(c)
	if !ok {
		return
	}

	bookings, err := h.store.UserBookings(c.Request.Context(), a.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// CancelBooking handles POST /api/bookings/:id/cancel. Owners cancel their
// own bookings; operators and admins may cancel anyone's. When the
// cancellation frees a future slot, the machine's subscribers are
// notified.
func (h *Handler) CancelBooking(c *gin.Context) {
	a, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	machineID, err := h.store.Cancel(c.Request.Context(), id, a)
	if err != nil {
		writeError(c, err)
		return
	}

	if machineID != 0 && h.notifier != nil {
		h.notifier.Dispatch(machineID)
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// ValidateBooking handles POST /api/bookings/:id/validate (operator or
// admin only). A cancelled booking cannot be validated.
func (h *Handler) ValidateBooking(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.store.Validate(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "validated"})
}

// GetReceipt handles GET /api/bookings/:id/receipt. Users may only view
// their own receipts; staff may view any.
func (h *Handler) GetReceipt(c *gin.Context) {
	a, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	receipt, err := h.store.Receipt(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !a.Staff() && receipt.UserID != a.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		return
	}
	c.JSON(http.StatusOK, receipt)
}
