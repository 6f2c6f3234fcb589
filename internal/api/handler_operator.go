package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetOperatorQueue handles GET /api/operator/queue: the time-ordered view
// of active bookings followed by cancelled ones, recomputed per request.
func (h *Handler) GetOperatorQueue(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}

	queue, err := h.store.OperatorQueue(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, queue)
}
