package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"laundry-booking-backend/internal/store"
)

// Notifier queues a freed-slot notification for a machine.
type Notifier interface {
	Dispatch(machineID int64)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	webpush  *webpush.Options
	notifier Notifier
	loc      *time.Location
}

// NewHandler creates a new API handler. notifier may be nil when web push
// is not configured.
func NewHandler(s store.Store, webpushOptions *webpush.Options, notifier Notifier, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		store:    s,
		webpush:  webpushOptions,
		notifier: notifier,
		loc:      loc,
	}
}

func (h *Handler) now() time.Time {
	return time.Now().In(h.loc)
}

// actor extracts the acting user from the headers set by the upstream auth
// proxy. The service itself performs no authentication.
func actor(c *gin.Context) (store.Actor, bool) {
	uid, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
	if err != nil || uid <= 0 {
		return store.Actor{}, false
	}

	role := c.GetHeader("X-User-Role")
	switch role {
	case store.RoleOperator, store.RoleAdmin:
	default:
		role = store.RoleUser
	}
	return store.Actor{UserID: uid, Role: role}, true
}

// requireActor aborts with 401 when no user identity is present.
func requireActor(c *gin.Context) (store.Actor, bool) {
	a, ok := actor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-User-ID header"})
	}
	return a, ok
}

// requireStaff aborts with 403 unless the actor is an operator or admin.
func requireStaff(c *gin.Context) (store.Actor, bool) {
	a, ok := requireActor(c)
	if !ok {
		return a, false
	}
	if !a.Staff() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operator or admin access required"})
		return a, false
	}
	return a, true
}

// requireAdmin aborts with 403 unless the actor is an admin.
func requireAdmin(c *gin.Context) (store.Actor, bool) {
	a, ok := requireActor(c)
	if !ok {
		return a, false
	}
	if a.Role != store.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return a, false
	}
	return a, true
}

// writeError maps store errors onto HTTP responses. Storage failures are
// logged but never echoed to the client.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrMachineNotFound),
		errors.Is(err, store.ErrSlotNotFound),
		errors.Is(err, store.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrSlotTaken),
		errors.Is(err, store.ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrWeeklyLimitReached),
		errors.Is(err, store.ErrMonthlyLimitReached):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalidPolicy):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
