package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dayflow/internal/attendance"
	"dayflow/internal/queue"
)

var attendanceErrors = []errorMapping{
	{attendance.ErrAlreadyClockedIn, http.StatusBadRequest, "Already clocked in for today"},
	{attendance.ErrNotClockedIn, http.StatusBadRequest, "Have not clocked in today"},
}

// ---------- Attendance ----------

func (h *Handler) ClockIn(c *gin.Context) {
	rec, err := h.attendance.ClockIn(c.Request.Context(), owner(c))
	h.countTransition(queue.TypeClockIn, err)
	if err != nil {
		fail(c, err, attendanceErrors...)
		return
	}
	h.publish(c.Request.Context(), queue.TypeClockIn, rec)
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) ClockOut(c *gin.Context) {
	rec, err := h.attendance.ClockOut(c.Request.Context(), owner(c))
	h.countTransition(queue.TypeClockOut, err)
	if err != nil {
		fail(c, err, attendanceErrors...)
		return
	}
	h.publish(c.Request.Context(), queue.TypeClockOut, rec)
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) AttendanceStatus(c *gin.Context) {
	st, err := h.attendance.Status(c.Request.Context(), owner(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// AttendanceHistory returns the caller's recent days. The window is fixed.
func (h *Handler) AttendanceHistory(c *gin.Context) {
	records, err := h.attendance.History(c.Request.Context(), owner(c), attendance.DefaultHistoryLimit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Present lists who is clocked in today according to the presence board.
func (h *Handler) Present(c *gin.Context) {
	day := h.attendance.Today()
	owners := []string{}
	if h.board != nil {
		list, err := h.board.List(c.Request.Context(), day)
		if err != nil {
			fail(c, err)
			return
		}
		owners = list
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "owners": owners})
}

// publish emits the event after the mutation has committed. Failures are
// logged only; the board catches up on the next event.
func (h *Handler) publish(ctx context.Context, typ string, rec attendance.Record) {
	if h.events == nil {
		return
	}
	at := rec.LoginTime
	if typ == queue.TypeClockOut && rec.LogoutTime != nil {
		at = *rec.LogoutTime
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	evt := queue.Event{Type: typ, Owner: rec.Owner, Day: rec.Day, At: at}
	if err := h.events.Publish(ctx, evt); err != nil {
		log.Printf("queue publish failed: %v", err)
	}
}

func (h *Handler) countTransition(action string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		outcome = "already_clocked_in"
	case errors.Is(err, attendance.ErrNotClockedIn):
		outcome = "not_clocked_in"
	default:
		outcome = "error"
	}
	h.metrics.Attendance(action, outcome)
}
