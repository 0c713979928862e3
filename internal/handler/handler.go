// Package handler serves the JSON API over gin.
package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dayflow/internal/attendance"
	"dayflow/internal/auth"
	"dayflow/internal/leave"
	"dayflow/internal/metrics"
	"dayflow/internal/payroll"
	"dayflow/internal/presence"
	"dayflow/internal/profile"
	"dayflow/internal/queue"
)

const serverError = "Server Error"

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// Deps are the collaborators a Handler serves. Events, Board, Metrics and
// Checks are optional.
type Deps struct {
	Attendance *attendance.Service
	Leaves     *leave.Service
	Payroll    *payroll.Service
	Profiles   *profile.Service

	Events  queue.Queue
	Board   presence.Board
	Metrics *metrics.Metrics
	Checks  map[string]HealthCheck
}

type Handler struct {
	attendance *attendance.Service
	leaves     *leave.Service
	payroll    *payroll.Service
	profiles   *profile.Service

	events  queue.Queue
	board   presence.Board
	metrics *metrics.Metrics
	checks  map[string]HealthCheck
}

func New(d Deps) *Handler {
	return &Handler{
		attendance: d.Attendance,
		leaves:     d.Leaves,
		payroll:    d.Payroll,
		profiles:   d.Profiles,
		events:     d.Events,
		board:      d.Board,
		metrics:    d.Metrics,
		checks:     d.Checks,
	}
}

// ---------- Helpers ----------

// errorMapping pairs a domain error with the response it produces.
type errorMapping struct {
	err    error
	status int
	msg    string
}

// fail writes the first mapping err matches, or a logged 500.
func fail(c *gin.Context, err error, mappings ...errorMapping) {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"msg": m.msg})
			return
		}
	}
	log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"msg": serverError})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"msg": msg})
}

// ---------- Health ----------

// Healthz runs every check with a short deadline. Any failing check turns
// the response into a 503.
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for name, check := range h.checks {
		ok := check(ctx)
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

func owner(c *gin.Context) string {
	return auth.OwnerFrom(c)
}
