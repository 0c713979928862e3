package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dayflow/internal/leave"
)

var leaveErrors = []errorMapping{
	{leave.ErrMissingFields, http.StatusBadRequest, "All fields are required"},
	{leave.ErrUnknownType, http.StatusBadRequest, "Invalid leave type"},
	{leave.ErrInvalidDates, http.StatusBadRequest, "Invalid leave dates"},
	{leave.ErrNotFound, http.StatusNotFound, "Leave not found"},
	{leave.ErrNotOwner, http.StatusUnauthorized, "Not authorized"},
}

// ---------- Leaves ----------

func (h *Handler) ApplyLeave(c *gin.Context) {
	var in leave.ApplyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "All fields are required")
		return
	}
	req, err := h.leaves.Apply(c.Request.Context(), owner(c), in)
	if err != nil {
		fail(c, err, leaveErrors...)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) ListLeaves(c *gin.Context) {
	reqs, err := h.leaves.List(c.Request.Context(), owner(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (h *Handler) GetLeave(c *gin.Context) {
	req, err := h.leaves.Get(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		fail(c, err, leaveErrors...)
		return
	}
	c.JSON(http.StatusOK, req)
}
