package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dayflow/internal/payroll"
)

const payrollInputMsg = "Month, year, and basic salary are required"

var payrollErrors = []errorMapping{
	{payroll.ErrInvalidInput, http.StatusBadRequest, payrollInputMsg},
	{payroll.ErrAlreadyGenerated, http.StatusBadRequest, "Payroll already generated for this month"},
	{payroll.ErrNotFound, http.StatusNotFound, "Payroll not found"},
	{payroll.ErrNotOwner, http.StatusUnauthorized, "Not authorized"},
}

// ---------- Payroll ----------

func (h *Handler) GeneratePayroll(c *gin.Context) {
	var in payroll.GenerateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, payrollInputMsg)
		return
	}
	slip, err := h.payroll.Generate(c.Request.Context(), owner(c), in)
	if err != nil {
		fail(c, err, payrollErrors...)
		return
	}
	c.JSON(http.StatusOK, slip)
}

func (h *Handler) ListPayroll(c *gin.Context) {
	slips, err := h.payroll.List(c.Request.Context(), owner(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, slips)
}

func (h *Handler) GetPayroll(c *gin.Context) {
	slip, err := h.payroll.Get(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		fail(c, err, payrollErrors...)
		return
	}
	c.JSON(http.StatusOK, slip)
}
