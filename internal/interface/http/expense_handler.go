package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Pari658/Expense-Management/internal/application"
	"github.com/Pari658/Expense-Management/internal/interface/middleware"
	"github.com/Pari658/Expense-Management/pkg/response"
)

const maxReceiptBytes = 10 << 20

type ExpenseHandler struct {
	Svc    *application.ExpenseService
	Logger *logrus.Logger
}

func NewExpenseHandler(svc *application.ExpenseService, logger *logrus.Logger) *ExpenseHandler {
	return &ExpenseHandler{Svc: svc, Logger: logger}
}

type submitExpenseRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

// Status is validated by the service after the approver check, so an empty
// or unknown value from anyone but the approver is answered with 403.
type decideRequest struct {
	Status string `json:"status"`
}

// Submit POST /api/expenses
func (h *ExpenseHandler) Submit(c *gin.Context) {
	var req submitExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	e, err := h.Svc.Submit(c.Request.Context(), middleware.CurrentUser(c), application.SubmitInput{
		Description: req.Description,
		Amount:      req.Amount,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toExpenseResponse(e), "expense submitted", nil)
}

// ListMine GET /api/expenses
func (h *ExpenseHandler) ListMine(c *gin.Context) {
	list, err := h.Svc.ListMine(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toExpenseResponses(list), "ok", nil)
}

// Approvals GET /api/expenses/approvals
func (h *ExpenseHandler) Approvals(c *gin.Context) {
	list, err := h.Svc.ListPendingApprovals(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toExpenseResponses(list), "ok", nil)
}

// ListCompany GET /api/expenses/all
func (h *ExpenseHandler) ListCompany(c *gin.Context) {
	list, err := h.Svc.ListCompany(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toExpenseResponses(list), "ok", nil)
}

// UpdateStatus PUT /api/expenses/:id/status
func (h *ExpenseHandler) UpdateStatus(c *gin.Context) {
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	e, err := h.Svc.Decide(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toExpenseResponse(e), "expense updated", nil)
}

// UploadReceipt POST /api/expenses/:id/receipt (multipart field "receipt")
func (h *ExpenseHandler) UploadReceipt(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxReceiptBytes)
	fh, err := c.FormFile("receipt")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "receipt file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer f.Close()

	e, err := h.Svc.AttachReceipt(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), application.ReceiptUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toExpenseResponse(e), "receipt attached", nil)
}
