package handler

import (
	"finance-tracker/internal/models"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtHandler serves /debts.
type DebtHandler struct {
	Debts *service.DebtService
}

func NewDebtHandler(debts *service.DebtService) *DebtHandler {
	return &DebtHandler{Debts: debts}
}

type debtReq struct {
	Name              string            `json:"name" binding:"required,max=100"`
	Description       string            `json:"description" binding:"max=255"`
	Type              models.DebtType   `json:"type"`
	Status            models.DebtStatus `json:"status"`
	Amount            decimal.Decimal   `json:"amount"`
	InterestRate      decimal.Decimal   `json:"interest_rate"`
	DueDate           string            `json:"due_date"`
	CurrencyID        *uuid.UUID        `json:"currency_id"`
	AccountID         *uuid.UUID        `json:"account_id"`
	PaymentMethodID   *uuid.UUID        `json:"payment_method_id"`
	IsInstallment     bool              `json:"is_installment"`
	TotalInstallments int               `json:"total_installments" binding:"min=0"`
}

func bindDebt(c *gin.Context) (service.DebtInput, bool) {
	var req debtReq
	if !bindJSON(c, &req) {
		return service.DebtInput{}, false
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		badRequest(c, err.Error())
		return service.DebtInput{}, false
	}
	due, ok := optionalDate(c, "due_date", req.DueDate)
	if !ok {
		return service.DebtInput{}, false
	}
	return service.DebtInput{
		Name:              req.Name,
		Description:       req.Description,
		Type:              req.Type,
		Status:            req.Status,
		Amount:            req.Amount,
		InterestRate:      req.InterestRate,
		DueDate:           due,
		CurrencyID:        req.CurrencyID,
		AccountID:         req.AccountID,
		PaymentMethodID:   req.PaymentMethodID,
		IsInstallment:     req.IsInstallment,
		TotalInstallments: req.TotalInstallments,
	}, true
}

// List accepts an optional ?status= filter.
func (h *DebtHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	status := models.DebtStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		badRequest(c, "unknown debt status")
		return
	}
	debts, err := h.Debts.List(c.Request.Context(), user.ID, status)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": debts, "total": len(debts)})
}

// Get returns the debt with its payments.
func (h *DebtHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	detail, err := h.Debts.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"debt": detail})
}

func (h *DebtHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	in, ok := bindDebt(c)
	if !ok {
		return
	}
	d, err := h.Debts.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"debt": d})
}

func (h *DebtHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := bindDebt(c)
	if !ok {
		return
	}
	d, err := h.Debts.Update(c.Request.Context(), user.ID, id, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"debt": d})
}

func (h *DebtHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Debts.Delete(c.Request.Context(), user.ID, id); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

type paymentReq struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"max=255"`
	Date        string          `json:"date"`
}

// AddPayment: POST /debts/:id/payments books an expense linked to the debt.
func (h *DebtHandler) AddPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req paymentReq
	if !bindJSON(c, &req) {
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, ok := optionalDate(c, "date", req.Date)
	if !ok {
		return
	}
	d, t, err := h.Debts.AddPayment(c.Request.Context(), user.ID, id, service.PaymentInput{
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"debt": d, "transaction": t})
}
