package handler

import (
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetHandler serves /budgets. Progress endpoints take ?year=&month= and
// default to the current month.
type BudgetHandler struct {
	Budgets *service.BudgetService
}

func NewBudgetHandler(budgets *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{Budgets: budgets}
}

type budgetReq struct {
	Name       string          `json:"name" binding:"required,max=100"`
	CategoryID *uuid.UUID      `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Color      string          `json:"color" binding:"max=50"`
}

func bindBudget(c *gin.Context) (service.BudgetInput, bool) {
	var req budgetReq
	if !bindJSON(c, &req) {
		return service.BudgetInput{}, false
	}
	if err := util.ValidateNonNegative(req.Amount); err != nil {
		badRequest(c, err.Error())
		return service.BudgetInput{}, false
	}
	return service.BudgetInput{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Color:      req.Color,
	}, true
}

func (h *BudgetHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	budgets, err := h.Budgets.List(c.Request.Context(), user.ID)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": budgets, "total": len(budgets)})
}

func (h *BudgetHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.Budgets.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"budget": b})
}

func (h *BudgetHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	in, ok := bindBudget(c)
	if !ok {
		return
	}
	b, err := h.Budgets.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"budget": b})
}

func (h *BudgetHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := bindBudget(c)
	if !ok {
		return
	}
	b, err := h.Budgets.Update(c.Request.Context(), user.ID, id, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"budget": b})
}

func (h *BudgetHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Budgets.Delete(c.Request.Context(), user.ID, id); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

// Progress of one budget. A budget without a category has none and
// yields a null progress.
func (h *BudgetHandler) Progress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	w, ok := windowQuery(c)
	if !ok {
		return
	}
	p, err := h.Budgets.Progress(c.Request.Context(), user.ID, id, w)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"progress": p})
}

func (h *BudgetHandler) AllProgress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	w, ok := windowQuery(c)
	if !ok {
		return
	}
	items, err := h.Budgets.AllProgress(c.Request.Context(), user.ID, w)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": items, "year": w.Year, "month": int(w.Month)})
}

func (h *BudgetHandler) Summary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	w, ok := windowQuery(c)
	if !ok {
		return
	}
	s, err := h.Budgets.Summary(c.Request.Context(), user.ID, w)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"summary": s})
}
