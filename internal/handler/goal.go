package handler

import (
	"finance-tracker/internal/models"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalHandler serves /goals.
type GoalHandler struct {
	Goals *service.GoalService
}

func NewGoalHandler(goals *service.GoalService) *GoalHandler {
	return &GoalHandler{Goals: goals}
}

type goalReq struct {
	Name          string            `json:"name" binding:"required,max=100"`
	Type          models.GoalType   `json:"type"`
	Status        models.GoalStatus `json:"status"`
	TargetAmount  decimal.Decimal   `json:"target_amount"`
	CurrentAmount decimal.Decimal   `json:"current_amount"`
	Deadline      string            `json:"deadline"`
	CurrencyID    *uuid.UUID        `json:"currency_id"`
}

func bindGoal(c *gin.Context) (service.GoalInput, bool) {
	var req goalReq
	if !bindJSON(c, &req) {
		return service.GoalInput{}, false
	}
	if err := util.ValidateAmount(req.TargetAmount); err != nil {
		badRequest(c, "target_amount: "+err.Error())
		return service.GoalInput{}, false
	}
	deadline, ok := optionalDate(c, "deadline", req.Deadline)
	if !ok {
		return service.GoalInput{}, false
	}
	return service.GoalInput{
		Name:          req.Name,
		Type:          req.Type,
		Status:        req.Status,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      deadline,
		CurrencyID:    req.CurrencyID,
	}, true
}

func (h *GoalHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	goals, err := h.Goals.List(c.Request.Context(), user.ID)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": goals, "total": len(goals)})
}

func (h *GoalHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	g, err := h.Goals.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"goal": g})
}

func (h *GoalHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	in, ok := bindGoal(c)
	if !ok {
		return
	}
	g, err := h.Goals.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"goal": g})
}

func (h *GoalHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := bindGoal(c)
	if !ok {
		return
	}
	g, err := h.Goals.Update(c.Request.Context(), user.ID, id, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"goal": g})
}

func (h *GoalHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Goals.Delete(c.Request.Context(), user.ID, id); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

type savingReq struct {
	Amount decimal.Decimal `json:"amount"`
}

// AddSaving: POST /goals/:id/add-saving
func (h *GoalHandler) AddSaving(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req savingReq
	if !bindJSON(c, &req) {
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		badRequest(c, err.Error())
		return
	}
	g, err := h.Goals.AddSaving(c.Request.Context(), user.ID, id, req.Amount)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"goal": g})
}
