package handler

import (
	"finance-tracker/internal/models"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubscriptionHandler serves /subscriptions.
type SubscriptionHandler struct {
	Subscriptions *service.SubscriptionService
}

func NewSubscriptionHandler(subs *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{Subscriptions: subs}
}

type subscriptionReq struct {
	ServiceName     string                       `json:"service_name" binding:"required,max=100"`
	Amount          decimal.Decimal              `json:"amount"`
	Frequency       models.SubscriptionFrequency `json:"frequency"`
	NextPaymentDate string                       `json:"next_payment_date" binding:"required"`
	Status          models.SubscriptionStatus    `json:"status"`
	Icon            string                       `json:"icon" binding:"max=255"`
	Color           string                       `json:"color" binding:"max=50"`
	AccountID       *uuid.UUID                   `json:"account_id"`
	CurrencyID      *uuid.UUID                   `json:"currency_id"`
}

func bindSubscription(c *gin.Context) (service.SubscriptionInput, bool) {
	var req subscriptionReq
	if !bindJSON(c, &req) {
		return service.SubscriptionInput{}, false
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		badRequest(c, err.Error())
		return service.SubscriptionInput{}, false
	}
	next, err := util.ParseDate(req.NextPaymentDate)
	if err != nil {
		badRequest(c, "next_payment_date: "+err.Error())
		return service.SubscriptionInput{}, false
	}
	return service.SubscriptionInput{
		ServiceName:     req.ServiceName,
		Amount:          req.Amount,
		Frequency:       req.Frequency,
		NextPaymentDate: next,
		Status:          req.Status,
		Icon:            req.Icon,
		Color:           req.Color,
		AccountID:       req.AccountID,
		CurrencyID:      req.CurrencyID,
	}, true
}

func (h *SubscriptionHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	subs, err := h.Subscriptions.List(c.Request.Context(), user.ID)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": subs, "total": len(subs)})
}

func (h *SubscriptionHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	sub, err := h.Subscriptions.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"subscription": sub})
}

func (h *SubscriptionHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	in, ok := bindSubscription(c)
	if !ok {
		return
	}
	sub, err := h.Subscriptions.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"subscription": sub})
}

func (h *SubscriptionHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := bindSubscription(c)
	if !ok {
		return
	}
	sub, err := h.Subscriptions.Update(c.Request.Context(), user.ID, id, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"subscription": sub})
}

func (h *SubscriptionHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Subscriptions.Delete(c.Request.Context(), user.ID, id); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

// Renew: POST /subscriptions/:id/renew moves the payment date one period on.
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	sub, err := h.Subscriptions.Renew(c.Request.Context(), user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"subscription": sub})
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	sub, err := h.Subscriptions.Cancel(c.Request.Context(), user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"subscription": sub})
}
