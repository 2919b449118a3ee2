package handler

import (
	"errors"

	"finance-tracker/internal/models"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountHandler serves /accounts.
type AccountHandler struct {
	Accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{Accounts: accounts}
}

type accountReq struct {
	Name           string             `json:"name" binding:"required,max=100"`
	Type           models.AccountType `json:"type"`
	CurrencyID     uuid.UUID          `json:"currency_id" binding:"required"`
	Institution    string             `json:"institution" binding:"max=100"`
	Icon           string             `json:"icon" binding:"max=255"`
	Color          string             `json:"color" binding:"max=50"`
	IsDefault      bool               `json:"is_default"`
	OpeningBalance decimal.Decimal    `json:"opening_balance"`
}

func (r accountReq) input() service.AccountInput {
	return service.AccountInput{
		Name:           r.Name,
		Type:           r.Type,
		CurrencyID:     r.CurrencyID,
		Institution:    r.Institution,
		Icon:           r.Icon,
		Color:          r.Color,
		IsDefault:      r.IsDefault,
		OpeningBalance: r.OpeningBalance,
	}
}

func (h *AccountHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	accounts, err := h.Accounts.List(c.Request.Context(), user.ID)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": accounts, "total": len(accounts)})
}

// Types lists the supported account types.
func (h *AccountHandler) Types(c *gin.Context) {
	util.Success(c, util.Response{"items": models.AccountTypes})
}

func (h *AccountHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	detail, err := h.Accounts.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"account": detail})
}

func (h *AccountHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req accountReq
	if !bindJSON(c, &req) {
		return
	}
	if err := util.ValidateNonNegative(req.OpeningBalance); err != nil {
		badRequest(c, "opening_balance: "+err.Error())
		return
	}
	acc, err := h.Accounts.Create(c.Request.Context(), user.ID, req.input())
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"account": acc})
}

// Update changes the descriptive fields; opening_balance is ignored here.
func (h *AccountHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req accountReq
	if !bindJSON(c, &req) {
		return
	}
	acc, err := h.Accounts.Update(c.Request.Context(), user.ID, id, req.input())
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"account": acc})
}

func (h *AccountHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Accounts.Delete(c.Request.Context(), user.ID, id); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

// Recompute rebuilds the stored balance from the ledger.
func (h *AccountHandler) Recompute(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	acc, err := h.Accounts.Recompute(c.Request.Context(), user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"account": acc})
}

// Verify reports whether the stored balance matches the ledger.
func (h *AccountHandler) Verify(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	check, err := h.Accounts.Verify(c.Request.Context(), user.ID, id)
	// a mismatch is a result here, not a failure
	if err != nil && !errors.Is(err, service.ErrIntegrity) {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"account_id": id,
		"stored":     check.Stored,
		"computed":   check.Computed,
		"consistent": check.Consistent(),
	})
}
