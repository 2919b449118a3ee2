package handler

import (
	"finance-tracker/internal/models"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionHandler serves /transactions.
type TransactionHandler struct {
	Transactions    *service.TransactionService
	DefaultPageSize int
	MaxPageSize     int
}

func NewTransactionHandler(txs *service.TransactionService, pageSize, maxPageSize int) *TransactionHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	if maxPageSize < pageSize {
		maxPageSize = pageSize
	}
	return &TransactionHandler{Transactions: txs, DefaultPageSize: pageSize, MaxPageSize: maxPageSize}
}

type transactionReq struct {
	Type                 models.TransactionType `json:"type" binding:"required,oneof=income expense transfer"`
	Amount               decimal.Decimal        `json:"amount"`
	Date                 string                 `json:"date"`
	Description          string                 `json:"description" binding:"max=255"`
	IsActive             *bool                  `json:"is_active"`
	AccountID            *uuid.UUID             `json:"account_id"`
	DestinationAccountID *uuid.UUID             `json:"destination_account_id"`
	CategoryID           *uuid.UUID             `json:"category_id"`
	DebtID               *uuid.UUID             `json:"debt_id"`
	PaymentMethodID      *uuid.UUID             `json:"payment_method_id"`
	CurrencyID           *uuid.UUID             `json:"currency_id"`
}

// bindTransaction reads and checks the body shared by create and update.
func bindTransaction(c *gin.Context) (service.TransactionInput, bool) {
	var req transactionReq
	if !bindJSON(c, &req) {
		return service.TransactionInput{}, false
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		badRequest(c, err.Error())
		return service.TransactionInput{}, false
	}
	date, ok := optionalDate(c, "date", req.Date)
	if !ok {
		return service.TransactionInput{}, false
	}
	return service.TransactionInput{
		Type:                 req.Type,
		Amount:               req.Amount,
		Date:                 date,
		Description:          req.Description,
		IsActive:             req.IsActive,
		AccountID:            req.AccountID,
		DestinationAccountID: req.DestinationAccountID,
		CategoryID:           req.CategoryID,
		DebtID:               req.DebtID,
		PaymentMethodID:      req.PaymentMethodID,
		CurrencyID:           req.CurrencyID,
	}, true
}

// filter reads the list query: type, category_id, category, account_id,
// debt_id, from, to (exclusive), page, page_size.
func (h *TransactionHandler) filter(c *gin.Context) (service.TransactionFilter, bool) {
	f := service.TransactionFilter{
		Type:         models.TransactionType(c.Query("type")),
		CategoryName: c.Query("category"),
	}
	if f.Type != "" && !f.Type.Valid() {
		badRequest(c, "unknown transaction type")
		return f, false
	}
	var err error
	for _, p := range []struct {
		name string
		dst  **uuid.UUID
	}{
		{"category_id", &f.CategoryID},
		{"account_id", &f.AccountID},
		{"debt_id", &f.DebtID},
	} {
		if *p.dst, err = util.ParseOptionalUUID(c.Query(p.name)); err != nil {
			badRequest(c, p.name+": "+err.Error())
			return f, false
		}
	}
	var ok bool
	if f.From, ok = optionalDate(c, "from", c.Query("from")); !ok {
		return f, false
	}
	if f.To, ok = optionalDate(c, "to", c.Query("to")); !ok {
		return f, false
	}
	if f.Page, err = util.ParseInt(c.Query("page"), 1); err != nil {
		badRequest(c, err.Error())
		return f, false
	}
	if f.PageSize, err = util.ParseInt(c.Query("page_size"), h.DefaultPageSize); err != nil {
		badRequest(c, err.Error())
		return f, false
	}
	if f.PageSize > h.MaxPageSize {
		f.PageSize = h.MaxPageSize
	}
	return f, true
}

func (h *TransactionHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	f, ok := h.filter(c)
	if !ok {
		return
	}
	page, err := h.Transactions.List(c.Request.Context(), user.ID, f)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"items":     page.Items,
		"total":     page.Total,
		"page":      page.Page,
		"page_size": page.PageSize,
		"pages":     page.Pages,
	})
}

func (h *TransactionHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.Transactions.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": t})
}

func (h *TransactionHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	in, ok := bindTransaction(c)
	if !ok {
		return
	}
	t, err := h.Transactions.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": t})
}

// Update replaces the entry; balances and debts follow in the same commit.
func (h *TransactionHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := bindTransaction(c)
	if !ok {
		return
	}
	t, err := h.Transactions.Update(c.Request.Context(), user.ID, id, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": t})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Transactions.Delete(c.Request.Context(), user.ID, id); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}
