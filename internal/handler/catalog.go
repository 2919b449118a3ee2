package handler

import (
	"finance-tracker/internal/models"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogHandler serves currencies, categories and payment methods.
type CatalogHandler struct {
	Catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog}
}

type currencyReq struct {
	Code   string `json:"code" binding:"required,max=8"`
	Name   string `json:"name" binding:"required,max=64"`
	Symbol string `json:"symbol" binding:"required,max=8"`
}

type categoryReq struct {
	Name  string              `json:"name" binding:"required,max=64"`
	Type  models.CategoryType `json:"type" binding:"required,oneof=income expense"`
	Icon  string              `json:"icon" binding:"max=255"`
	Color string              `json:"color" binding:"max=50"`
}

type paymentMethodReq struct {
	Name string                   `json:"name" binding:"required,max=64"`
	Type models.PaymentMethodType `json:"type"`
}

func (h *CatalogHandler) Currencies(c *gin.Context) {
	list, err := h.Catalog.Currencies(c.Request.Context())
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": list, "total": len(list)})
}

func (h *CatalogHandler) CreateCurrency(c *gin.Context) {
	var req currencyReq
	if !bindJSON(c, &req) {
		return
	}
	cur, err := h.Catalog.CreateCurrency(c.Request.Context(), models.Currency{
		Code: req.Code, Name: req.Name, Symbol: req.Symbol,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"currency": cur})
}

// Categories accepts an optional ?type=income|expense filter.
func (h *CatalogHandler) Categories(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	typ := models.CategoryType(c.Query("type"))
	if typ != "" && !typ.Valid() {
		badRequest(c, "unknown category type")
		return
	}
	list, err := h.Catalog.Categories(c.Request.Context(), user.ID, typ)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": list, "total": len(list)})
}

func (h *CatalogHandler) saveCategory(c *gin.Context, id *uuid.UUID) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req categoryReq
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.Catalog.SaveCategory(c.Request.Context(), user.ID, id, models.Category{
		Name: req.Name, Type: req.Type, Icon: req.Icon, Color: req.Color,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"category": cat})
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	h.saveCategory(c, nil)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h.saveCategory(c, &id)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteCategory(c.Request.Context(), user.ID, id); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

func (h *CatalogHandler) PaymentMethods(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.Catalog.PaymentMethods(c.Request.Context(), user.ID)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": list, "total": len(list)})
}

func (h *CatalogHandler) CreatePaymentMethod(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req paymentMethodReq
	if !bindJSON(c, &req) {
		return
	}
	pm, err := h.Catalog.CreatePaymentMethod(c.Request.Context(), user.ID, models.PaymentMethod{
		Name: req.Name, Type: req.Type,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"payment_method": pm})
}

func (h *CatalogHandler) DeletePaymentMethod(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Catalog.DeletePaymentMethod(c.Request.Context(), user.ID, id); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}
