package handler

import (
	"finance-tracker/internal/models"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

func userView(user *models.User) gin.H {
	return gin.H{
		"id":                  user.ID,
		"username":            user.Username,
		"full_name":           user.FullName,
		"default_currency_id": user.DefaultCurrencyID,
		"created_at":          user.CreatedAt,
	}
}

// GetMe returns the current user.
func GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	util.Success(c, util.Response{"user": userView(user)})
}

// SummaryHandler serves the dashboard aggregates of the current user.
type SummaryHandler struct {
	summary *service.SummaryService
}

func NewSummaryHandler(summary *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summary: summary}
}

// Summary: GET /me/summary?year=&month=
func (h *SummaryHandler) Summary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	w, ok := windowQuery(c)
	if !ok {
		return
	}
	s, err := h.summary.User(c.Request.Context(), user.ID, w)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"summary": s})
}

// ExpenseSummary: GET /me/expense-summary?year=&days=
func (h *SummaryHandler) ExpenseSummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	year, err := util.ParseInt(c.Query("year"), 0)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	days, err := util.ParseInt(c.Query("days"), 7)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	s, err := h.summary.Expenses(c.Request.Context(), user.ID, year, days)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"monthly_summary": s.Monthly,
		"daily_summary":   s.Daily,
	})
}
