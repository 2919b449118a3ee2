package handler

import (
	"net/http"
	"time"

	"finance-tracker/internal/finance"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/models"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentUser returns the authenticated user or writes a 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	return user, true
}

// pathID parses the :id path parameter or writes a 400.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := util.ParseUUID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the body or writes a 400.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters: "+err.Error())
		return false
	}
	return true
}

// badRequest writes a 400 with msg.
func badRequest(c *gin.Context, msg string) {
	util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, msg)
}

// windowQuery reads ?year=&month=, defaulting to the current month.
func windowQuery(c *gin.Context) (finance.Window, bool) {
	year, err := util.ParseInt(c.Query("year"), 0)
	if err != nil {
		badRequest(c, err.Error())
		return finance.Window{}, false
	}
	month, err := util.ParseInt(c.Query("month"), 0)
	if err != nil {
		badRequest(c, err.Error())
		return finance.Window{}, false
	}
	w, err := finance.NewWindow(year, month, time.Now())
	if err != nil {
		badRequest(c, err.Error())
		return finance.Window{}, false
	}
	return w, true
}

// optionalDate parses a request date field or writes a 400.
func optionalDate(c *gin.Context, field, value string) (*time.Time, bool) {
	t, err := util.ParseOptionalDate(value)
	if err != nil {
		badRequest(c, field+": "+err.Error())
		return nil, false
	}
	return t, true
}
