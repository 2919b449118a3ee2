package util

import (
	"errors"
	"net/http"

	"finance-tracker/internal/log"
	"finance-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// Response is the data part of a success envelope.
type Response map[string]interface{}

// Business codes carried next to the HTTP status.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeServerErr    = 50001
	CodeIntegrity    = 50002
)

// Success writes a 200 envelope.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes an error envelope.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// Fail maps a service error onto the error envelope. Messages of client
// errors are passed through; server errors are logged and hidden.
func Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		Error(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		Error(c, http.StatusBadRequest, CodeInvalidParam, err.Error())
	case errors.Is(err, service.ErrConflict):
		Error(c, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, service.ErrIntegrity):
		log.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "integrity failure",
			log.FieldError, err.Error())
		Error(c, http.StatusInternalServerError, CodeIntegrity, "data integrity error")
	default:
		log.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			log.FieldError, err.Error())
		Error(c, http.StatusInternalServerError, CodeServerErr, "internal server error")
	}
}
