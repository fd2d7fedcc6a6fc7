package response

import (
	stderrors "errors"
	"net/http"

	"basapp/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response is the unified JSON envelope
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Fields  []string    `json:"fields,omitempty"`
}

// Success renders a 200 response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    "OK",
		Message: "success",
		Data:    data,
	})
}

// Created renders a 201 response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    "OK",
		Message: "success",
		Data:    data,
	})
}

// Fail renders a service error, falling back to 500 for unknown causes
func Fail(c *gin.Context, err error) {
	var svcErr *errors.Error
	if stderrors.As(err, &svcErr) && svcErr.Code != "" {
		c.JSON(svcErr.Status, Response{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Fields:  svcErr.Fields,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code:    errors.CodeUnknown,
		Message: err.Error(),
	})
}
