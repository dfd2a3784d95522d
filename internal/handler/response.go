package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/ccsfp/clinic-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewMessageResponse(message string) *Response {
	return &Response{
		Status:  "success",
		Message: message,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError maps a service error to its HTTP status. Internal details are
// never leaked; unknown errors surface as a generic internal failure.
func RespondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	message := "internal server error"
	if apperrors.Code(err) != apperrors.ErrInternal {
		message = err.Error()
	}
	c.JSON(status, NewErrorResponse(message))
}
