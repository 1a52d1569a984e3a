package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicdesk/clinic-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// OK sends a success response
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Status: "success", Data: data})
}

// Created sends a success response for newly created resources
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Status: "success", Data: data})
}

// Error sends an error response with a status derived from the error code
func Error(c *gin.Context, err error) {
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	c.JSON(status, Response{Status: "error", Message: message})
}

// BadRequest sends a 400 with the given message
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Status: "error", Message: message})
}

func statusFor(err error) int {
	switch errors.Code(err) {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrBadRequest, errors.ErrInvalidInterval:
		return http.StatusBadRequest
	case errors.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
