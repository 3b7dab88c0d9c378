// Package response defines the JSON envelope shared by the API
// handlers.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope wraps every API response body. Data is omitted on errors,
// Message on success.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 with the payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Error writes an error envelope with the given HTTP status.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
