package response

import (
	"net/http"

	"sikseb/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// ListEnvelope is the body of list endpoints.
type ListEnvelope[T any] struct {
	Data []T             `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

// EntityEnvelope is the body of single-entity endpoints.
type EntityEnvelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// MessageEnvelope is used for bodies that only carry a message, including errors.
type MessageEnvelope struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ========== writers used by the stub backend ==========

func List[T any](c *gin.Context, data []T, meta pagination.Meta) {
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, ListEnvelope[T]{Data: data, Meta: meta})
}

func Entity[T any](c *gin.Context, status int, data T, message string) {
	c.JSON(status, EntityEnvelope[T]{Data: data, Message: message})
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageEnvelope{Message: message})
}

func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, MessageEnvelope{Message: message})
}

func ValidationFailed(c *gin.Context, message string, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, MessageEnvelope{Message: message, Errors: fields})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
