package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/shared/domain"
)

// ErrorResponse define la estructura estándar para las respuestas de error.
type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// SendError envía una respuesta de error con un formato estandarizado.
func SendError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"error": ErrorResponse{Message: message},
	})
}

func SendBadRequest(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message)
}

func SendNotFound(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message)
}

// RouteNotFound responde con el mismo sobre de error a rutas desconocidas.
func RouteNotFound(c *gin.Context) {
	SendNotFound(c, "route not found: "+c.Request.Method+" "+c.Request.URL.Path)
}

func SendInternalServerError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, message)
}

// SendDomainError traduce la taxonomía de errores a HTTP: entrada inválida
// 400, no encontrado 404 y el resto 500 sin detalles internos.
func SendDomainError(c *gin.Context, err error, log *zap.Logger) {
	var invalid *domain.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": ErrorResponse{Message: invalid.Error(), Field: invalid.Field},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		SendBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		SendNotFound(c, err.Error())
	default:
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		SendInternalServerError(c, "internal server error")
	}
}
