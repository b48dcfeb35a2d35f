package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glitchjsy/opendata-api/internal/requestlog/domain"
	"github.com/glitchjsy/opendata-api/pkg/utils"
)

// APITokenContextKey es la clave de gin.Context donde la autenticación deja
// el id del token de API, si lo hay.
const APITokenContextKey = "apiTokenId"

// RequestTracker es lo que necesita el middleware del Tracker.
type RequestTracker interface {
	Track(r domain.Request) bool
}

// TrackRequests registra cada petición al terminar, sin bloquear la respuesta.
func TrackRequests(tracker RequestTracker, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		c.Next()

		tracker.Track(domain.NewRequest(
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			c.ClientIP(),
			c.Request.UserAgent(),
			c.GetString(APITokenContextKey),
			now(),
		))
	}
}

// RequireUserAgent rechaza con 400 las peticiones sin cabecera User-Agent.
func RequireUserAgent() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("User-Agent") == "" {
			utils.SendBadRequest(c, "a User-Agent header is required")
			return
		}
		c.Next()
	}
}
