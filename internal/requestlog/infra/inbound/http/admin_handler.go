package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/internal/requestlog/application"
	"github.com/glitchjsy/opendata-api/pkg/utils"
)

// AdminStatsHandler expone las estadísticas del registro de peticiones.
type AdminStatsHandler struct {
	service *application.RequestLogService
	log     *zap.Logger
}

func NewAdminStatsHandler(service *application.RequestLogService, log *zap.Logger) *AdminStatsHandler {
	return &AdminStatsHandler{service: service, log: log}
}

// GetStats endpoint GET /admin/stats?year=&month=
func (h *AdminStatsHandler) GetStats(c *gin.Context) {
	year, month, err := scopeParams(c)
	if err != nil {
		utils.SendDomainError(c, err, h.log)
		return
	}

	report, err := h.service.GetRequestStats(c.Request.Context(), year, month)
	if err != nil {
		utils.SendDomainError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetTopEndpoints endpoint GET /admin/stats/top-endpoints?year=&month=
func (h *AdminStatsHandler) GetTopEndpoints(c *gin.Context) {
	year, month, err := scopeParams(c)
	if err != nil {
		utils.SendDomainError(c, err, h.log)
		return
	}

	rows, err := h.service.GetTopEndpoints(c.Request.Context(), year, month)
	if err != nil {
		utils.SendDomainError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": rows})
}

func scopeParams(c *gin.Context) (year, month *int, err error) {
	if year, err = utils.OptionalInt(c, "year"); err != nil {
		return nil, nil, err
	}
	if month, err = utils.OptionalInt(c, "month"); err != nil {
		return nil, nil, err
	}
	return year, month, nil
}

func RegisterAdminStatsRoutes(r gin.IRouter, handler *AdminStatsHandler) {
	r.GET("/stats", handler.GetStats)
	r.GET("/stats/top-endpoints", handler.GetTopEndpoints)
}
