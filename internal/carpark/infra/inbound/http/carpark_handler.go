package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/internal/carpark/application"
	"github.com/glitchjsy/opendata-api/internal/carpark/domain"
	"github.com/glitchjsy/opendata-api/pkg/utils"
)

type CarparkHandler struct {
	service *application.CarparkService
	log     *zap.Logger
}

func NewCarparkHandler(service *application.CarparkService, log *zap.Logger) *CarparkHandler {
	return &CarparkHandler{service: service, log: log}
}

// ListCarparks endpoint GET /v1/carparks
func (h *CarparkHandler) ListCarparks(c *gin.Context) {
	rows, err := h.service.ListCarparks(c.Request.Context())
	if err != nil {
		utils.SendDomainError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": rows})
}

// GetCarpark endpoint GET /v1/carparks/:idOrCode
func (h *CarparkHandler) GetCarpark(c *gin.Context) {
	row, err := h.service.GetCarpark(c.Request.Context(), c.Param("idOrCode"))
	if err != nil {
		utils.SendDomainError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": row})
}

// ListLiveSpaceDates endpoint GET /v1/carparks/spaces/dates
func (h *CarparkHandler) ListLiveSpaceDates(c *gin.Context) {
	dates, err := h.service.ListLiveSpaceDates(c.Request.Context())
	if err != nil {
		utils.SendDomainError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": dates})
}

// ListLiveSpaces endpoint GET /v1/carparks/spaces
func (h *CarparkHandler) ListLiveSpaces(c *gin.Context) {
	page, limit, err := utils.PageParams(c)
	if err != nil {
		utils.SendDomainError(c, err, h.log)
		return
	}

	res, err := h.service.ListLiveSpaces(c.Request.Context(), domain.Filters.Collect(c.Query), page, limit)
	if err != nil {
		utils.SendDomainError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetParkingStats endpoint GET /v1/charts/parking-stats
func (h *CarparkHandler) GetParkingStats(c *gin.Context) {
	report, err := h.service.GetParkingStats(c.Request.Context())
	if err != nil {
		utils.SendDomainError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, report)
}

func RegisterCarparkRoutes(r gin.IRouter, handler *CarparkHandler) {
	r.GET("/carparks", handler.ListCarparks)
	r.GET("/carparks/spaces", handler.ListLiveSpaces)
	r.GET("/carparks/spaces/dates", handler.ListLiveSpaceDates)
	r.GET("/carparks/:idOrCode", handler.GetCarpark)
	r.GET("/charts/parking-stats", handler.GetParkingStats)
}
