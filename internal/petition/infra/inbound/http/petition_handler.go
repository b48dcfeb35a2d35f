package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/internal/petition/application"
	"github.com/glitchjsy/opendata-api/internal/petition/domain"
	"github.com/glitchjsy/opendata-api/pkg/utils"
)

// PetitionHandler encapsula los endpoints HTTP de peticiones.
type PetitionHandler struct {
	service *application.PetitionService
	log     *zap.Logger
}

func NewPetitionHandler(service *application.PetitionService, log *zap.Logger) *PetitionHandler {
	return &PetitionHandler{service: service, log: log}
}

// ListPetitions endpoint GET /v1/petitions
func (h *PetitionHandler) ListPetitions(c *gin.Context) {
	page, limit, err := utils.PageParams(c)
	if err != nil {
		utils.SendDomainError(c, err, h.log)
		return
	}
	_, includeFull := c.GetQuery("includeFull")

	res, err := h.service.ListPetitions(c.Request.Context(), domain.Filters.Collect(c.Query), page, limit, includeFull)
	if err != nil {
		utils.SendDomainError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetPetitionStats endpoint GET /v1/charts/petition-stats
func (h *PetitionHandler) GetPetitionStats(c *gin.Context) {
	report, err := h.service.GetPetitionStats(c.Request.Context())
	if err != nil {
		utils.SendDomainError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, report)
}
