package http

import "github.com/gin-gonic/gin"

func RegisterPetitionRoutes(r gin.IRouter, handler *PetitionHandler) {
	r.GET("/petitions", handler.ListPetitions)
	r.GET("/charts/petition-stats", handler.GetPetitionStats)
}
