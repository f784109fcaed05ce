package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/middleware"
	"github.com/vnkhanh/survey-hub/services"
)

type UserController struct {
	stats *services.StatsService
}

func NewUserController(stats *services.StatsService) *UserController {
	return &UserController{stats: stats}
}

// GET /api/users/stats
func (uc *UserController) Stats(c *gin.Context) {
	u := middleware.CurrentUser(c)

	stats, err := uc.stats.ForUser(c.Request.Context(), u.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
