package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/middleware"
	"github.com/vnkhanh/survey-hub/services"
)

type SurveyController struct {
	surveys *services.SurveyService
	results *services.ResultsService
}

func NewSurveyController(surveys *services.SurveyService, results *services.ResultsService) *SurveyController {
	return &SurveyController{surveys: surveys, results: results}
}

// POST /api/surveys
func (sc *SurveyController) Create(c *gin.Context) {
	u := middleware.CurrentUser(c)

	var req services.CreateSurveyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	s, err := sc.surveys.Create(c.Request.Context(), u.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// GET /api/surveys
func (sc *SurveyController) List(c *gin.Context) {
	u := middleware.CurrentUser(c)

	list, err := sc.surveys.List(c.Request.Context(), u.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"surveys": list, "total": len(list)})
}

// GET /api/surveys/:id
func (sc *SurveyController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentSurvey(c))
}

// PATCH /api/surveys/:id
func (sc *SurveyController) Update(c *gin.Context) {
	u := middleware.CurrentUser(c)
	s := middleware.CurrentSurvey(c)

	var req services.SurveyPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := sc.surveys.Update(c.Request.Context(), s.ID, u.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /api/surveys/:id
func (sc *SurveyController) Delete(c *gin.Context) {
	u := middleware.CurrentUser(c)
	s := middleware.CurrentSurvey(c)

	if err := sc.surveys.Delete(c.Request.Context(), s.ID, u.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Survey deleted"})
}

// GET /api/surveys/:id/results
func (sc *SurveyController) Results(c *gin.Context) {
	u := middleware.CurrentUser(c)
	s := middleware.CurrentSurvey(c)

	res, err := sc.results.Results(c.Request.Context(), s.ID, u.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
