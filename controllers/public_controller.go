package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/middleware"
	"github.com/vnkhanh/survey-hub/services"
)

// PublicController serves anonymous respondents. None of its routes require
// a bearer token.
type PublicController struct {
	surveys  *services.SurveyService
	recorder *services.ResponseRecorder
}

func NewPublicController(surveys *services.SurveyService, recorder *services.ResponseRecorder) *PublicController {
	return &PublicController{surveys: surveys, recorder: recorder}
}

// GET /api/surveys/public/:publicId
func (pc *PublicController) Get(c *gin.Context) {
	s, err := pc.surveys.GetPublic(c.Request.Context(), c.Param("publicId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// POST /api/surveys/public/:publicId/responses
func (pc *PublicController) Submit(c *gin.Context) {
	var req services.SubmitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := pc.recorder.Submit(c.Request.Context(), c.Param("publicId"), req, middleware.CurrentRespondent(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Response recorded",
		"responseId": res.ResponseID,
		"sessionId":  res.SessionID,
	})
}

// GET /api/surveys/public/:publicId/check-duplicate
func (pc *PublicController) CheckDuplicate(c *gin.Context) {
	dup, err := pc.recorder.CheckDuplicate(c.Request.Context(), c.Param("publicId"), middleware.CurrentRespondent(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"duplicate": dup})
}
