package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/logger"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/services"
)

// SurveyLoader is satisfied by services.SurveyService.
type SurveyLoader interface {
	Get(ctx context.Context, id, creatorID uint) (*models.Survey, error)
}

// ParseID reads a positive numeric path parameter.
func ParseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// RequireSurveyOwner loads the survey named by :id into the context and
// checks that the current user created it. Must run after AuthJWT.
func RequireSurveyOwner(surveys SurveyLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)

		id, ok := ParseID(c, "id")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid survey ID"})
			return
		}

		s, err := surveys.Get(c.Request.Context(), id, u.ID)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": err.Error()})
			return
		case errors.Is(err, services.ErrForbidden):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You do not own this survey"})
			return
		default:
			logger.Errorf("load survey %d: %v", id, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Could not load survey"})
			return
		}

		c.Set(CtxSurvey, s)
		c.Next()
	}
}

// CurrentSurvey returns the survey set by RequireSurveyOwner.
func CurrentSurvey(c *gin.Context) *models.Survey {
	return c.MustGet(CtxSurvey).(*models.Survey)
}
