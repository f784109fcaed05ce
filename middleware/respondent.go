package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/services"
)

const (
	HeaderSessionID = "X-Session-Id"
	CtxRespondent   = "respondent"
)

// Respondent captures who is answering a public survey: the session token
// from the X-Session-Id header (or the sessionId query parameter), the
// client IP and the user agent.
func Respondent() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := strings.TrimSpace(c.GetHeader(HeaderSessionID))
		if session == "" {
			session = strings.TrimSpace(c.Query("sessionId"))
		}
		c.Set(CtxRespondent, services.Respondent{
			SessionID: session,
			IPAddress: c.ClientIP(), // honours X-Forwarded-For only for trusted proxies
			UserAgent: c.Request.UserAgent(),
		})
		c.Next()
	}
}

func CurrentRespondent(c *gin.Context) services.Respondent {
	if v, ok := c.Get(CtxRespondent); ok {
		if r, ok := v.(services.Respondent); ok {
			return r
		}
	}
	return services.Respondent{IPAddress: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
