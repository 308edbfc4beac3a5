package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JanConnect/JanConnect-sub001/internal/auth"
	"github.com/JanConnect/JanConnect-sub001/internal/logger"
	"github.com/JanConnect/JanConnect-sub001/internal/util"
)

// AuthMiddleware requires a valid bearer token and stores its user id
func AuthMiddleware(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			util.RespondUnauthorized(c, "missing bearer token")
			return
		}

		userID, err := svc.ValidateToken(token)
		if err != nil {
			logger.Log.Debug("Rejected token", logger.WithIP(c.ClientIP()), zap.Error(err))
			util.RespondUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(util.UserIDKey, userID)
		c.Next()
	}
}
