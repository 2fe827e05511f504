package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projecttracker/internal/handler"
	"projecttracker/internal/model"
	"projecttracker/pkg/util"
)

func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		userID, role, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// store identity in context so handlers can use it
		c.Set(handler.CtxUserID, userID)
		c.Set(handler.CtxRole, model.ParseRole(role))

		c.Next()
	}
}
