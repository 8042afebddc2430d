package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/shenikar/civic_incident_system/internal/service"
	"github.com/sirupsen/logrus"
)

const principalKey = "principal"

// AuthMiddleware - middleware для аутентификации по bearer-токену.
// EventSource не умеет слать заголовки, поэтому токен принимается и из параметра access_token.
func AuthMiddleware(authService service.AuthService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}
		if token == "" {
			token = c.Query("access_token")
		}

		if token == "" {
			log.Warn("Bearer token missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		principal, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, models.ErrUnauthorized) {
				log.WithError(err).Error("Failed to authenticate request")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			log.WithError(err).Warn("Invalid bearer token provided")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(principalKey, *principal)
		c.Next()
	}
}

// RequireRole пропускает только пользователей с ролью не ниже min
func RequireRole(min models.Role, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := currentPrincipal(c)
		if !principal.Role.AtLeast(min) {
			log.WithFields(logrus.Fields{
				"user_id": principal.UserID,
				"role":    principal.Role,
				"path":    c.FullPath(),
			}).Warn("Access denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) models.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(models.Principal); ok {
			return p
		}
	}
	return models.Principal{}
}
