package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"simulation/internal/config"
	"simulation/internal/constants"
)

// JWTClaims représente les claims attendus des tokens de la plateforme
type JWTClaims struct {
	UserID      string `json:"user_id"`
	FranchiseID string `json:"franchise_id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// abortUnauthorized répond 401 et interrompt la chaîne de middlewares
func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":      message,
		"request_id": c.GetString(constants.ContextRequestID),
	})
	c.Abort()
}

// AuthMiddleware crée le middleware d'authentification JWT
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		parts := strings.SplitN(header, " ", constants.AuthHeaderSplitParts)
		if len(parts) != constants.AuthHeaderSplitParts || parts[0] != "Bearer" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := validateJWT(parts[1], cfg.JWT.Secret)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":      err.Error(),
				"ip":         c.ClientIP(),
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(constants.ContextRequestID),
			}).Warn("JWT validation failed")

			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(constants.ContextUserID, claims.UserID)
		c.Set(constants.ContextFranchiseID, claims.FranchiseID)
		c.Set(constants.ContextUsername, claims.Username)
		c.Set(constants.ContextRole, claims.Role)

		logrus.WithFields(logrus.Fields{
			"user_id":      claims.UserID,
			"franchise_id": claims.FranchiseID,
			"username":     claims.Username,
			"role":         claims.Role,
			"path":         c.Request.URL.Path,
			"method":       c.Request.Method,
			"request_id":   c.GetString(constants.ContextRequestID),
		}).Debug("User authenticated successfully")

		c.Next()
	}
}

// RequireRole restreint une route aux rôles donnés. Le rôle admin
// passe toujours.
func RequireRole(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(constants.ContextRole)
		if userRole == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}

		allowed := userRole == "admin"
		for _, role := range requiredRoles {
			if userRole == role {
				allowed = true
				break
			}
		}

		if !allowed {
			logrus.WithFields(logrus.Fields{
				"user_id":        c.GetString(constants.ContextUserID),
				"user_role":      userRole,
				"required_roles": requiredRoles,
				"path":           c.Request.URL.Path,
				"request_id":     c.GetString(constants.ContextRequestID),
			}).Warn("Access denied: insufficient permissions")

			c.JSON(http.StatusForbidden, gin.H{
				"error":      "Insufficient permissions",
				"required":   requiredRoles,
				"request_id": c.GetString(constants.ContextRequestID),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// validateJWT vérifie la signature HMAC du token et la cohérence des
// identifiants portés par les claims. L'expiration est contrôlée par
// le parseur.
func validateJWT(tokenString, secret string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("missing user_id in token")
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("invalid user_id format")
	}
	if claims.FranchiseID != "" {
		if _, err := uuid.Parse(claims.FranchiseID); err != nil {
			return nil, fmt.Errorf("invalid franchise_id format")
		}
	}

	return claims, nil
}
