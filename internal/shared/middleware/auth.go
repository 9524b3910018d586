package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"bookcatalog-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// RequireAuth guards mutating routes with a bearer token signed by the
// shared secret.
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "Unauthorized", "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Error(c, http.StatusUnauthorized, "Unauthorized", "invalid authorization header format")
			c.Abort()
			return
		}

		claims := jwt.MapClaims{}
		parsedToken, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !parsedToken.Valid {
			response.Error(c, http.StatusUnauthorized, "Unauthorized", "invalid token")
			c.Abort()
			return
		}

		if sub, ok := claims["sub"].(string); ok {
			c.Set("subject", sub)
		}

		c.Next()
	}
}
