package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/prescripto/prescripto-api/internal/domain/status"
)

const ContextSession = "session"

// Session is the authenticated caller of one request.
type Session struct {
	UserID uint
	Role   status.Role
}

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "missing_authorization_header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_authorization_header"})
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_token_claims"})
			return
		}

		userID, ok1 := claims["sub"].(float64)
		role, ok2 := claims["role"].(string)
		if !ok1 || !ok2 || (status.Role(role) != status.RoleDoctor && status.Role(role) != status.RolePatient) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_token_payload"})
			return
		}

		c.Set(ContextSession, Session{UserID: uint(userID), Role: status.Role(role)})
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role status.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := SessionFrom(c)
		if !ok || s.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error_code": "forbidden_role"})
			return
		}
		c.Next()
	}
}

func SessionFrom(c *gin.Context) (Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}

// MustSession is for handlers mounted behind AuthMiddleware.
func MustSession(c *gin.Context) Session {
	return c.MustGet(ContextSession).(Session)
}
