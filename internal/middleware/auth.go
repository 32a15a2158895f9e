package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/movie-review/internal/auth"
	"github.com/qs-lzh/movie-review/internal/model"
)

const (
	ClaimsKey   = "user_claims"
	TokenCookie = "token"
)

// Authenticate verifies the caller's token and stores its claims on the context.
// The token is taken from the Authorization header, then the token cookie, then
// a "token" field of a JSON body.
func Authenticate(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "Authentication required.")
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			abort(c, http.StatusForbidden, "Invalid or expired token.")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole lets the request through only when the caller holds one of roles.
// It must run after Authenticate.
func RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abort(c, http.StatusUnauthorized, "Authentication required.")
			return
		}
		if !auth.HasRole(claims.Role, roles...) {
			abort(c, http.StatusForbidden, "Access denied.")
			return
		}
		c.Next()
	}
}

// RequireSelf rejects requests whose token does not belong to the user named
// by the path parameter param.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abort(c, http.StatusUnauthorized, "Authentication required.")
			return
		}
		if claims.IDString() != c.Param(param) {
			abort(c, http.StatusForbidden, "Access denied.")
			return
		}
		c.Next()
	}
}

func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "" {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	return tokenFromBody(c)
}

// tokenFromBody peeks at a JSON body and puts it back for the handler.
func tokenFromBody(c *gin.Context) string {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Token
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
