package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	authdomain "github.com/casaantigua/anticuario/internal/auth/domain"
	"github.com/casaantigua/anticuario/internal/observability/obscontext"
)

const claimsContextKey = "auth_claims"

// AuthRequired validates the bearer token and binds the verified
// identity to the request context for downstream handlers and auditing.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.authSvc.VerifyToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(claimsContextKey, claims)

		ctx := obscontext.WithActor(c.Request.Context(), claims.UserID, string(claims.Role))
		ctx = obscontext.WithHTTPInfo(ctx, c.ClientIP(), c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func (s *Server) RequireWrite() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !claims.Role.CanWrite() {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if claims.Role != authdomain.RoleAdmin {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *authdomain.Claims {
	value, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*authdomain.Claims)
	return claims
}
