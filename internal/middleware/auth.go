package middleware

import (
	"net/http"
	"strings"

	"github.com/dimitrije/fleetdesk/internal/services"
	"github.com/dimitrije/fleetdesk/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	MemberIDKey    = "member_id"
	MemberEmailKey = "member_email"
)

// TokenQueryParam is the query parameter dashboard clients put the access
// token in. The Authorization header wins when both are present.
const TokenQueryParam = "token"

// Auth authenticates a request from either "Authorization: Bearer <t>" or
// "?token=<t>".
func Auth(jwtService *services.JWTService) drift.HandlerFunc {
	return func(c *drift.Context) {
		token, ok := extractToken(c)
		if !ok {
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(MemberIDKey, claims.MemberID)
		c.Set(MemberEmailKey, claims.Email)

		c.Next()
	}
}

func extractToken(c *drift.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			unauthorized(c, "invalid authorization header format")
			return "", false
		}
		return parts[1], true
	}

	if token := c.QueryParam(TokenQueryParam); token != "" {
		return token, true
	}

	unauthorized(c, "missing authorization token")
	return "", false
}

func unauthorized(c *drift.Context, detail string) {
	_ = c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Detail: detail})
	c.Abort()
}

func GetMemberID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(MemberIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetMemberEmail(c *drift.Context) string {
	if email, ok := c.Get(MemberEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}
