package middleware

import (
	"net/http"
	"strings"

	"hotel-platform/policy"
	"hotel-platform/utils"

	"github.com/gin-gonic/gin"
)

const policyKey = "policy"

// Authenticate parses the bearer token and stores the caller's policy on the
// context. Missing or invalid tokens are rejected with 401.
func Authenticate(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := policyFromHeader(c, secret)
		if !ok {
			utils.AbortJSONError(c, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		c.Set(policyKey, p)
		c.Next()
	}
}

// OptionalAuth behaves like Authenticate but lets anonymous requests through.
// A malformed token is still rejected.
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		p, ok := policyFromHeader(c, secret)
		if !ok {
			utils.AbortJSONError(c, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		c.Set(policyKey, p)
		c.Next()
	}
}

// Require rejects callers lacking any of caps with 403.
func Require(caps ...policy.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPolicy(c)
		for _, want := range caps {
			if !p.Can(want) {
				utils.AbortJSONError(c, http.StatusForbidden, "access denied")
				return
			}
		}
		c.Next()
	}
}

// CurrentPolicy returns the policy stored by Authenticate, or nil.
func CurrentPolicy(c *gin.Context) *policy.Policy {
	v, ok := c.Get(policyKey)
	if !ok {
		return nil
	}
	p, _ := v.(*policy.Policy)
	return p
}

func policyFromHeader(c *gin.Context, secret []byte) (*policy.Policy, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, false
	}

	claims, err := utils.ParseToken(secret, strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, false
	}
	return policy.New(policy.Principal{
		UserID:   claims.ID,
		Role:     claims.Role,
		BranchID: claims.BranchID,
	}), true
}
