package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// TokenVerifier validates a bearer token and returns the user id it names.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// BearerAuth rejects requests without a valid "Authorization: Bearer" token
// and stores the authenticated user id under "userID".
//
// Rejections use 401 with code "unauthorized". A verifier failure that is not
// a token problem (for example a store outage) is reported as 500.
func BearerAuth(v TokenVerifier, isTokenErr func(error) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "No token, authorization denied")
			return
		}

		uid, err := v.VerifyToken(c.Request.Context(), token)
		if err != nil {
			if isTokenErr == nil || isTokenErr(err) {
				abortJSON(c, http.StatusUnauthorized, "unauthorized", "Token is not valid")
				return
			}
			LoggerFrom(c).Error().Err(err).Msg("token verification failed")
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}

		c.Set(userIDKey, uid)
		l := LoggerFrom(c).With().Str("user_id", uid).Logger()
		c.Set(loggerKey, &l)
		c.Next()
	}
}

// UserID returns the id stored by BearerAuth, or "".
func UserID(c *gin.Context) string {
	v, _ := c.Get(userIDKey)
	return asString(v)
}

// ErrIs adapts a set of sentinel errors into the isTokenErr predicate.
func ErrIs(targets ...error) func(error) bool {
	return func(err error) bool {
		for _, t := range targets {
			if errors.Is(err, t) {
				return true
			}
		}
		return false
	}
}

func bearerToken(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}
