package middleware

// identity.go defines helpers shared across middleware files.  currentUserID
// pulls the subject stored by JWTAuth out of the Echo context for rate-limit
// keying; unauthenticated requests key as "anon".

import "github.com/labstack/echo/v4"

// currentUserID extracts a user identifier from context.  It returns "anon"
// when no user is authenticated.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if v := c.Get("userID"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
