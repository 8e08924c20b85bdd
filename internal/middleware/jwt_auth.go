package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/auth"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// ClaimsKey is where the guard stores *models.JwtCustomClaims on the context.
const ClaimsKey = "user"

// AccessTokenCookie carries the access token for browser clients.
const AccessTokenCookie = "access_token"

// JWTAuthMiddleware checks for a valid access token, taken from the
// Authorization header or the access_token cookie, and stores its claims.
func JWTAuthMiddleware(tokens *auth.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := extractToken(c)
			if err != nil {
				return err
			}

			claims, err := tokens.Parse(tokenString, models.TokenTypeAccess)
			if err != nil {
				if err == auth.ErrWrongTokenType {
					return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
		}
		return parts[1], nil
	}

	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
}

// Claims returns the claims stored by JWTAuthMiddleware, or nil.
func Claims(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(ClaimsKey).(*models.JwtCustomClaims)
	return claims
}
