package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/snapgram/backend/internal/auth"
	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const refreshTokenCookie = "refresh_token"

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	identity   *services.Identity
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(identity *services.Identity, tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		identity:   identity,
		accessTTL:  tokens.AccessTTL(),
		refreshTTL: tokens.RefreshTTL(),
	}
}

// RegisterAuthRoutes registers the public authentication routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	if h.identity.FirebaseEnabled() {
		g.POST("/firebase-login", h.FirebaseLogin)
	}
}

// Register creates a user with its profile
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.identity.Register(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user": echo.Map{
			"id":           profile.UserID,
			"profile_id":   profile.ID,
			"username":     profile.Username(),
			"email":        profile.User.Email,
			"display_name": profile.DisplayName,
		},
	})
}

// Login authenticates with username and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.identity.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return h.respondWithTokens(c, pair)
}

// Refresh exchanges a refresh token, from the body or cookie, for a new pair
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req models.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return services.Validation("invalid request payload")
	}
	if req.RefreshToken == "" {
		if cookie, err := c.Cookie(refreshTokenCookie); err == nil {
			req.RefreshToken = cookie.Value
		}
	}

	pair, err := h.identity.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return h.respondWithTokens(c, pair)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin handles Firebase ID token verification and issues local tokens
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.identity.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	return h.respondWithTokens(c, pair)
}

// Logout clears the token cookies
func (h *AuthHandler) Logout(c echo.Context) error {
	for _, name := range []string{middleware.AccessTokenCookie, refreshTokenCookie} {
		c.SetCookie(tokenCookie(name, "", time.Unix(0, 0), -1))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) respondWithTokens(c echo.Context, pair *auth.TokenPair) error {
	c.SetCookie(tokenCookie(middleware.AccessTokenCookie, pair.AccessToken, pair.AccessExpiresAt, int(h.accessTTL.Seconds())))
	c.SetCookie(tokenCookie(refreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt, int(h.refreshTTL.Seconds())))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login successfully",
		"data":    pair,
	})
}

func tokenCookie(name, value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}
