package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler serves profiles and user search
type UserHandler struct {
	profiles *services.Profiles
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profiles *services.Profiles) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// RegisterProfileRoutes registers profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetOwnProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/profile/:id", h.GetProfile)
	g.GET("/search", h.SearchUsers)
}

// GetOwnProfile returns the authenticated user's profile
func (h *UserHandler) GetOwnProfile(c echo.Context) error {
	profileID, err := currentProfileID(c)
	if err != nil {
		return err
	}
	profile, err := h.profiles.GetProfile(c.Request().Context(), profileID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// GetProfile returns any profile by id
func (h *UserHandler) GetProfile(c echo.Context) error {
	profileID, err := parseID(c.Param("id"), "profile")
	if err != nil {
		return err
	}
	profile, err := h.profiles.GetProfile(c.Request().Context(), profileID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates display name and bio of the authenticated user
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	profileID, err := currentProfileID(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.profiles.UpdateProfile(c.Request().Context(), profileID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// SearchUsers finds profiles whose username contains ?query=
func (h *UserHandler) SearchUsers(c echo.Context) error {
	profiles, err := h.profiles.SearchUsers(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profiles)
}
