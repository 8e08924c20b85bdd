package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	graph *services.FollowGraph
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *services.FollowGraph) *FollowHandler {
	return &FollowHandler{graph: graph}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/follow/:id", h.ListFollowers)
	g.POST("/follow/:id", h.Follow)
	g.DELETE("/follow/:id", h.Unfollow)
	g.GET("/following/:id", h.ListFollowing)
}

// Follow makes the authenticated profile follow :id
func (h *FollowHandler) Follow(c echo.Context) error {
	currentID, err := currentProfileID(c)
	if err != nil {
		return err
	}
	targetID, err := parseID(c.Param("id"), "profile")
	if err != nil {
		return err
	}

	if err := h.graph.Follow(c.Request().Context(), currentID, targetID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully follow"})
}

// Unfollow removes the authenticated profile's edge to :id
func (h *FollowHandler) Unfollow(c echo.Context) error {
	currentID, err := currentProfileID(c)
	if err != nil {
		return err
	}
	targetID, err := parseID(c.Param("id"), "profile")
	if err != nil {
		return err
	}

	if err := h.graph.Unfollow(c.Request().Context(), currentID, targetID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully unfollow that profile"})
}

// ListFollowers lists the profiles following :id
func (h *FollowHandler) ListFollowers(c echo.Context) error {
	profileID, err := parseID(c.Param("id"), "profile")
	if err != nil {
		return err
	}

	followers, err := h.graph.ListFollowers(c.Request().Context(), profileID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"follower_count": len(followers),
		"follower":       compactProfiles(followers),
	})
}

// ListFollowing lists the profiles :id follows
func (h *FollowHandler) ListFollowing(c echo.Context) error {
	profileID, err := parseID(c.Param("id"), "profile")
	if err != nil {
		return err
	}

	following, err := h.graph.ListFollowing(c.Request().Context(), profileID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"following_count": len(following),
		"following_users": compactProfiles(following),
	})
}
