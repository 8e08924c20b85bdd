package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	posts *services.Posts
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(posts *services.Posts) *LikeHandler {
	return &LikeHandler{posts: posts}
}

// RegisterLikeRoutes registers like-related routes. /posts/liked must be
// registered alongside /posts/:id; echo prefers the static segment.
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
	g.GET("/posts/liked", h.ListLikedPosts)
}

// ToggleLike likes the post, or unlikes it if already liked
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	profileID, err := currentProfileID(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c.Param("id"), "post")
	if err != nil {
		return err
	}

	result, err := h.posts.ToggleLike(c.Request().Context(), profileID, postID)
	if err != nil {
		return err
	}

	message := "successfully unlike post"
	if result.Liked {
		message = "successfully like post"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    message,
		"liked":      result.Liked,
		"like_count": result.LikeCount,
	})
}

// ListLikedPosts lists the posts the caller has liked, latest like first
func (h *LikeHandler) ListLikedPosts(c echo.Context) error {
	profileID, err := currentProfileID(c)
	if err != nil {
		return err
	}

	posts, err := h.posts.ListLikedPosts(c.Request().Context(), profileID)
	if err != nil {
		return err
	}

	liked := true
	resp := make([]models.PostResponse, 0, len(posts))
	for i := range posts {
		r := posts[i].ToResponse()
		r.IsLiked = &liked
		resp = append(resp, r)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Successfully Retrived Liked Posts",
		"total_count": len(resp),
		"posts":       resp,
	})
}
