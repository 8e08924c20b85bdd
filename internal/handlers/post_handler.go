package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/anonto42/snapgram/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

const maxDescriptionLength = 2200

// ImageOpener reads stored post images.
type ImageOpener interface {
	OpenImage(ctx context.Context, key string) (io.ReadCloser, error)
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts  *services.Posts
	images ImageOpener
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.Posts, images ImageOpener) *PostHandler {
	return &PostHandler{posts: posts, images: images}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.ListPosts) // own posts, or ?profile=<id>
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// RegisterMediaRoutes registers the public image download route
func (h *PostHandler) RegisterMediaRoutes(e *echo.Echo) {
	e.GET("/media/:name", h.GetMedia)
}

// CreatePost accepts a multipart form with an image file and a description
func (h *PostHandler) CreatePost(c echo.Context) error {
	profileID, err := currentProfileID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return services.Validation("image is required")
	}
	if fileHeader.Size > storage.MaxImageSize {
		return services.Validation("image exceeds the 10 MB limit")
	}

	var description *string
	if d := strings.TrimSpace(c.FormValue("description")); d != "" {
		if utf8.RuneCountInString(d) > maxDescriptionLength {
			return services.Validation("description must be at most 2200 characters")
		}
		description = &d
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	post, err := h.posts.CreatePost(c.Request().Context(), profileID, fileHeader.Filename, file, description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post.ToResponse())
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := parseID(c.Param("id"), "post")
	if err != nil {
		return err
	}

	post, err := h.posts.GetPost(c.Request().Context(), postID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post.ToResponse())
}

// ListPosts lists a profile's posts, newest first
func (h *PostHandler) ListPosts(c echo.Context) error {
	viewerID, err := currentProfileID(c)
	if err != nil {
		return err
	}

	profileID := viewerID
	if raw := c.QueryParam("profile"); raw != "" {
		if profileID, err = parseID(raw, "profile"); err != nil {
			return err
		}
	}

	ctx := c.Request().Context()
	posts, err := h.posts.ListPosts(ctx, profileID)
	if err != nil {
		return err
	}
	resp, err := postResponses(ctx, h.posts, viewerID, posts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdatePost changes the description of one of the caller's posts
func (h *PostHandler) UpdatePost(c echo.Context) error {
	profileID, err := currentProfileID(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c.Param("id"), "post")
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.UpdatePost(c.Request().Context(), profileID, postID, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post.ToResponse())
}

// DeletePost deletes one of the caller's posts
func (h *PostHandler) DeletePost(c echo.Context) error {
	profileID, err := currentProfileID(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c.Param("id"), "post")
	if err != nil {
		return err
	}

	if err := h.posts.DeletePost(c.Request().Context(), profileID, postID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}

// GetMedia streams a stored image
func (h *PostHandler) GetMedia(c echo.Context) error {
	name := c.Param("name")
	rc, err := h.images.OpenImage(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return services.NotFound("image not found")
		}
		return err
	}
	defer rc.Close()

	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.Stream(http.StatusOK, storage.ContentType(name), rc)
}
