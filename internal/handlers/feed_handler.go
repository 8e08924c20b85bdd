package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the home feed
type FeedHandler struct {
	feed  *services.FeedComposer
	posts *services.Posts
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedComposer, posts *services.Posts) *FeedHandler {
	return &FeedHandler{feed: feed, posts: posts}
}

// RegisterFeedRoutes registers feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns posts from every profile the caller follows, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	profileID, err := currentProfileID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	posts, err := h.feed.ComposeHomeFeed(ctx, profileID)
	if err != nil {
		return err
	}
	resp, err := postResponses(ctx, h.posts, profileID, posts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
