package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// currentProfileID returns the authenticated profile.
func currentProfileID(c echo.Context) (uint, error) {
	claims := middleware.Claims(c)
	if claims == nil || claims.ProfileID == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return claims.ProfileID, nil
}

func parseID(raw, what string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, services.Validation("invalid " + what + " id")
	}
	return uint(id), nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return services.Validation("invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return services.Validation(err.Error())
	}
	return nil
}

func compactProfiles(profiles []models.Profile) []models.ProfileCompact {
	out := make([]models.ProfileCompact, 0, len(profiles))
	for i := range profiles {
		out = append(out, profiles[i].ToCompact())
	}
	return out
}

// postResponses renders posts with the viewer's like state.
func postResponses(ctx context.Context, posts *services.Posts, viewerID uint, list []models.Post) ([]models.PostResponse, error) {
	liked, err := posts.LikedBy(ctx, viewerID, list)
	if err != nil {
		return nil, err
	}
	out := make([]models.PostResponse, 0, len(list))
	for i := range list {
		resp := list[i].ToResponse()
		isLiked := liked[list[i].ID]
		resp.IsLiked = &isLiked
		out = append(out, resp)
	}
	return out, nil
}
