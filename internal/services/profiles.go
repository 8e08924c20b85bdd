package services

import (
	"context"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"gorm.io/gorm"
)

// Profiles serves profile reads, updates and username search.
type Profiles struct {
	db *gorm.DB
}

func NewProfiles(db *gorm.DB) *Profiles {
	return &Profiles{db: db}
}

// GetProfile returns the profile with its follower, following and post counts.
func (s *Profiles) GetProfile(ctx context.Context, profileID uint) (*models.ProfileResponse, error) {
	profile, err := repositories.NewPostgresProfileRepository(s.db).GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, notFoundIfMissing(err, "profile not found")
	}
	return s.withCounts(ctx, profile)
}

// UpdateProfile applies the non-nil fields of req.
func (s *Profiles) UpdateProfile(ctx context.Context, profileID uint, req *models.UpdateProfileRequest) (*models.ProfileResponse, error) {
	profiles := repositories.NewPostgresProfileRepository(s.db)
	profile, err := profiles.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, notFoundIfMissing(err, "profile not found")
	}

	if req.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if err := profiles.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return s.withCounts(ctx, profile)
}

func (s *Profiles) withCounts(ctx context.Context, profile *models.Profile) (*models.ProfileResponse, error) {
	follows := repositories.NewPostgresFollowRepository(s.db)

	followers, err := follows.GetFollowersCount(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	following, err := follows.GetFollowingCount(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	posts, err := repositories.NewPostgresPostRepository(s.db).GetPostsCount(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	return &models.ProfileResponse{
		ID:             profile.ID,
		Username:       profile.Username(),
		DisplayName:    profile.DisplayName,
		Bio:            profile.Bio,
		FollowersCount: followers,
		FollowingCount: following,
		PostsCount:     posts,
		CreatedAt:      profile.CreatedAt,
	}, nil
}

// SearchUsers matches query as a case-insensitive substring of usernames.
// Hits carry the same counts as GetProfile.
func (s *Profiles) SearchUsers(ctx context.Context, query string) ([]models.ProfileResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, Validation("query parameter is required")
	}

	profiles, err := repositories.NewPostgresProfileRepository(s.db).SearchByUsername(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, NotFound("no users match the query")
	}

	out := make([]models.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		resp, err := s.withCounts(ctx, &profiles[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}
