package services

import (
	"context"
	"errors"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/pkg/metrics"
	"gorm.io/gorm"
)

// FollowGraph maintains the directed follow edges between profiles.
type FollowGraph struct {
	db *gorm.DB
}

func NewFollowGraph(db *gorm.DB) *FollowGraph {
	return &FollowGraph{db: db}
}

// Follow makes followerID follow followingID. The existence check is a fast
// path; the unique index decides when two identical requests race.
func (g *FollowGraph) Follow(ctx context.Context, followerID, followingID uint) error {
	if followerID == followingID {
		return InvalidOperation("you cannot follow yourself")
	}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profiles := repositories.NewPostgresProfileRepository(tx)
		follows := repositories.NewPostgresFollowRepository(tx)

		exists, err := profiles.ProfileExists(ctx, followingID)
		if err != nil {
			return err
		}
		if !exists {
			return NotFound("profile not found")
		}

		following, err := follows.IsFollowing(ctx, followerID, followingID)
		if err != nil {
			return err
		}
		if following {
			return Conflict("you already follow this profile")
		}

		return follows.CreateFollow(ctx, &models.Follower{
			FollowerID:  followerID,
			FollowingID: followingID,
		})
	})
	if isDuplicate(err) {
		return Conflict("you already follow this profile")
	}
	if err != nil {
		return err
	}

	metrics.Follows.WithLabelValues("follow").Inc()
	return nil
}

// Unfollow removes the edge followerID -> followingID.
func (g *FollowGraph) Unfollow(ctx context.Context, followerID, followingID uint) error {
	if followerID == followingID {
		return InvalidOperation("you cannot unfollow yourself")
	}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := repositories.NewPostgresProfileRepository(tx).ProfileExists(ctx, followingID)
		if err != nil {
			return err
		}
		if !exists {
			return NotFound("profile not found")
		}

		err = repositories.NewPostgresFollowRepository(tx).DeleteFollow(ctx, followerID, followingID)
		if errors.Is(err, repositories.ErrFollowNotFound) {
			return InvalidOperation("you do not follow this profile")
		}
		return err
	})
	if err != nil {
		return err
	}

	metrics.Follows.WithLabelValues("unfollow").Inc()
	return nil
}

// ListFollowers returns the profiles following profileID.
func (g *FollowGraph) ListFollowers(ctx context.Context, profileID uint) ([]models.Profile, error) {
	if err := g.requireProfile(ctx, profileID); err != nil {
		return nil, err
	}
	return repositories.NewPostgresFollowRepository(g.db).GetFollowers(ctx, profileID)
}

// ListFollowing returns the profiles profileID follows.
func (g *FollowGraph) ListFollowing(ctx context.Context, profileID uint) ([]models.Profile, error) {
	if err := g.requireProfile(ctx, profileID); err != nil {
		return nil, err
	}
	return repositories.NewPostgresFollowRepository(g.db).GetFollowing(ctx, profileID)
}

func (g *FollowGraph) requireProfile(ctx context.Context, profileID uint) error {
	exists, err := repositories.NewPostgresProfileRepository(g.db).ProfileExists(ctx, profileID)
	if err != nil {
		return err
	}
	if !exists {
		return NotFound("profile not found")
	}
	return nil
}
