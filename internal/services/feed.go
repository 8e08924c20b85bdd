package services

import (
	"context"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/pkg/metrics"
	"gorm.io/gorm"
)

// FeedComposer builds home feeds by a one-hop walk of the follow graph.
type FeedComposer struct {
	db *gorm.DB
}

func NewFeedComposer(db *gorm.DB) *FeedComposer {
	return &FeedComposer{db: db}
}

// ComposeHomeFeed returns every post owned by a profile that profileID
// follows, newest first. Posts created at the same instant keep the order
// they were inserted in. The feed is empty when profileID follows nobody.
func (f *FeedComposer) ComposeHomeFeed(ctx context.Context, profileID uint) ([]models.Post, error) {
	start := time.Now()

	following, err := repositories.NewPostgresFollowRepository(f.db).GetFollowingIDs(ctx, profileID)
	if err != nil {
		return nil, err
	}
	posts, err := repositories.NewPostgresPostRepository(f.db).GetPostsByProfileIDs(ctx, following)
	if err != nil {
		return nil, err
	}

	metrics.FeedComposeDuration.Observe(time.Since(start).Seconds())
	metrics.FeedSize.Observe(float64(len(posts)))
	return posts, nil
}
