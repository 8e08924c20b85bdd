package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/internal/storage"
	"github.com/anonto42/snapgram/backend/pkg/metrics"
	"gorm.io/gorm"
)

// ImageStore persists post images outside the relational store.
type ImageStore interface {
	SaveImage(ctx context.Context, filename string, r io.Reader) (string, error)
	DeleteImage(ctx context.Context, key string) error
}

// LikeResult is the state of a (post, profile) edge after a toggle.
type LikeResult struct {
	Liked     bool
	LikeCount int64
}

// Posts owns post records and their like edges.
type Posts struct {
	db     *gorm.DB
	images ImageStore
	now    func() time.Time
}

func NewPosts(db *gorm.DB, images ImageStore) *Posts {
	return &Posts{db: db, images: images, now: time.Now}
}

// SetClock replaces the creation timestamp source.
func (s *Posts) SetClock(now func() time.Time) {
	s.now = now
}

// CreatePost stores the image and then the row. If the insert fails the
// stored image is removed again.
func (s *Posts) CreatePost(ctx context.Context, profileID uint, filename string, image io.Reader, description *string) (*models.Post, error) {
	if image == nil {
		return nil, Validation("image is required")
	}

	key, err := s.images.SaveImage(ctx, filename, image)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return nil, Validation(err.Error())
		}
		return nil, err
	}

	now := s.now()
	post := &models.Post{
		ProfileID:   profileID,
		Image:       key,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	posts := repositories.NewPostgresPostRepository(s.db)
	if err := posts.CreatePost(ctx, post); err != nil {
		_ = s.images.DeleteImage(context.WithoutCancel(ctx), key)
		return nil, err
	}

	metrics.PostsCreated.Inc()
	return posts.GetPostByID(ctx, post.ID)
}

func (s *Posts) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := repositories.NewPostgresPostRepository(s.db).GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFoundIfMissing(err, "post not found")
	}
	return post, nil
}

// UpdatePost replaces the description of a post owned by profileID. A nil
// description leaves the post unchanged.
func (s *Posts) UpdatePost(ctx context.Context, profileID, postID uint, description *string) (*models.Post, error) {
	var updated *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := repositories.NewPostgresPostRepository(tx)
		if _, err := s.ownedPost(ctx, posts, profileID, postID); err != nil {
			return err
		}
		if description != nil {
			if err := posts.UpdateDescription(ctx, postID, description); err != nil {
				if errors.Is(err, repositories.ErrPostNotFound) {
					return NotFound("post not found")
				}
				return err
			}
		}
		var err error
		updated, err = posts.GetPostByID(ctx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePost removes a post owned by profileID. Likes go with it; the image
// is removed afterwards on a best-effort basis.
func (s *Posts) DeletePost(ctx context.Context, profileID, postID uint) error {
	var key string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := repositories.NewPostgresPostRepository(tx)
		post, err := s.ownedPost(ctx, posts, profileID, postID)
		if err != nil {
			return err
		}
		key = post.Image
		if err := posts.DeletePost(ctx, postID); err != nil {
			if errors.Is(err, repositories.ErrPostNotFound) {
				return NotFound("post not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.images.DeleteImage(context.WithoutCancel(ctx), key)
	return nil
}

func (s *Posts) ownedPost(ctx context.Context, posts repositories.PostRepository, profileID, postID uint) (*models.Post, error) {
	post, err := posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFoundIfMissing(err, "post not found")
	}
	if post.ProfileID != profileID {
		return nil, InvalidOperation("you can only modify your own posts")
	}
	return post, nil
}

// ListPosts returns the posts owned by profileID, newest first.
func (s *Posts) ListPosts(ctx context.Context, profileID uint) ([]models.Post, error) {
	exists, err := repositories.NewPostgresProfileRepository(s.db).ProfileExists(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, NotFound("profile not found")
	}
	return repositories.NewPostgresPostRepository(s.db).GetPostsByProfileID(ctx, profileID)
}

// ToggleLike removes the like edge if it exists and creates it otherwise.
func (s *Posts) ToggleLike(ctx context.Context, profileID, postID uint) (*LikeResult, error) {
	result := &LikeResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		likes := repositories.NewPostgresLikeRepository(tx)

		exists, err := repositories.NewPostgresPostRepository(tx).PostExists(ctx, postID)
		if err != nil {
			return err
		}
		if !exists {
			return NotFound("post not found")
		}

		removed, err := likes.DeleteLike(ctx, postID, profileID)
		if err != nil {
			return err
		}
		if !removed {
			if err := likes.CreateLike(ctx, &models.Like{PostID: postID, ProfileID: profileID}); err != nil {
				return err
			}
		}
		result.Liked = !removed

		result.LikeCount, err = likes.GetLikesCountByPostID(ctx, postID)
		return err
	})
	if isDuplicate(err) {
		// A concurrent toggle created the edge first.
		result.Liked = true
		result.LikeCount, err = repositories.NewPostgresLikeRepository(s.db).GetLikesCountByPostID(ctx, postID)
	}
	if err != nil {
		return nil, err
	}

	if result.Liked {
		metrics.Likes.WithLabelValues("liked").Inc()
	} else {
		metrics.Likes.WithLabelValues("unliked").Inc()
	}
	return result, nil
}

// ListLikedPosts returns every post profileID has liked, latest like first.
func (s *Posts) ListLikedPosts(ctx context.Context, profileID uint) ([]models.Post, error) {
	return repositories.NewPostgresLikeRepository(s.db).GetLikedPosts(ctx, profileID)
}

// LikedBy reports which of posts the viewer has liked.
func (s *Posts) LikedBy(ctx context.Context, viewerID uint, posts []models.Post) (map[uint]bool, error) {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return repositories.NewPostgresLikeRepository(s.db).GetLikedPostIDs(ctx, viewerID, ids)
}
