package repositories

import (
	"context"

	"github.com/anonto42/snapgram/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, postID, profileID uint) (bool, error)
	HasProfileLikedPost(ctx context.Context, postID, profileID uint) (bool, error)
	GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error)
	GetLikedPosts(ctx context.Context, profileID uint) ([]models.Post, error)
	GetLikedPostIDs(ctx context.Context, profileID uint, postIDs []uint) (map[uint]bool, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// DeleteLike removes the edge and reports whether one existed.
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID, profileID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND profile_id = ?", postID, profileID).Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresLikeRepository) HasProfileLikedPost(ctx context.Context, postID, profileID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND profile_id = ?", postID, profileID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresLikeRepository) GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetLikedPosts returns the posts a profile liked, most recent like first.
func (r *PostgresLikeRepository) GetLikedPosts(ctx context.Context, profileID uint) ([]models.Post, error) {
	posts := []models.Post{}
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(postColumns).
		Joins("JOIN likes ON likes.post_id = posts.id").
		Where("likes.profile_id = ?", profileID).
		Order("likes.created_at DESC, likes.id DESC").
		Preload("Profile").
		Preload("Profile.User").
		Find(&posts).Error
	return posts, err
}

// GetLikedPostIDs reports which of postIDs the profile has liked.
func (r *PostgresLikeRepository) GetLikedPostIDs(ctx context.Context, profileID uint, postIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var liked []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("profile_id = ? AND post_id IN ?", profileID, postIDs).
		Pluck("post_id", &liked).Error
	if err != nil {
		return nil, err
	}
	for _, id := range liked {
		result[id] = true
	}
	return result, nil
}
