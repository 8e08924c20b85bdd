package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/snapgram/backend/internal/models"
	"gorm.io/gorm"
)

// ErrFollowNotFound is returned when deleting an edge that does not exist.
var ErrFollowNotFound = errors.New("follow relationship not found")

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follower) error
	DeleteFollow(ctx context.Context, followerID, followingID uint) error
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	GetFollowers(ctx context.Context, profileID uint) ([]models.Profile, error)
	GetFollowing(ctx context.Context, profileID uint) ([]models.Profile, error)
	GetFollowersCount(ctx context.Context, profileID uint) (int64, error)
	GetFollowingCount(ctx context.Context, profileID uint) (int64, error)
	GetFollowingIDs(ctx context.Context, profileID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follower) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follower{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFollowNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follower{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, profileID uint) ([]models.Profile, error) {
	db := r.db.WithContext(ctx)
	var profiles []models.Profile
	err := db.Preload("User").Where("id IN (?)",
		db.Model(&models.Follower{}).Select("follower_id").Where("following_id = ?", profileID),
	).Order("id").Find(&profiles).Error
	return profiles, err
}

func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, profileID uint) ([]models.Profile, error) {
	db := r.db.WithContext(ctx)
	var profiles []models.Profile
	err := db.Preload("User").Where("id IN (?)",
		db.Model(&models.Follower{}).Select("following_id").Where("follower_id = ?", profileID),
	).Order("id").Find(&profiles).Error
	return profiles, err
}

func (r *PostgresFollowRepository) GetFollowersCount(ctx context.Context, profileID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follower{}).Where("following_id = ?", profileID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingCount(ctx context.Context, profileID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follower{}).Where("follower_id = ?", profileID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, profileID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follower{}).Where("follower_id = ?", profileID).Pluck("following_id", &ids).Error
	return ids, err
}
