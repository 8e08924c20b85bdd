package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/snapgram/backend/internal/models"
	"gorm.io/gorm"
)

// ErrPostNotFound is returned when a post to modify does not exist.
var ErrPostNotFound = errors.New("post not found")

// postColumns selects a post with its like count derived from the likes table.
const postColumns = "posts.*, (SELECT COUNT(*) FROM likes lc WHERE lc.post_id = posts.id) AS like_count"

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	PostExists(ctx context.Context, id uint) (bool, error)
	GetPostsByProfileID(ctx context.Context, profileID uint) ([]models.Post, error)
	GetPostsByProfileIDs(ctx context.Context, profileIDs []uint) ([]models.Post, error)
	GetPostsCount(ctx context.Context, profileID uint) (int64, error)
	UpdateDescription(ctx context.Context, id uint, description *string) error
	DeletePost(ctx context.Context, id uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) withAuthor(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(postColumns).
		Preload("Profile").
		Preload("Profile.User")
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.withAuthor(ctx).Where("posts.id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) PostExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// GetPostsByProfileID returns a profile's posts, newest first
func (r *PostgresPostRepository) GetPostsByProfileID(ctx context.Context, profileID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.withAuthor(ctx).
		Where("posts.profile_id = ?", profileID).
		Order("posts.created_at DESC, posts.id ASC").
		Find(&posts).Error
	return posts, err
}

// GetPostsByProfileIDs returns the union of posts owned by any of the
// given profiles, newest first. Posts sharing a created_at keep insertion
// order.
func (r *PostgresPostRepository) GetPostsByProfileIDs(ctx context.Context, profileIDs []uint) ([]models.Post, error) {
	posts := []models.Post{}
	if len(profileIDs) == 0 {
		return posts, nil
	}
	err := r.withAuthor(ctx).
		Where("posts.profile_id IN ?", profileIDs).
		Order("posts.created_at DESC, posts.id ASC").
		Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) GetPostsCount(ctx context.Context, profileID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("profile_id = ?", profileID).Count(&count).Error
	return count, err
}

func (r *PostgresPostRepository) UpdateDescription(ctx context.Context, id uint, description *string) error {
	res := r.db.WithContext(ctx).Model(&models.Post{ID: id}).Update("description", description)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}
