package repository

import (
	"context"

	"foodgram/internal/domain/user"

	"gorm.io/gorm"
)

// FollowRepository persists user subscriptions. Same membership contract
// as favorites and cart items; the self-follow guard lives in the service.
type FollowRepository interface {
	Add(ctx context.Context, userID, authorID int64) error
	Remove(ctx context.Context, userID, authorID int64) error
	Exists(ctx context.Context, userID, authorID int64) (bool, error)
	ListAuthors(ctx context.Context, userID int64, limit, offset int) ([]user.User, int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Add(ctx context.Context, userID, authorID int64) error {
	follow := &user.Follow{UserID: userID, AuthorID: authorID}
	err := r.db.WithContext(ctx).Create(follow).Error
	if isUniqueViolation(err) {
		return user.ErrAlreadyFollowing
	}
	return err
}

func (r *followRepository) Remove(ctx context.Context, userID, authorID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&user.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrNotFollowing
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&user.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// ListAuthors returns the authors the user subscribed to, newest
// subscription first, with the total for pagination.
func (r *followRepository) ListAuthors(ctx context.Context, userID int64, limit, offset int) ([]user.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&user.Follow{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []user.User
	query := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Order("follows.created_at DESC, follows.id DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&authors).Error; err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}
