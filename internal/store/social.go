package store

import (
	"context"
	"fmt"

	"example.com/socialfeed/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Follow operations ---

// Follow makes followerID follow followedID and notifies followedID, in one
// transaction. It reports false without writing anything when the two ids are
// equal or the edge already exists. The edge's primary key makes concurrent
// identical requests collapse into a single edge and a single notification.
func (s *Store) Follow(ctx context.Context, followerID, followedID uint) (bool, error) {
	if followerID == followedID {
		return false, nil
	}

	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Follow{FollowerID: followerID, FollowedID: followedID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		created = true
		return tx.Omit(clause.Associations).Create(&models.Notification{
			UserID:   followedID,
			SenderID: followerID,
			Message:  models.FollowMessage,
		}).Error
	})
	if err != nil {
		logg.Error("store", "Failed to create follow relationship", err)
		return false, fmt.Errorf("follow: %w", err)
	}
	return created, nil
}

// Unfollow removes the edge if present and reports whether one was removed.
func (s *Store) Unfollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		logg.Error("store", "Failed to delete follow relationship", res.Error)
		return false, fmt.Errorf("unfollow: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("is following: %w", err)
	}
	return n > 0, nil
}

// ListFollowing returns the users userID follows, oldest edge first.
func (s *Store) ListFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN followers ON followers.followed_id = users.id").
		Where("followers.follower_id = ?", userID).
		Order("followers.created_at, followers.followed_id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return users, nil
}
