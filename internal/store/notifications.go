package store

import (
	"context"
	"fmt"

	"example.com/socialfeed/internal/models"
)

// ListNotifications returns userID's notifications, newest first, with the sender loaded.
// It does not change read state; see MarkNotificationsRead.
func (s *Store) ListNotifications(ctx context.Context, userID uint) ([]models.Notification, error) {
	var ns []models.Notification
	err := s.db.WithContext(ctx).
		Preload("Sender").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&ns).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return ns, nil
}

// MarkNotificationsRead flags every unread notification of userID as read
// and returns how many changed.
func (s *Store) MarkNotificationsRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		logg.Error("store", "Failed to mark notifications read", res.Error)
		return 0, fmt.Errorf("mark notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) CountUnreadNotifications(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}
