package store

import (
	"context"
	"errors"
	"fmt"

	"example.com/socialfeed/internal/models"
	"gorm.io/gorm"
)

// --- User operations ---

// CreateUser inserts a new account. A username collision, including one lost
// to a concurrent registration, returns ErrUsernameTaken.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	u := models.User{Username: username, PasswordHash: passwordHash}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || s.usernameExists(ctx, username) {
			return models.User{}, ErrUsernameTaken
		}
		logg.Error("store", "Failed to create user", err)
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	logg.Info("store", fmt.Sprintf("User created successfully user_id=%d", u.ID))
	return u, nil
}

// usernameExists backs up driver error translation for unique violations.
func (s *Store) usernameExists(ctx context.Context, username string) bool {
	var n int64
	s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&n)
	return n > 0
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

// GetUserByUsername matches the username exactly.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}
