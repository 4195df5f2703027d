package store

import (
	"context"
	"fmt"

	"example.com/socialfeed/internal/models"
)

// --- Post operations ---

// CreatePost inserts post and sets its ID.
func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		logg.Error("store", "Failed to insert post", err)
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// ListPosts returns every post, newest id first.
func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}
