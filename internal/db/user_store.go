package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ekagra-app/ekagra/pkg/models"
)

// UserStore provides user-related database operations.
type UserStore struct {
	store *Store
}

// NewUserStore creates a new user store.
func NewUserStore(store *Store) *UserStore {
	return &UserStore{store: store}
}

// Create inserts a new user.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	return s.store.DB.WithContext(ctx).Create(user).Error
}

// FindByEmail returns the user with the given email, or nil if none.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.store.DB.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns the user with the given ID, or nil if none.
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.store.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePreferences replaces the user's timer preferences and returns the
// updated user, or nil if the user does not exist.
func (s *UserStore) UpdatePreferences(ctx context.Context, id string, prefs models.Preferences) (*models.User, error) {
	res := s.store.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("preferences", prefs)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.FindByID(ctx, id)
}
