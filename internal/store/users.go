package store

import (
	"context"
	"strings"

	"github.com/boardwalk-dev/boardwalk/internal/models"
	"github.com/boardwalk-dev/boardwalk/internal/types"
	"gorm.io/gorm"
)

type UserStore struct {
	db *gorm.DB
}

// NormalizeEmail lower-cases and trims an address before it is stored or
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user. A taken email yields types.ErrConflict.
func (s *UserStore) Create(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	email = NormalizeEmail(email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, types.ErrConflict
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, translate(err)
	}

	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
