package users

import (
	"context"

	"github.com/antiquestore/antique-store-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateAvatar stores the new avatar location and returns the public id it
// replaced, if any.
func (r *Repository) UpdateAvatar(ctx context.Context, id uuid.UUID, url, publicID string) (*string, error) {
	var previous *string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id", "avatar_public_id").First(&user, "id = ?", id).Error; err != nil {
			return err
		}
		previous = user.AvatarPublicID
		return tx.Model(&models.User{}).
			Where("id = ?", id).
			Updates(map[string]any{"avatar_url": url, "avatar_public_id": publicID}).Error
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}
