package products

import (
	"context"

	"github.com/antiquestore/antique-store-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads catalog rows and records product image locations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateImage points a product at a newly uploaded asset and returns the
// previous public id, if any, so the caller can remove the old object.
func (r *Repository) UpdateImage(ctx context.Context, id uuid.UUID, url, publicID string) (*string, error) {
	var previous *string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Select("id", "image_public_id").Where("id = ?", id).First(&product).Error; err != nil {
			return err
		}
		previous = product.ImagePublicID
		return tx.Model(&models.Product{}).
			Where("id = ?", id).
			Updates(map[string]any{"image_url": url, "image_public_id": publicID}).Error
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}
