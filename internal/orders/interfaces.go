package orders

import (
	"context"

	"github.com/antiquestore/antique-store-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads orders and their line items. Orders are written by the
// storefront; nothing here mutates them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindWithItems(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindAggregate(ctx context.Context, id uuid.UUID) (*models.Order, error)
}
