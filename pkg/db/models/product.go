package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry; warranty defaults come from WarrantyMonths.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	SKU            *string         `gorm:"column:sku"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	WarrantyMonths *int            `gorm:"column:warranty_months"`
	ImageURL       *string         `gorm:"column:image_url"`
	ImagePublicID  *string         `gorm:"column:image_public_id"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
