package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/antiquestore/antique-store-backend/pkg/enums"
)

// Warranty is a product guarantee issued against one line of an order.
type Warranty struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	WarrantyCode     string               `gorm:"column:warranty_code;not null;uniqueIndex:warranties_warranty_code_key"`
	OrderID          uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID        uuid.UUID            `gorm:"column:product_id;type:uuid;not null;index"`
	WarrantyDate     time.Time            `gorm:"column:warranty_date;not null"`
	ExpiryDate       time.Time            `gorm:"column:expiry_date;not null;index"`
	WarrantyPeriod   int                  `gorm:"column:warranty_period;not null"`
	Status           enums.WarrantyStatus `gorm:"column:status;type:varchar(20);not null;default:'active';index"`
	IssueDescription *string              `gorm:"column:issue_description"`
	AdminNotes       *string              `gorm:"column:admin_notes"`
	Order            *Order               `gorm:"foreignKey:OrderID"`
	Product          *Product             `gorm:"foreignKey:ProductID"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (w *Warranty) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
