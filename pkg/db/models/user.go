package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/antiquestore/antique-store-backend/pkg/enums"
)

// User is the storefront account referenced by orders.
type User struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	FullName       string         `gorm:"column:full_name;not null"`
	Email          string         `gorm:"column:email;not null;uniqueIndex"`
	Phone          *string        `gorm:"column:phone"`
	Address        *string        `gorm:"column:address"`
	Role           enums.UserRole `gorm:"column:role;type:varchar(20);not null;default:'customer'"`
	AvatarURL      *string        `gorm:"column:avatar_url"`
	AvatarPublicID *string        `gorm:"column:avatar_public_id"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
