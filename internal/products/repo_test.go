package products

import (
	"context"
	"testing"

	"github.com/antiquestore/antique-store-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Product{}))
	return db
}

func TestRepositoryFindByID(t *testing.T) {
	db := setupProductsTestDB(t)
	months := 24
	product := models.Product{Name: "Oak Grandfather Clock", Price: decimal.RequireFromString("3400"), WarrantyMonths: &months}
	require.NoError(t, db.Create(&product).Error)

	repo := NewRepository(db)
	found, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oak Grandfather Clock", found.Name)
	require.NotNil(t, found.WarrantyMonths)
	assert.Equal(t, 24, *found.WarrantyMonths)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateImageReturnsPrevious(t *testing.T) {
	db := setupProductsTestDB(t)
	oldID := "products/old.jpg"
	product := models.Product{Name: "Tea Set", ImagePublicID: &oldID}
	require.NoError(t, db.Create(&product).Error)

	repo := NewRepository(db)
	previous, err := repo.UpdateImage(context.Background(), product.ID, "https://cdn/products/new.jpg", "products/new.jpg")
	require.NoError(t, err)
	require.NotNil(t, previous)
	assert.Equal(t, oldID, *previous)

	found, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "products/new.jpg", *found.ImagePublicID)
	assert.Equal(t, "https://cdn/products/new.jpg", *found.ImageURL)
}
