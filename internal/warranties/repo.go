package warranties

import (
	"context"
	"strings"
	"time"

	"github.com/antiquestore/antique-store-backend/pkg/db/models"
	"github.com/antiquestore/antique-store-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes warranty persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a warranty repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, warranty *models.Warranty) (*models.Warranty, error) {
	if err := r.db.WithContext(ctx).Create(warranty).Error; err != nil {
		return nil, err
	}
	return warranty, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Warranty, error) {
	var warranty models.Warranty
	err := r.withRelations(ctx).Where("warranties.id = ?", id).First(&warranty).Error
	if err != nil {
		return nil, err
	}
	return &warranty, nil
}

// FindByCode matches the code exactly; codes are case sensitive.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Warranty, error) {
	var warranty models.Warranty
	err := r.withRelations(ctx).Where("warranties.warranty_code = ?", code).First(&warranty).Error
	if err != nil {
		return nil, err
	}
	return &warranty, nil
}

func (r *Repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Warranty, error) {
	var rows []models.Warranty
	err := r.withRelations(ctx).
		Where("warranties.order_id = ?", orderID).
		Order("warranties.created_at ASC").
		Order("warranties.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns one page of warranties plus the unpaged total.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Warranty, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Warranty{}).
		Joins("LEFT JOIN products ON products.id = warranties.product_id").
		Joins("LEFT JOIN orders ON orders.id = warranties.order_id")

	if opts.status != nil {
		query = query.Where("warranties.status = ?", *opts.status)
	}
	if term := strings.TrimSpace(opts.search); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		query = query.Where(
			`LOWER(warranties.warranty_code) LIKE ? ESCAPE '\'
			OR LOWER(COALESCE(warranties.issue_description, '')) LIKE ? ESCAPE '\'
			OR LOWER(COALESCE(warranties.admin_notes, '')) LIKE ? ESCAPE '\'
			OR LOWER(COALESCE(products.name, '')) LIKE ? ESCAPE '\'
			OR LOWER(COALESCE(orders.order_number, '')) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Warranty
	err := query.
		Preload("Order").
		Preload("Product").
		Order("warranties.created_at DESC").
		Order("warranties.id DESC").
		Limit(opts.limit).
		Offset(opts.offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update writes the given columns and bumps updated_at.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any, now time.Time) error {
	values := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		values[key] = value
	}
	values["updated_at"] = now

	res := r.db.WithContext(ctx).Model(&models.Warranty{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Warranty{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ExpireBefore moves active warranties whose expiry date is not after cutoff
// to expired and reports how many rows changed.
func (r *Repository) ExpireBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Warranty{}).
		Where("status = ? AND expiry_date <= ?", enums.WarrantyStatusActive, cutoff).
		Updates(map[string]any{
			"status":     enums.WarrantyStatusExpired,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *Repository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Order").Preload("Product")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
