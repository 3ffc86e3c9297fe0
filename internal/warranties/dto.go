package warranties

import (
	"strings"
	"time"

	"github.com/antiquestore/antique-store-backend/pkg/db/models"
	"github.com/antiquestore/antique-store-backend/pkg/enums"
	pkgpagination "github.com/antiquestore/antique-store-backend/pkg/pagination"
	"github.com/antiquestore/antique-store-backend/pkg/types"
	"github.com/google/uuid"
)

const (
	DefaultPeriodMonths = 12
	MinPeriodMonths     = 1
	MaxPeriodMonths     = 120
	MaxExportRows       = 5000
)

// ListFilters narrows the admin list and export.
type ListFilters struct {
	Search string
	Status *enums.WarrantyStatus
}

type ListParams struct {
	ListFilters
	pkgpagination.Params
}

type ListResult struct {
	Items []Warranty     `json:"items"`
	Meta  types.ListMeta `json:"meta"`
}

// CreateInput carries the admin create request. Optional fields fall back to
// product and clock defaults.
type CreateInput struct {
	OrderID          uuid.UUID
	ProductID        uuid.UUID
	WarrantyPeriod   *int
	WarrantyDate     *time.Time
	IssueDescription *string
	AdminNotes       *string
}

type UpdateInput struct {
	Status           *enums.WarrantyStatus
	IssueDescription *string
	AdminNotes       *string
	Override         bool
}

type StatusInput struct {
	Status     enums.WarrantyStatus
	AdminNotes *string
	Override   bool
}

// Warranty is the admin view of a warranty record.
type Warranty struct {
	ID               uuid.UUID              `json:"id"`
	WarrantyCode     string                 `json:"warranty_code"`
	OrderID          uuid.UUID              `json:"order_id"`
	OrderNumber      string                 `json:"order_number,omitempty"`
	ProductID        uuid.UUID              `json:"product_id"`
	ProductName      string                 `json:"product_name,omitempty"`
	WarrantyDate     time.Time              `json:"warranty_date"`
	ExpiryDate       time.Time              `json:"expiry_date"`
	WarrantyPeriod   int                    `json:"warranty_period"`
	Status           enums.WarrantyStatus   `json:"status"`
	NextStatuses     []enums.WarrantyStatus `json:"next_statuses"`
	IssueDescription *string                `json:"issue_description"`
	AdminNotes       *string                `json:"admin_notes"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// PublicWarranty is returned by code lookup. Admin notes never leave the
// back office.
type PublicWarranty struct {
	WarrantyCode     string               `json:"warranty_code"`
	OrderNumber      string               `json:"order_number,omitempty"`
	ProductName      string               `json:"product_name,omitempty"`
	WarrantyDate     time.Time            `json:"warranty_date"`
	ExpiryDate       time.Time            `json:"expiry_date"`
	WarrantyPeriod   int                  `json:"warranty_period"`
	Status           enums.WarrantyStatus `json:"status"`
	IssueDescription *string              `json:"issue_description"`
	IsExpired        bool                 `json:"is_expired"`
}

type listQuery struct {
	search string
	status *enums.WarrantyStatus
	limit  int
	offset int
}

func toWarranty(m models.Warranty) Warranty {
	out := Warranty{
		ID:               m.ID,
		WarrantyCode:     m.WarrantyCode,
		OrderID:          m.OrderID,
		ProductID:        m.ProductID,
		WarrantyDate:     m.WarrantyDate,
		ExpiryDate:       m.ExpiryDate,
		WarrantyPeriod:   m.WarrantyPeriod,
		Status:           m.Status,
		NextStatuses:     m.Status.AllowedTransitions(),
		IssueDescription: m.IssueDescription,
		AdminNotes:       m.AdminNotes,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.Order != nil {
		out.OrderNumber = m.Order.OrderNumber
	}
	if m.Product != nil {
		out.ProductName = m.Product.Name
	}
	return out
}

func toPublicWarranty(m models.Warranty, now time.Time) PublicWarranty {
	out := PublicWarranty{
		WarrantyCode:     m.WarrantyCode,
		WarrantyDate:     m.WarrantyDate,
		ExpiryDate:       m.ExpiryDate,
		WarrantyPeriod:   m.WarrantyPeriod,
		Status:           m.Status,
		IssueDescription: m.IssueDescription,
		IsExpired:        m.Status == enums.WarrantyStatusExpired || !now.Before(m.ExpiryDate),
	}
	if m.Order != nil {
		out.OrderNumber = m.Order.OrderNumber
	}
	if m.Product != nil {
		out.ProductName = m.Product.Name
	}
	return out
}

// cleanText trims optional free text; blank input clears the field.
func cleanText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
