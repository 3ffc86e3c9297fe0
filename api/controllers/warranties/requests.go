package warranties

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/antiquestore/antique-store-backend/api/validators"
	internalwarranties "github.com/antiquestore/antique-store-backend/internal/warranties"
	"github.com/antiquestore/antique-store-backend/pkg/enums"
	pkgerrors "github.com/antiquestore/antique-store-backend/pkg/errors"
)

type createWarrantyRequest struct {
	OrderID          string  `json:"order_id" validate:"required,uuid"`
	ProductID        string  `json:"product_id" validate:"required,uuid"`
	WarrantyPeriod   *int    `json:"warranty_period,omitempty" validate:"omitempty,min=1,max=120"`
	WarrantyDate     *string `json:"warranty_date,omitempty"`
	IssueDescription *string `json:"issue_description,omitempty"`
	AdminNotes       *string `json:"admin_notes,omitempty"`
}

func (r createWarrantyRequest) toInput() (internalwarranties.CreateInput, error) {
	orderID, err := uuid.Parse(r.OrderID)
	if err != nil {
		return internalwarranties.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order_id")
	}
	productID, err := uuid.Parse(r.ProductID)
	if err != nil {
		return internalwarranties.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id")
	}
	input := internalwarranties.CreateInput{
		OrderID:          orderID,
		ProductID:        productID,
		WarrantyPeriod:   r.WarrantyPeriod,
		IssueDescription: validators.SanitizeOptional(r.IssueDescription, maxTextLength),
		AdminNotes:       validators.SanitizeOptional(r.AdminNotes, maxTextLength),
	}
	if r.WarrantyDate != nil && strings.TrimSpace(*r.WarrantyDate) != "" {
		date, err := parseDate(*r.WarrantyDate)
		if err != nil {
			return internalwarranties.CreateInput{}, err
		}
		input.WarrantyDate = &date
	}
	return input, nil
}

// parseDate accepts RFC 3339 timestamps or plain calendar dates.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "warranty_date must be YYYY-MM-DD or RFC 3339").
		WithDetails(map[string]string{"warranty_date": "is invalid"})
}

type updateWarrantyRequest struct {
	Status           *string `json:"status,omitempty" validate:"omitempty,warranty_status"`
	IssueDescription *string `json:"issue_description,omitempty"`
	AdminNotes       *string `json:"admin_notes,omitempty"`
	Override         bool    `json:"override,omitempty"`
}

func (r updateWarrantyRequest) toInput() internalwarranties.UpdateInput {
	input := internalwarranties.UpdateInput{
		IssueDescription: validators.SanitizeOptional(r.IssueDescription, maxTextLength),
		AdminNotes:       validators.SanitizeOptional(r.AdminNotes, maxTextLength),
		Override:         r.Override,
	}
	if r.Status != nil {
		status := enums.WarrantyStatus(*r.Status)
		input.Status = &status
	}
	return input
}

type statusRequest struct {
	Status     string  `json:"status" validate:"required,warranty_status"`
	AdminNotes *string `json:"admin_notes,omitempty"`
	Override   bool    `json:"override,omitempty"`
}
