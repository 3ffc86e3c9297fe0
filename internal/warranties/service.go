package warranties

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	pkgdb "github.com/antiquestore/antique-store-backend/pkg/db"
	"github.com/antiquestore/antique-store-backend/pkg/db/models"
	"github.com/antiquestore/antique-store-backend/pkg/enums"
	pkgerrors "github.com/antiquestore/antique-store-backend/pkg/errors"
	"github.com/antiquestore/antique-store-backend/pkg/logger"
	pkgpagination "github.com/antiquestore/antique-store-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errWarrantyNotFound is shared by admin reads and public lookups so that a
// malformed code and an unknown code look the same to callers.
const errWarrantyNotFound = "warranty not found"

type warrantiesRepository interface {
	Create(ctx context.Context, warranty *models.Warranty) (*models.Warranty, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Warranty, error)
	FindByCode(ctx context.Context, code string) (*models.Warranty, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Warranty, error)
	List(ctx context.Context, opts listQuery) ([]models.Warranty, int64, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any, now time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExpireBefore(ctx context.Context, cutoff, now time.Time) (int64, error)
}

type ordersReader interface {
	FindWithItems(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type productsReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type transitionRecorder interface {
	IncTransition(from, to string, override bool)
	AddTransitions(from, to string, override bool, n int64)
	IncLookup(found bool)
}

// Service exposes warranty administration, public lookup and the expiry sweep.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*Warranty, error)
	GetByCode(ctx context.Context, code string) (*PublicWarranty, error)
	Create(ctx context.Context, input CreateInput) (*Warranty, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Warranty, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*Warranty, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Warranty, error)
	Export(ctx context.Context, filters ListFilters, w io.Writer) (int, error)
	ExpireOverdue(ctx context.Context) (int64, error)
}

type ServiceParams struct {
	Repo     warrantiesRepository
	Orders   ordersReader
	Products productsReader
	Metrics  transitionRecorder
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     warrantiesRepository
	orders   ordersReader
	products productsReader
	metrics  transitionRecorder
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds a warranty service backed by the provided repositories.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("warranty repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		orders:   params.Orders,
		products: params.Products,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      func() time.Time { return now().UTC() },
	}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	page := params.Params.Normalize()
	rows, total, err := s.repo.List(ctx, listQuery{
		search: params.Search,
		status: params.Status,
		limit:  page.Limit,
		offset: page.Offset(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warranties")
	}

	items := make([]Warranty, 0, len(rows))
	for _, row := range rows {
		items = append(items, toWarranty(row))
	}
	return &ListResult{Items: items, Meta: pkgpagination.Meta(page, total)}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Warranty, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toWarranty(*row)
	return &out, nil
}

func (s *service) GetByCode(ctx context.Context, code string) (*PublicWarranty, error) {
	if !ValidCodeFormat(code) {
		s.recordLookup(false)
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, errWarrantyNotFound)
	}
	row, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordLookup(false)
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, errWarrantyNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup warranty")
	}
	s.recordLookup(true)
	out := toPublicWarranty(*row, s.now())
	return &out, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Warranty, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}

	order, err := s.orders.FindWithItems(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	lineIndex := lineIndexOf(order, product.ID)
	if lineIndex == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not part of the order").
			WithDetails(map[string]any{"order_id": order.ID, "product_id": product.ID})
	}

	period := DefaultPeriodMonths
	if product.WarrantyMonths != nil && *product.WarrantyMonths > 0 {
		period = *product.WarrantyMonths
	}
	if input.WarrantyPeriod != nil {
		period = *input.WarrantyPeriod
	}
	if period < MinPeriodMonths || period > MaxPeriodMonths {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("warranty_period must be between %d and %d months", MinPeriodMonths, MaxPeriodMonths))
	}

	now := s.now()
	start := now
	if input.WarrantyDate != nil && !input.WarrantyDate.IsZero() {
		start = input.WarrantyDate.UTC()
	}

	code := FormatCode(order.OrderNumber, lineIndex, now)
	if !ValidCodeFormat(code) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number cannot form a warranty code").
			WithDetails(map[string]any{"order_id": order.ID, "order_number": order.OrderNumber})
	}

	row := &models.Warranty{
		WarrantyCode:     code,
		OrderID:          order.ID,
		ProductID:        product.ID,
		WarrantyDate:     start,
		ExpiryDate:       start.AddDate(0, period, 0),
		WarrantyPeriod:   period,
		Status:           enums.WarrantyStatusActive,
		IssueDescription: cleanText(input.IssueDescription),
		AdminNotes:       cleanText(input.AdminNotes),
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "warranty code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create warranty")
	}

	created.Order = order
	created.Product = product
	ctx = s.logg.WithFields(ctx, map[string]any{
		"warranty_id":   created.ID.String(),
		"warranty_code": created.WarrantyCode,
	})
	s.logg.Info(ctx, "warranty created")

	out := toWarranty(*created)
	return &out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Warranty, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	issue := current.IssueDescription
	if input.IssueDescription != nil {
		issue = cleanText(input.IssueDescription)
		fields["issue_description"] = issue
	}
	if input.AdminNotes != nil {
		fields["admin_notes"] = cleanText(input.AdminNotes)
	}

	from := current.Status
	to := from
	if input.Status != nil {
		to = *input.Status
		if !to.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid warranty status").
				WithDetails(map[string]any{"status": to, "allowed": enums.WarrantyStatuses()})
		}
		if to != from {
			if err := s.checkTransition(current, to, issue, input.Override); err != nil {
				return nil, err
			}
			fields["status"] = to
		}
	}

	if len(fields) == 0 {
		out := toWarranty(*current)
		return &out, nil
	}

	if err := s.repo.Update(ctx, id, fields, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, errWarrantyNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update warranty")
	}

	if to != from {
		if s.metrics != nil {
			s.metrics.IncTransition(string(from), string(to), input.Override)
		}
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"warranty_id": id.String(),
			"from":        string(from),
			"to":          string(to),
		})
		if input.Override && !from.CanTransitionTo(to) {
			s.logg.Warn(logCtx, "warranty status overridden outside lifecycle")
		} else {
			s.logg.Info(logCtx, "warranty status changed")
		}
	}

	return s.Get(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*Warranty, error) {
	status := input.Status
	return s.Update(ctx, id, UpdateInput{
		Status:     &status,
		AdminNotes: input.AdminNotes,
		Override:   input.Override,
	})
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, errWarrantyNotFound)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete warranty")
	}
	s.logg.Info(s.logg.WithField(ctx, "warranty_id", id.String()), "warranty deleted")
	return nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Warranty, error) {
	rows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order warranties")
	}
	out := make([]Warranty, 0, len(rows))
	for _, row := range rows {
		out = append(out, toWarranty(row))
	}
	return out, nil
}

// Export writes every warranty matching filters, newest first, as an XLSX
// workbook and returns the number of data rows written.
func (s *service) Export(ctx context.Context, filters ListFilters, w io.Writer) (int, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	rows, _, err := s.repo.List(ctx, listQuery{
		search: filters.Search,
		status: filters.Status,
		limit:  MaxExportRows,
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warranties for export")
	}

	items := make([]Warranty, 0, len(rows))
	for _, row := range rows {
		items = append(items, toWarranty(row))
	}
	if err := writeWorkbook(w, items, s.now()); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render warranty export")
	}
	return len(items), nil
}

// ExpireOverdue closes every active warranty whose expiry date has passed.
func (s *service) ExpireOverdue(ctx context.Context) (int64, error) {
	now := s.now()
	count, err := s.repo.ExpireBefore(ctx, now, now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire warranties")
	}
	if s.metrics != nil {
		s.metrics.AddTransitions(string(enums.WarrantyStatusActive), string(enums.WarrantyStatusExpired), false, count)
	}
	return count, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Warranty, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, errWarrantyNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load warranty")
	}
	return row, nil
}

// checkTransition applies the lifecycle table and the claim preconditions.
// Override skips both.
func (s *service) checkTransition(current *models.Warranty, to enums.WarrantyStatus, issue *string, override bool) error {
	if override {
		return nil
	}
	from := current.Status
	if !from.CanTransitionTo(to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move warranty from %s to %s", from, to)).
			WithDetails(map[string]any{
				"from":    from,
				"to":      to,
				"allowed": from.AllowedTransitions(),
			})
	}
	if to != enums.WarrantyStatusClaimed {
		return nil
	}
	if issue == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "issue_description is required to claim a warranty")
	}
	if !s.now().Before(current.ExpiryDate) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "warranty has expired").
			WithDetails(map[string]any{"expiry_date": current.ExpiryDate})
	}
	return nil
}

func (s *service) recordLookup(found bool) {
	if s.metrics != nil {
		s.metrics.IncLookup(found)
	}
}

// lineIndexOf returns the 1-based position of productID in the order's
// items, or 0 when the product was not purchased on this order.
func lineIndexOf(order *models.Order, productID uuid.UUID) int {
	for i, item := range order.Items {
		if item.ProductID == productID {
			return i + 1
		}
	}
	return 0
}
