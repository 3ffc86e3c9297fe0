package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/antiquestore/antique-store-backend/internal/assets"
	"github.com/antiquestore/antique-store-backend/pkg/db/models"
	"github.com/antiquestore/antique-store-backend/pkg/enums"
	pkgerrors "github.com/antiquestore/antique-store-backend/pkg/errors"
	"github.com/antiquestore/antique-store-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type aggregateLoader interface {
	FindAggregate(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// Archiver stores rendered invoices.
type Archiver interface {
	Upload(ctx context.Context, input assets.UploadInput) (*assets.Locator, error)
}

// Requester identifies who is asking for an invoice.
type Requester struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// Invoice is a rendered PDF ready to stream.
type Invoice struct {
	FileName string
	Number   string
	Content  []byte
}

// Service exposes invoice rendering and archiving.
type Service interface {
	Generate(ctx context.Context, orderID uuid.UUID, requester Requester) (*Invoice, error)
	Archive(ctx context.Context, orderID uuid.UUID) (*assets.Locator, error)
}

type service struct {
	orders   aggregateLoader
	renderer Renderer
	archiver Archiver
	settings Settings
	logg     *logger.Logger
}

// NewService builds the invoice service. The archiver is optional; Archive
// reports a dependency error without one.
func NewService(orders aggregateLoader, renderer Renderer, archiver Archiver, settings Settings, logg *logger.Logger) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orders:   orders,
		renderer: renderer,
		archiver: archiver,
		settings: settings,
		logg:     logg,
	}, nil
}

func (s *service) Generate(ctx context.Context, orderID uuid.UUID, requester Requester) (*Invoice, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin && (requester.UserID == uuid.Nil || requester.UserID != order.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "invoice belongs to another customer")
	}
	return s.render(ctx, order)
}

func (s *service) Archive(ctx context.Context, orderID uuid.UUID) (*assets.Locator, error) {
	if s.archiver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "invoice archive not configured")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	invoice, err := s.render(ctx, order)
	if err != nil {
		return nil, err
	}

	loc, err := s.archiver.Upload(ctx, assets.UploadInput{
		Class:    enums.AssetClassInvoice,
		FileName: invoice.FileName,
		Name:     fileBaseName(order),
		Body:     invoice.Content,
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":  orderID.String(),
		"public_id": loc.PublicID,
	}), "invoice archived")
	return loc, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindAggregate(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) render(ctx context.Context, order *models.Order) (*Invoice, error) {
	doc := BuildDocument(order, s.settings)
	content, err := s.renderer.Render(doc)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.ID.String()), "invoice render failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "render invoice")
	}
	return &Invoice{
		FileName: fileBaseName(order) + ".pdf",
		Number:   doc.InvoiceNumber,
		Content:  content,
	}, nil
}

// fileBaseName names the invoice file. Orders without a number fall back to
// their id so archived objects never collide; path separators are flattened.
func fileBaseName(order *models.Order) string {
	if number := InvoiceNumber(order); number != Placeholder {
		return strings.NewReplacer("/", "-", `\`, "-").Replace(number)
	}
	return "INV-" + order.ID.String()
}
