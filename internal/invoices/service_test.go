package invoices

import (
	"context"
	"errors"
	"testing"

	"github.com/antiquestore/antique-store-backend/internal/assets"
	"github.com/antiquestore/antique-store-backend/pkg/db/models"
	"github.com/antiquestore/antique-store-backend/pkg/enums"
	pkgerrors "github.com/antiquestore/antique-store-backend/pkg/errors"
	"github.com/antiquestore/antique-store-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubLoader struct {
	order *models.Order
	err   error
}

func (s *stubLoader) FindAggregate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

type stubRenderer struct {
	docs []Document
	err  error
}

func (s *stubRenderer) Render(doc Document) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.docs = append(s.docs, doc)
	return []byte("%PDF-stub"), nil
}

type stubArchiver struct {
	input assets.UploadInput
	err   error
}

func (s *stubArchiver) Upload(ctx context.Context, input assets.UploadInput) (*assets.Locator, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.input = input
	return &assets.Locator{PublicID: "invoices/inv-ord-1001.pdf", Class: input.Class}, nil
}

func TestGenerateChecksOwnership(t *testing.T) {
	order := sampleOrder(2)
	renderer := &stubRenderer{}
	svc, err := NewService(&stubLoader{order: order}, renderer, nil, testSettings, logger.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	invoice, err := svc.Generate(ctx, order.ID, Requester{UserID: order.UserID})
	if err != nil {
		t.Fatalf("owner generate: %v", err)
	}
	if invoice.FileName != "INV-ORD-1001.pdf" || string(invoice.Content) != "%PDF-stub" {
		t.Fatalf("unexpected invoice %+v", invoice)
	}
	if len(renderer.docs) != 1 || len(renderer.docs[0].Rows) != 2 {
		t.Fatal("expected the built document to reach the renderer")
	}

	if _, err := svc.Generate(ctx, order.ID, Requester{IsAdmin: true}); err != nil {
		t.Fatalf("admin generate: %v", err)
	}

	_, err = svc.Generate(ctx, order.ID, Requester{UserID: uuid.New()})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = svc.Generate(ctx, uuid.New(), Requester{IsAdmin: true})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGenerateSurfacesFailures(t *testing.T) {
	order := sampleOrder(1)

	svc, _ := NewService(&stubLoader{err: errors.New("connection refused")}, &stubRenderer{}, nil, testSettings, logger.Nop())
	if _, err := svc.Generate(context.Background(), order.ID, Requester{IsAdmin: true}); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error for load failure, got %v", err)
	}

	svc, _ = NewService(&stubLoader{order: order}, &stubRenderer{err: errors.New("font missing")}, nil, testSettings, logger.Nop())
	if _, err := svc.Generate(context.Background(), order.ID, Requester{IsAdmin: true}); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error for render failure, got %v", err)
	}
}

func TestArchiveUploadsInvoiceClass(t *testing.T) {
	order := sampleOrder(2)
	archiver := &stubArchiver{}
	svc, _ := NewService(&stubLoader{order: order}, &stubRenderer{}, archiver, testSettings, logger.Nop())

	loc, err := svc.Archive(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if loc.PublicID != "invoices/inv-ord-1001.pdf" {
		t.Fatalf("unexpected locator %+v", loc)
	}
	if archiver.input.Class != enums.AssetClassInvoice || archiver.input.Name != "INV-ORD-1001" {
		t.Fatalf("unexpected upload input %+v", archiver.input)
	}

	noArchive, _ := NewService(&stubLoader{order: order}, &stubRenderer{}, nil, testSettings, logger.Nop())
	if _, err := noArchive.Archive(context.Background(), order.ID); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error without archiver, got %v", err)
	}
}

func TestArchiveFallsBackToOrderIDWithoutNumber(t *testing.T) {
	first := sampleOrder(1)
	first.OrderNumber = "  "
	second := sampleOrder(1)
	second.OrderNumber = ""

	var names []string
	for _, order := range []*models.Order{first, second} {
		archiver := &stubArchiver{}
		svc, _ := NewService(&stubLoader{order: order}, &stubRenderer{}, archiver, testSettings, logger.Nop())
		if _, err := svc.Archive(context.Background(), order.ID); err != nil {
			t.Fatalf("archive: %v", err)
		}
		want := "INV-" + order.ID.String()
		if archiver.input.Name != want || archiver.input.FileName != want+".pdf" {
			t.Fatalf("unexpected upload input %+v", archiver.input)
		}
		names = append(names, archiver.input.Name)
	}
	if names[0] == names[1] {
		t.Fatalf("orders without numbers must not share an archive name, got %q", names[0])
	}
}

func TestArchiveFlattensSlashesInOrderNumber(t *testing.T) {
	order := sampleOrder(1)
	order.OrderNumber = "2026/03/17"
	archiver := &stubArchiver{}
	svc, _ := NewService(&stubLoader{order: order}, &stubRenderer{}, archiver, testSettings, logger.Nop())

	if _, err := svc.Archive(context.Background(), order.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archiver.input.Name != "INV-2026-03-17" {
		t.Fatalf("unexpected archive name %q", archiver.input.Name)
	}
}
