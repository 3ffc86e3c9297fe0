package invoices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/antiquestore/antique-store-backend/api/middleware"
	"github.com/antiquestore/antique-store-backend/internal/assets"
	internalinvoices "github.com/antiquestore/antique-store-backend/internal/invoices"
	"github.com/antiquestore/antique-store-backend/pkg/enums"
	pkgerrors "github.com/antiquestore/antique-store-backend/pkg/errors"
)

type stubInvoiceService struct {
	generate func(ctx context.Context, orderID uuid.UUID, requester internalinvoices.Requester) (*internalinvoices.Invoice, error)
	archive  func(ctx context.Context, orderID uuid.UUID) (*assets.Locator, error)
}

func (s *stubInvoiceService) Generate(ctx context.Context, orderID uuid.UUID, requester internalinvoices.Requester) (*internalinvoices.Invoice, error) {
	return s.generate(ctx, orderID, requester)
}

func (s *stubInvoiceService) Archive(ctx context.Context, orderID uuid.UUID) (*assets.Locator, error) {
	return s.archive(ctx, orderID)
}

func newRequest(method string, orderID string, userID string, role enums.UserRole) *http.Request {
	req := httptest.NewRequest(method, "/", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", orderID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID != "" {
		ctx = middleware.WithUserID(ctx, userID)
		ctx = middleware.WithRole(ctx, string(role))
	}
	return req.WithContext(ctx)
}

func TestDownloadStreamsPDF(t *testing.T) {
	orderID := uuid.New()
	userID := uuid.New()
	var captured internalinvoices.Requester
	svc := &stubInvoiceService{
		generate: func(ctx context.Context, gotOrder uuid.UUID, requester internalinvoices.Requester) (*internalinvoices.Invoice, error) {
			if gotOrder != orderID {
				t.Fatalf("unexpected order %s", gotOrder)
			}
			captured = requester
			return &internalinvoices.Invoice{FileName: "INV-ORD-1001.pdf", Number: "INV-ORD-1001", Content: []byte("%PDF-1.3 test")}, nil
		},
	}

	resp := httptest.NewRecorder()
	Download(svc, nil).ServeHTTP(resp, newRequest(http.MethodGet, orderID.String(), userID.String(), enums.UserRoleCustomer))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.UserID != userID || captured.IsAdmin {
		t.Fatalf("unexpected requester %+v", captured)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := resp.Header().Get("Content-Disposition"); got != `inline; filename="INV-ORD-1001.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
}

func TestDownloadAdminAsAttachment(t *testing.T) {
	var captured internalinvoices.Requester
	svc := &stubInvoiceService{
		generate: func(ctx context.Context, orderID uuid.UUID, requester internalinvoices.Requester) (*internalinvoices.Invoice, error) {
			captured = requester
			return &internalinvoices.Invoice{FileName: "INV-ORD-7.pdf", Content: []byte("%PDF")}, nil
		},
	}

	for _, query := range []string{"download=1", "download", "download="} {
		t.Run(query, func(t *testing.T) {
			req := newRequest(http.MethodGet, uuid.NewString(), uuid.NewString(), enums.UserRoleAdmin)
			req.URL.RawQuery = query
			resp := httptest.NewRecorder()
			Download(svc, nil).ServeHTTP(resp, req)

			if !captured.IsAdmin {
				t.Fatal("expected admin requester")
			}
			if got := resp.Header().Get("Content-Disposition"); got != `attachment; filename="INV-ORD-7.pdf"` {
				t.Fatalf("unexpected disposition %q", got)
			}
		})
	}
}

func TestDownloadErrors(t *testing.T) {
	forbidden := &stubInvoiceService{
		generate: func(ctx context.Context, orderID uuid.UUID, requester internalinvoices.Requester) (*internalinvoices.Invoice, error) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "invoice belongs to another customer")
		},
	}

	cases := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{name: "bad order id", req: newRequest(http.MethodGet, "ORD-1", uuid.NewString(), enums.UserRoleCustomer), status: http.StatusBadRequest},
		{name: "no user", req: newRequest(http.MethodGet, uuid.NewString(), "", ""), status: http.StatusUnauthorized},
		{name: "other customer", req: newRequest(http.MethodGet, uuid.NewString(), uuid.NewString(), enums.UserRoleCustomer), status: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			Download(forbidden, nil).ServeHTTP(resp, tc.req)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
		})
	}
}

func TestArchiveReturnsLocator(t *testing.T) {
	svc := &stubInvoiceService{
		archive: func(ctx context.Context, orderID uuid.UUID) (*assets.Locator, error) {
			return &assets.Locator{PublicID: "invoices/inv-ord-1001.pdf", Class: enums.AssetClassInvoice}, nil
		},
	}

	resp := httptest.NewRecorder()
	Archive(svc, nil).ServeHTTP(resp, newRequest(http.MethodPost, uuid.NewString(), uuid.NewString(), enums.UserRoleAdmin))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
}
