package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/antiquestore/antique-store-backend/internal/assets"
	"github.com/antiquestore/antique-store-backend/internal/invoices"
	"github.com/antiquestore/antique-store-backend/internal/warranties"
	pkgAuth "github.com/antiquestore/antique-store-backend/pkg/auth"
	"github.com/antiquestore/antique-store-backend/pkg/config"
	"github.com/antiquestore/antique-store-backend/pkg/enums"
	pkgerrors "github.com/antiquestore/antique-store-backend/pkg/errors"
	"github.com/antiquestore/antique-store-backend/pkg/logger"
	"github.com/antiquestore/antique-store-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubLimiter struct {
	calls int
	limit int64
}

func (s *stubLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	s.calls++
	return int64(s.calls) <= limit, int64(s.calls), nil
}

type stubWarrantyService struct {
	warranties.Service
}

func (stubWarrantyService) List(ctx context.Context, params warranties.ListParams) (*warranties.ListResult, error) {
	return &warranties.ListResult{Items: []warranties.Warranty{}, Meta: types.ListMeta{Page: 1, Limit: 10}}, nil
}

func (stubWarrantyService) Get(ctx context.Context, id uuid.UUID) (*warranties.Warranty, error) {
	return &warranties.Warranty{ID: id}, nil
}

func (stubWarrantyService) GetByCode(ctx context.Context, code string) (*warranties.PublicWarranty, error) {
	if code != "WR-ORD-1-1-1" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warranty not found")
	}
	return &warranties.PublicWarranty{WarrantyCode: code}, nil
}

func (stubWarrantyService) Export(ctx context.Context, filters warranties.ListFilters, w io.Writer) (int, error) {
	_, err := w.Write([]byte("PK"))
	return 0, err
}

type stubInvoiceService struct{}

func (stubInvoiceService) Generate(ctx context.Context, orderID uuid.UUID, requester invoices.Requester) (*invoices.Invoice, error) {
	return &invoices.Invoice{FileName: "INV-ORD-1.pdf", Content: []byte("%PDF")}, nil
}

func (stubInvoiceService) Archive(ctx context.Context, orderID uuid.UUID) (*assets.Locator, error) {
	return &assets.Locator{PublicID: "invoices/inv-ord-1.pdf"}, nil
}

type stubAssetService struct {
	assets.Service
}

func (stubAssetService) Ping(ctx context.Context) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Env: "dev", CORSOrigins: []string{"http://localhost:3000"}},
		JWT:    config.JWTConfig{Secret: "secret", Issuer: "antique-store", ExpirationMinutes: 30},
		Lookup: config.LookupConfig{Window: time.Minute, Limit: 2},
		Assets: config.AssetsConfig{MaxUploadMB: 1},
	}
}

func newTestRouter(cfg *config.Config, limiter *stubLimiter) http.Handler {
	return NewRouter(Dependencies{
		Config:         cfg,
		Logger:         logger.New(logger.Options{ServiceName: "test", Level: "debug", Output: io.Discard}),
		DB:             stubPinger{},
		Redis:          stubPinger{},
		Storage:        stubPinger{},
		LookupLimiter:  limiter,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "# metrics") }),
		Warranties:     stubWarrantyService{},
		Invoices:       stubInvoiceService{},
		Assets:         stubAssetService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func serve(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	router := newTestRouter(testConfig(), &stubLimiter{})

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		if resp := serve(router, http.MethodGet, path, ""); resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestLookupIsPublicAndRateLimited(t *testing.T) {
	limiter := &stubLimiter{}
	router := newTestRouter(testConfig(), limiter)

	if resp := serve(router, http.MethodGet, "/api/v1/warranties/lookup/WR-ORD-1-1-1", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp := serve(router, http.MethodGet, "/api/v1/warranties/lookup/WR-NOPE", ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if resp := serve(router, http.MethodGet, "/api/v1/warranties/lookup/WR-ORD-1-1-1", ""); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
}

func TestAdminWarrantyRoutesRequireAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubLimiter{})
	id := uuid.NewString()

	paths := []string{"/api/v1/warranties", "/api/v1/warranties/" + id, "/api/v1/warranties/export"}
	for _, path := range paths {
		if resp := serve(router, http.MethodGet, path, ""); resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without token got %d", path, resp.Code)
		}
		if resp := serve(router, http.MethodGet, path, buildToken(t, cfg, enums.UserRoleCustomer)); resp.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403 for customer got %d", path, resp.Code)
		}
		if resp := serve(router, http.MethodGet, path, buildToken(t, cfg, enums.UserRoleAdmin)); resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 for admin got %d", path, resp.Code)
		}
	}
}

func TestInvoiceRoutes(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubLimiter{})
	base := "/api/v1/orders/" + uuid.NewString() + "/invoice"

	if resp := serve(router, http.MethodGet, base, ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	resp := serve(router, http.MethodGet, base, buildToken(t, cfg, enums.UserRoleCustomer))
	if resp.Code != http.StatusOK || resp.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected pdf for customer got %d %q", resp.Code, resp.Header().Get("Content-Type"))
	}
	if resp := serve(router, http.MethodPost, base+"/archive", buildToken(t, cfg, enums.UserRoleCustomer)); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer archive got %d", resp.Code)
	}
	if resp := serve(router, http.MethodPost, base+"/archive", buildToken(t, cfg, enums.UserRoleAdmin)); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin archive got %d", resp.Code)
	}
}

func TestAssetHealthRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubLimiter{})

	if resp := serve(router, http.MethodGet, "/api/v1/assets/health", buildToken(t, cfg, enums.UserRoleCustomer)); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	if resp := serve(router, http.MethodGet, "/api/v1/assets/health", buildToken(t, cfg, enums.UserRoleAdmin)); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(testConfig(), &stubLimiter{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/warranties", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if !strings.Contains(resp.Header().Get("Access-Control-Allow-Origin"), "localhost:3000") {
		t.Fatalf("expected CORS headers, got %v", resp.Header())
	}
}
