package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/antiquestore/antique-store-backend/pkg/enums"
	pkgerrors "github.com/antiquestore/antique-store-backend/pkg/errors"
)

type samplePayload struct {
	Status string   `json:"status" validate:"required,warranty_status"`
	IDs    []string `json:"ids" validate:"omitempty,min=1,max=2,dive,uuid"`
}

func TestDecodeJSONBody(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
		field   string
	}{
		{name: "valid", body: `{"status":"claimed"}`},
		{name: "unknown field", body: `{"status":"claimed","extra":1}`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
		{name: "bad status", body: `{"status":"lost"}`, wantErr: true, field: "status"},
		{name: "missing status", body: `{}`, wantErr: true, field: "status"},
		{name: "too many ids", body: `{"status":"active","ids":["a","b","c"]}`, wantErr: true, field: "ids"},
		{name: "trailing object", body: `{"status":"active"}{"status":"active"}`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dest samplePayload
			err := DecodeJSONBody(httptest.NewRecorder(), req, &dest)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if tc.field == "" {
				return
			}
			details, ok := pkgerrors.As(err).Details().(map[string]string)
			if !ok {
				t.Fatalf("expected field details, got %#v", pkgerrors.As(err).Details())
			}
			if _, ok := details[tc.field]; !ok {
				t.Fatalf("expected details for %q, got %v", tc.field, details)
			}
		})
	}
}

func TestDecodeJSONBodyTooLarge(t *testing.T) {
	body := `{"status":"` + strings.Repeat("a", MaxJSONBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest samplePayload
	if err := DecodeJSONBody(httptest.NewRecorder(), req, &dest); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc&big=500", nil)
	if v, err := ParseQueryInt(req, "page", 1, 1, 100); err != nil || v != 3 {
		t.Fatalf("expected 3, got %d (%v)", v, err)
	}
	if v, err := ParseQueryInt(req, "missing", 7, 1, 100); err != nil || v != 7 {
		t.Fatalf("expected default 7, got %d (%v)", v, err)
	}
	if _, err := ParseQueryInt(req, "limit", 10, 1, 100); err == nil {
		t.Fatal("expected numeric error")
	}
	if _, err := ParseQueryInt(req, "big", 10, 1, 100); err == nil {
		t.Fatal("expected range error")
	}
}

func TestParseQueryStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?status=Claimed", nil)
	status, err := ParseQueryStatus(req, "status")
	if err != nil || status == nil || *status != enums.WarrantyStatusClaimed {
		t.Fatalf("expected claimed, got %v (%v)", status, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/?status=all", nil)
	if status, err := ParseQueryStatus(req, "status"); err != nil || status != nil {
		t.Fatalf("expected no filter, got %v (%v)", status, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/?status=lost", nil)
	if _, err := ParseQueryStatus(req, "status"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseURLUUID(t *testing.T) {
	build := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	if _, err := ParseURLUUID(build("4f9b2f0e-8c1a-4c55-9d1f-0b7f6d9b1a11"), "id"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseURLUUID(build("not-a-uuid"), "id"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00 world\n ", 0); got != "hello world" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString("épée", 2); got != "ép" {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
	if SanitizeOptional(nil, 5) != nil {
		t.Fatal("expected nil passthrough")
	}
}
