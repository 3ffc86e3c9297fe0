package invoices

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/antiquestore/antique-store-backend/api/middleware"
	"github.com/antiquestore/antique-store-backend/api/responses"
	"github.com/antiquestore/antique-store-backend/api/validators"
	internalinvoices "github.com/antiquestore/antique-store-backend/internal/invoices"
	"github.com/antiquestore/antique-store-backend/pkg/enums"
	pkgerrors "github.com/antiquestore/antique-store-backend/pkg/errors"
	"github.com/antiquestore/antique-store-backend/pkg/logger"
)

// Download renders the order's invoice as an inline PDF, or as an
// attachment when the download query flag is present.
func Download(svc internalinvoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requester, err := requesterFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Generate(r.Context(), orderID, requester)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteFile(w, "application/pdf", invoice.FileName, invoice.Content, !r.URL.Query().Has("download"))
	}
}

// Archive renders the invoice and stores it alongside other assets.
func Archive(svc internalinvoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locator, err := svc.Archive(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, locator)
	}
}

func requesterFromRequest(r *http.Request) (internalinvoices.Requester, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return internalinvoices.Requester{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return internalinvoices.Requester{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return internalinvoices.Requester{
		UserID:  userID,
		IsAdmin: middleware.RoleFromContext(r.Context()) == string(enums.UserRoleAdmin),
	}, nil
}
