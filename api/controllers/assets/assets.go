package assets

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/antiquestore/antique-store-backend/api/middleware"
	"github.com/antiquestore/antique-store-backend/api/responses"
	"github.com/antiquestore/antique-store-backend/api/validators"
	internalassets "github.com/antiquestore/antique-store-backend/internal/assets"
	"github.com/antiquestore/antique-store-backend/pkg/enums"
	pkgerrors "github.com/antiquestore/antique-store-backend/pkg/errors"
	"github.com/antiquestore/antique-store-backend/pkg/logger"
)

const (
	fileField = "file"
	// multipartOverhead leaves room for boundaries and form fields around the file.
	multipartOverhead = 1 << 20
)

// UploadProductImage stores a product image. With product_id set, the image
// replaces that product's current one.
func UploadProductImage(svc internalassets.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		input, err := readUpload(w, r, maxBytes, enums.AssetClassProduct)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseOptionalUUID(r.FormValue("product_id"), "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var locator *internalassets.Locator
		if productID != nil {
			locator, err = svc.SetProductImage(r.Context(), *productID, input)
		} else {
			locator, err = svc.Upload(r.Context(), input)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, locator)
	}
}

// UploadAvatar replaces the caller's avatar.
func UploadAvatar(svc internalassets.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "user context missing"))
			return
		}

		input, err := readUpload(w, r, maxBytes, enums.AssetClassAvatar)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locator, err := svc.SetAvatar(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, locator)
	}
}

// Metadata returns stored attributes for ?public_id=.
func Metadata(svc internalassets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		publicID, err := publicIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meta, err := svc.Metadata(r.Context(), publicID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, meta)
	}
}

// Delete removes the asset named by ?public_id=.
func Delete(svc internalassets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		publicID, err := publicIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), publicID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"public_id": publicID, "deleted": true})
	}
}

type deleteManyRequest struct {
	PublicIDs []string `json:"public_ids" validate:"required,min=1,max=100,dive,required"`
}

// DeleteMany removes several assets and reports per-id failures.
func DeleteMany(svc internalassets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		var payload deleteManyRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.DeleteMany(r.Context(), payload.PublicIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Health checks that the bucket is reachable with the configured credentials.
func Health(svc internalassets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}
		if err := svc.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

func publicIDParam(r *http.Request) (string, error) {
	publicID := strings.TrimSpace(r.URL.Query().Get("public_id"))
	if publicID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "public_id is required").
			WithDetails(map[string]string{"public_id": "is required"})
	}
	return publicID, nil
}

func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64, class enums.AssetClass) (internalassets.UploadInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return internalassets.UploadInput{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds the %d byte limit", maxBytes))
		}
		return internalassets.UploadInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "expected multipart/form-data body")
	}

	file, header, err := r.FormFile(fileField)
	if err != nil {
		return internalassets.UploadInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required").
			WithDetails(map[string]string{fileField: "is required"})
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return internalassets.UploadInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read uploaded file")
	}

	return internalassets.UploadInput{
		Class:    class,
		FileName: header.Filename,
		Body:     body,
	}, nil
}
