package assets

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/antiquestore/antique-store-backend/pkg/enums"
	pkgerrors "github.com/antiquestore/antique-store-backend/pkg/errors"
	"github.com/antiquestore/antique-store-backend/pkg/logger"
	"github.com/antiquestore/antique-store-backend/pkg/storage/gcs"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const (
	maxDeleteBatch = 100
	cacheControl   = "public, max-age=31536000"
)

type objectStore interface {
	UploadObject(ctx context.Context, upload gcs.ObjectUpload) (*gcs.ObjectAttrs, error)
	ObjectAttrs(ctx context.Context, name string) (*gcs.ObjectAttrs, error)
	DeleteObject(ctx context.Context, name string) error
	PublicURL(name string) string
	Ping(ctx context.Context) error
}

type productImages interface {
	UpdateImage(ctx context.Context, id uuid.UUID, url, publicID string) (*string, error)
}

type userAvatars interface {
	UpdateAvatar(ctx context.Context, id uuid.UUID, url, publicID string) (*string, error)
}

// Service exposes uploads and housekeeping for product images, avatars and
// archived invoices.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*Locator, error)
	SetProductImage(ctx context.Context, productID uuid.UUID, input UploadInput) (*Locator, error)
	SetAvatar(ctx context.Context, userID uuid.UUID, input UploadInput) (*Locator, error)
	Delete(ctx context.Context, publicID string) error
	DeleteMany(ctx context.Context, publicIDs []string) (*DeleteResult, error)
	Metadata(ctx context.Context, publicID string) (*Metadata, error)
	Ping(ctx context.Context) error
}

// UploadInput describes one file to store. Name, when set, fixes the object
// name inside the class folder so re-uploads replace the previous object.
type UploadInput struct {
	Class    enums.AssetClass
	FileName string
	Name     string
	Body     []byte
}

// Locator identifies a stored asset.
type Locator struct {
	PublicID    string           `json:"public_id"`
	URL         string           `json:"url"`
	Format      string           `json:"format"`
	Bytes       int64            `json:"bytes"`
	ContentType string           `json:"content_type"`
	Class       enums.AssetClass `json:"class"`
	Preset      string           `json:"transform_preset,omitempty"`
}

type Metadata struct {
	Locator
	MD5Hash string            `json:"md5_hash,omitempty"`
	Custom  map[string]string `json:"metadata,omitempty"`
	Created time.Time         `json:"created_at"`
	Updated time.Time         `json:"updated_at"`
}

type DeleteResult struct {
	Deleted []string          `json:"deleted"`
	Failed  map[string]string `json:"failed,omitempty"`
}

type ServiceParams struct {
	Store          objectStore
	Products       productImages
	Users          userAvatars
	MaxUploadBytes int64
	Logger         *logger.Logger
}

type service struct {
	store    objectStore
	products productImages
	users    userAvatars
	maxBytes int64
	logg     *logger.Logger
}

// NewService constructs the asset adapter over the given object store.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	return &service{
		store:    params.Store,
		products: params.Products,
		users:    params.Users,
		maxBytes: params.MaxUploadBytes,
		logg:     params.Logger,
	}, nil
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*Locator, error) {
	policy, ok := policyFor(input.Class)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset class")
	}
	size := int64(len(input.Body))
	if size == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if size > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes))
	}

	detected := mimetype.Detect(input.Body)
	format := strings.TrimPrefix(detected.Extension(), ".")
	if !policy.allows(format) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s uploads must be %s", input.Class, policy.describeFormats())).
			WithDetails(map[string]any{"detected": detected.String()})
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = uuid.NewString()
		if base := sanitizeBaseName(input.FileName); base != "" {
			name = name + "-" + base
		}
	} else if base := sanitizeBaseName(name); base != "" {
		name = base
	} else {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset name is invalid")
	}
	objectName := fmt.Sprintf("%s/%s.%s", policy.folder, name, format)

	metadata := map[string]string{"asset_class": string(input.Class)}
	if policy.preset != "" {
		metadata["transform_preset"] = policy.preset
	}
	if input.FileName != "" {
		metadata["original_filename"] = input.FileName
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"asset_class": string(input.Class), "public_id": objectName})
	attrs, err := s.store.UploadObject(ctx, gcs.ObjectUpload{
		Name:         objectName,
		ContentType:  detected.String(),
		CacheControl: cacheControl,
		Metadata:     metadata,
		Body:         input.Body,
	})
	if err != nil {
		s.logg.Error(ctx, "asset upload failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload asset")
	}
	s.logg.Info(ctx, "asset uploaded")

	return s.locator(input.Class, policy, attrs, objectName, size, detected.String()), nil
}

func (s *service) SetProductImage(ctx context.Context, productID uuid.UUID, input UploadInput) (*Locator, error) {
	if s.products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product images not configured")
	}
	input.Class = enums.AssetClassProduct
	return s.replace(ctx, input, func(url, publicID string) (*string, error) {
		return s.products.UpdateImage(ctx, productID, url, publicID)
	}, "product not found")
}

func (s *service) SetAvatar(ctx context.Context, userID uuid.UUID, input UploadInput) (*Locator, error) {
	if s.users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "avatars not configured")
	}
	input.Class = enums.AssetClassAvatar
	return s.replace(ctx, input, func(url, publicID string) (*string, error) {
		return s.users.UpdateAvatar(ctx, userID, url, publicID)
	}, "user not found")
}

// replace uploads a new object, points the owning row at it and then drops
// the object it replaced. A failed row update removes the fresh upload.
func (s *service) replace(ctx context.Context, input UploadInput, attach func(url, publicID string) (*string, error), notFound string) (*Locator, error) {
	loc, err := s.Upload(ctx, input)
	if err != nil {
		return nil, err
	}

	previous, err := attach(loc.URL, loc.PublicID)
	if err != nil {
		if cleanupErr := s.store.DeleteObject(ctx, loc.PublicID); cleanupErr != nil {
			s.logg.Warn(s.logg.WithField(ctx, "public_id", loc.PublicID), "orphaned asset cleanup failed")
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record asset owner")
	}

	if previous != nil && *previous != "" && *previous != loc.PublicID {
		if err := s.Delete(ctx, *previous); err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "previous_public_id", *previous), "previous asset not removed")
		}
	}
	return loc, nil
}

func (s *service) Delete(ctx context.Context, publicID string) error {
	if _, err := classForPublicID(publicID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	ctx = s.logg.WithField(ctx, "public_id", publicID)
	if err := s.store.DeleteObject(ctx, publicID); err != nil {
		if errors.Is(err, gcs.ErrObjectNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		s.logg.Error(ctx, "asset delete failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete asset")
	}
	s.logg.Info(ctx, "asset deleted")
	return nil
}

// DeleteMany attempts every id and reports per-id failures. The returned
// error combines all failures.
func (s *service) DeleteMany(ctx context.Context, publicIDs []string) (*DeleteResult, error) {
	if len(publicIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "public_ids must not be empty")
	}
	if len(publicIDs) > maxDeleteBatch {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d public_ids per request", maxDeleteBatch))
	}
	for _, id := range publicIDs {
		if _, err := classForPublicID(id); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
		}
	}

	result := &DeleteResult{Deleted: make([]string, 0, len(publicIDs))}
	var combined error
	for _, id := range publicIDs {
		if err := s.Delete(ctx, id); err != nil {
			if result.Failed == nil {
				result.Failed = map[string]string{}
			}
			result.Failed[id] = err.Error()
			combined = multierr.Append(combined, fmt.Errorf("%s: %w", id, err))
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	if combined != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "delete assets").
			WithDetails(map[string]any{"failed": result.Failed, "deleted": result.Deleted})
	}
	return result, nil
}

func (s *service) Metadata(ctx context.Context, publicID string) (*Metadata, error) {
	class, err := classForPublicID(publicID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	attrs, err := s.store.ObjectAttrs(ctx, publicID)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		s.logg.Error(s.logg.WithField(ctx, "public_id", publicID), "asset metadata failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load asset metadata")
	}

	policy, _ := policyFor(class)
	return &Metadata{
		Locator: *s.locator(class, policy, attrs, publicID, attrs.Size, attrs.ContentType),
		MD5Hash: attrs.MD5Hash,
		Custom:  attrs.Metadata,
		Created: attrs.Created,
		Updated: attrs.Updated,
	}, nil
}

func (s *service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		s.logg.Error(ctx, "asset storage ping failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "asset storage unreachable")
	}
	return nil
}

func (s *service) locator(class enums.AssetClass, policy classPolicy, attrs *gcs.ObjectAttrs, name string, size int64, contentType string) *Locator {
	if attrs != nil {
		if attrs.Name != "" {
			name = attrs.Name
		}
		if attrs.Size > 0 {
			size = attrs.Size
		}
		if attrs.ContentType != "" {
			contentType = attrs.ContentType
		}
	}
	return &Locator{
		PublicID:    name,
		URL:         s.store.PublicURL(name),
		Format:      strings.TrimPrefix(strings.ToLower(path.Ext(name)), "."),
		Bytes:       size,
		ContentType: contentType,
		Class:       class,
		Preset:      policy.preset,
	}
}
