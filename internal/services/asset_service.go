package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"qrmenu/internal/apperrors"
	"qrmenu/internal/metrics"
	"qrmenu/pkg/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssetKind selects the folder and size limit of an upload.
type AssetKind string

const (
	AssetLogo      AssetKind = "logo"
	AssetBanner    AssetKind = "banner"
	AssetProduct   AssetKind = "product"
	AssetWallpaper AssetKind = "wallpaper"
)

type assetRule struct {
	folder   string
	maxBytes int
}

var assetRules = map[AssetKind]assetRule{
	AssetLogo:      {folder: "logos", maxBytes: 5 << 20},
	AssetBanner:    {folder: "banners", maxBytes: 5 << 20},
	AssetProduct:   {folder: "products", maxBytes: 5 << 20},
	AssetWallpaper: {folder: "wallpapers", maxBytes: 10 << 20},
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// DefaultProtectedPrefixes are never deleted through the asset service.
var DefaultProtectedPrefixes = []string{"system/", "defaults/", "static/"}

// File is an uploaded image as received from the client.
type File struct {
	Filename string
	Data     []byte
}

// AssetService owns the upload, replace and delete discipline for every
// image-bearing field.
type AssetService struct {
	storage   storage.Storage
	protected []string
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewAssetService creates a new AssetService. An empty protected list uses
// DefaultProtectedPrefixes.
func NewAssetService(store storage.Storage, protected []string, log *zap.Logger, m *metrics.Metrics) *AssetService {
	if len(protected) == 0 {
		protected = DefaultProtectedPrefixes
	}
	return &AssetService{
		storage:   store,
		protected: protected,
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

// NewAssetID returns a fresh id of the form <folder>/<unix-millis>-<random hex>.
// The client filename never contributes to it.
func (s *AssetService) NewAssetID(kind AssetKind) string {
	rule := assetRules[kind]
	return fmt.Sprintf("%s/%d-%s", rule.folder, s.now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// validateFile checks presence, size and sniffed type and returns the content type.
func validateFile(kind AssetKind, file *File) (string, error) {
	rule, ok := assetRules[kind]
	if !ok {
		return "", apperrors.Internal(fmt.Errorf("unknown asset kind %q", kind))
	}
	if file == nil || len(file.Data) == 0 {
		return "", apperrors.Validation("file", "required")
	}
	if len(file.Data) > rule.maxBytes {
		return "", apperrors.Validation("file", "max_size")
	}
	contentType := http.DetectContentType(file.Data)
	if !allowedImageTypes[contentType] {
		return "", apperrors.Validation("file", "mime_type")
	}
	return contentType, nil
}

// Upload validates file and stores it under a new id.
func (s *AssetService) Upload(ctx context.Context, kind AssetKind, file *File) (*storage.Object, error) {
	contentType, err := validateFile(kind, file)
	if err != nil {
		s.metrics.RecordUpload(string(kind), "rejected")
		return nil, err
	}

	obj, err := s.storage.Upload(ctx, storage.UploadInput{
		ID:          s.NewAssetID(kind),
		ContentType: contentType,
		Data:        file.Data,
	})
	if err != nil {
		s.metrics.RecordUpload(string(kind), "failed")
		return nil, storageError(err)
	}
	s.metrics.RecordUpload(string(kind), "ok")
	s.log.Debug("Asset uploaded", zap.String("asset_id", obj.ID), zap.Int64("size", obj.Size))
	return obj, nil
}

// Replace uploads file, hands the new object to persist, and only then
// deletes oldID. A failed delete of oldID is logged and swallowed. When
// persist fails the new object is discarded and the error returned.
func (s *AssetService) Replace(ctx context.Context, kind AssetKind, oldID string, file *File, persist func(*storage.Object) error) (*storage.Object, error) {
	obj, err := s.Upload(ctx, kind, file)
	if err != nil {
		return nil, err
	}
	if err := persist(obj); err != nil {
		s.Discard(ctx, obj.ID, "persist")
		return nil, err
	}
	if oldID != "" && oldID != obj.ID {
		s.Discard(ctx, oldID, "replace")
	}
	return obj, nil
}

// Remove deletes id. An empty id is a no-op and a missing object is not an error.
func (s *AssetService) Remove(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.guard(id); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, id); err != nil {
		return storageError(err)
	}
	return nil
}

// Discard removes id best effort. Failures are logged and counted, never returned.
func (s *AssetService) Discard(ctx context.Context, id, stage string) {
	if err := s.Remove(ctx, id); err != nil {
		s.metrics.RecordOrphan(stage)
		s.log.Warn("Failed to delete asset, left orphaned",
			zap.String("asset_id", id),
			zap.String("stage", stage),
			zap.Error(err))
	}
}

// guard refuses ids that are malformed or fall under a protected prefix.
func (s *AssetService) guard(id string) error {
	if strings.HasPrefix(id, "/") || strings.Contains(id, "..") {
		return apperrors.Validation("asset_id", "invalid")
	}
	clean := path.Clean(id)
	for _, p := range s.protected {
		if strings.HasPrefix(clean, p) {
			s.log.Warn("Refused to delete protected asset", zap.String("asset_id", id))
			return apperrors.Forbidden("protected_asset")
		}
	}
	return nil
}

func storageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrRejected):
		return &apperrors.Error{
			Kind:    apperrors.KindValidationFailed,
			Reason:  "rejected_by_storage",
			Message: "file was rejected by storage",
			Field:   "file",
			Err:     err,
		}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Upstream("storage_timeout", err)
	default:
		return apperrors.Upstream("storage_unavailable", err)
	}
}
