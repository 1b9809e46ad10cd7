package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"travel-blog-server/logging"
	"travel-blog-server/metrics"
	"travel-blog-server/models"
	"travel-blog-server/storage"
	apierrors "travel-blog-server/utils/errors"
)

var errNoFile = apierrors.Invalid("NO_FILE", "No file uploaded")

// ImageService validates and stores images, and removes images that are no
// longer referenced.
type ImageService struct {
	store    storage.ObjectStore
	maxBytes int64
	now      func() time.Time
}

func NewImageService(store storage.ObjectStore, maxBytes int64) *ImageService {
	return &ImageService{store: store, maxBytes: maxBytes, now: time.Now}
}

// MaxBytes is the largest accepted image size.
func (s *ImageService) MaxBytes() int64 {
	return s.maxBytes
}

// Validate checks an attachment without touching object storage.
func (s *ImageService) Validate(att *models.Attachment) error {
	if att == nil || att.Body == nil {
		return errNoFile
	}
	if att.Size > s.maxBytes {
		return apierrors.NewAPIError(apierrors.ErrPayloadTooLarge.Code,
			fmt.Sprintf("File exceeds the %d MB limit", s.maxBytes>>20), http.StatusRequestEntityTooLarge)
	}
	if !strings.HasPrefix(strings.ToLower(att.ContentType), "image/") {
		return apierrors.Invalid("INVALID_FILE_TYPE", "Only image files are allowed")
	}
	return nil
}

// Upload validates att and stores it under a key owned by uploaderID.
func (s *ImageService) Upload(ctx context.Context, uploaderID primitive.ObjectID, kind models.ImageKind, att *models.Attachment) (string, error) {
	if err := s.Validate(att); err != nil {
		metrics.RecordImageUpload(string(kind), "rejected")
		return "", err
	}

	key := s.objectKey(uploaderID, kind, att.Filename)
	url, err := s.store.Put(ctx, key, att.ContentType, att.Body, att.Size)
	if err != nil {
		metrics.RecordImageUpload(string(kind), "error")
		logging.Ctx(ctx).Error().Err(err).Str("key", key).Msg("Image upload failed")
		return "", apierrors.Internal(err, "UPLOAD_FAILED")
	}

	metrics.RecordImageUpload(string(kind), "success")
	logging.Ctx(ctx).Info().Str("key", key).Int64("size", att.Size).Msg("Image uploaded")
	return url, nil
}

// objectKey builds <uploader>/<kind>_<unix millis>_<random><ext>.
func (s *ImageService) objectKey(uploaderID primitive.ObjectID, kind models.ImageKind, filename string) string {
	return fmt.Sprintf("%s/%s_%d_%s%s",
		uploaderID.Hex(), kind, s.now().UnixMilli(), uuid.NewString()[:8], cleanExt(filename))
}

func cleanExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// DeleteBestEffort removes the image behind url. Failures are logged and
// counted but never returned.
func (s *ImageService) DeleteBestEffort(ctx context.Context, url string) {
	if url == "" {
		return
	}
	err := s.store.Delete(ctx, url)
	switch {
	case err == nil:
		logging.Ctx(ctx).Debug().Str("url", url).Msg("Image deleted")
	case errors.Is(err, storage.ErrForeignURL):
		logging.Ctx(ctx).Debug().Str("url", url).Msg("Skipping delete of image not owned by storage")
	default:
		metrics.ImageDeletesFailed.Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("Failed to delete image")
	}
}
