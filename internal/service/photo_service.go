package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/afterclass/afterclass-backend/internal/repository/storage"
)

const (
	MaxPhotoSize   = 5 * 1024 * 1024 // 5MB
	MinPhotoWidth  = 50
	MinPhotoHeight = 50
	ThumbnailWidth = 200
	DisplayWidth   = 800
	JPEGQuality    = 85

	// Presigned cover URLs are short-lived; clients refetch on expiry.
	photoURLExpiry = 15 * time.Minute
)

var (
	ErrPhotoTooLarge             = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidPhotoFormat        = errors.New("invalid format. Supported: JPEG, PNG")
	ErrPhotoTooSmall             = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidPhotoData          = errors.New("invalid image data")
	ErrPhotoStorageNotConfigured = errors.New("photo storage not configured")
)

// allowedPhotoExtensions maps extensions to content types
var allowedPhotoExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// PhotoMetadata carries the object keys of a stored cover photo's variants.
type PhotoMetadata struct {
	ThumbnailKey string `json:"thumbnailKey"`
	DisplayKey   string `json:"displayKey"`
	OriginalKey  string `json:"originalKey"`
}

// PhotoService handles workshop cover photo processing and storage
type PhotoService struct {
	storage storage.PhotoStorage
}

// NewPhotoService creates a new PhotoService
func NewPhotoService(storage storage.PhotoStorage) *PhotoService {
	return &PhotoService{storage: storage}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *PhotoService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// ValidatePhoto validates photo format, size and dimensions
func (s *PhotoService) ValidatePhoto(data []byte, filename string) error {
	_, err := s.validateAndDecode(data, filename)
	return err
}

func (s *PhotoService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxPhotoSize {
		return nil, ErrPhotoTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedPhotoExtensions[ext]; !ok {
		return nil, ErrInvalidPhotoFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidPhotoData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinPhotoWidth || bounds.Dy() < MinPhotoHeight {
		return nil, ErrPhotoTooSmall
	}

	return img, nil
}

// ProcessAndUpload resizes the photo and uploads all variants. Returns the
// display variant key as the workshop's cover key.
func (s *PhotoService) ProcessAndUpload(ctx context.Context, workshopID uuid.UUID, data []byte, filename string) (*PhotoMetadata, error) {
	if !s.IsEnabled() {
		return nil, ErrPhotoStorageNotConfigured
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	variants := []struct {
		name     string
		maxWidth int
	}{
		{"thumb", ThumbnailWidth},
		{"display", DisplayWidth},
		{"original", 0}, // 0 means keep original size
	}

	keys := make(map[string]string)

	for _, variant := range variants {
		var processed image.Image
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		} else {
			processed = img
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := storage.GenerateObjectPath(workshopID, variant.name, ".jpg")

		key, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
		if err != nil {
			s.cleanupVariants(ctx, keys)
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}

		keys[variant.name] = key
	}

	return &PhotoMetadata{
		ThumbnailKey: keys["thumb"],
		DisplayKey:   keys["display"],
		OriginalKey:  keys["original"],
	}, nil
}

// cleanupVariants removes variants already uploaded during a failed upload
func (s *PhotoService) cleanupVariants(ctx context.Context, keys map[string]string) {
	for _, key := range keys {
		_ = s.storage.Delete(ctx, key)
	}
}

// Delete removes a stored photo object. Best effort; a missing object is
// not an error.
func (s *PhotoService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if !s.IsEnabled() {
		return ErrPhotoStorageNotConfigured
	}
	return s.storage.Delete(ctx, key)
}

// ResolveURL produces a temporary download URL for a stored photo key.
func (s *PhotoService) ResolveURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	if !s.IsEnabled() {
		return "", ErrPhotoStorageNotConfigured
	}
	return s.storage.GeneratePresignedURL(ctx, key, photoURLExpiry)
}

// GetContentType returns the content type for a file extension
func GetContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := allowedPhotoExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
