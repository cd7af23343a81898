package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// mockPhotoStorage is an in-memory PhotoStorage for tests.
type mockPhotoStorage struct {
	objects   map[string][]byte
	uploadErr error
}

func newMockPhotoStorage() *mockPhotoStorage {
	return &mockPhotoStorage{objects: make(map[string][]byte)}
}

func (m *mockPhotoStorage) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.objects[objectPath] = buf
	return objectPath, nil
}

func (m *mockPhotoStorage) Delete(ctx context.Context, objectPath string) error {
	delete(m.objects, objectPath)
	return nil
}

func (m *mockPhotoStorage) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + objectPath, nil
}

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestPhotoService_ProcessAndUpload(t *testing.T) {
	store := newMockPhotoStorage()
	svc := NewPhotoService(store)

	data := testJPEG(t, 1200, 800)
	meta, err := svc.ProcessAndUpload(context.Background(), uuid.New(), data, "cover.jpg")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(store.objects) != 3 {
		t.Errorf("Expected 3 stored variants, got %d", len(store.objects))
	}
	for _, key := range []string{meta.ThumbnailKey, meta.DisplayKey, meta.OriginalKey} {
		if _, ok := store.objects[key]; !ok {
			t.Errorf("Expected stored object for key %q", key)
		}
	}

	// Variants are resized down, never up
	thumb, _, err := image.Decode(bytes.NewReader(store.objects[meta.ThumbnailKey]))
	if err != nil {
		t.Fatalf("Failed to decode thumbnail: %v", err)
	}
	if thumb.Bounds().Dx() != ThumbnailWidth {
		t.Errorf("Expected thumbnail width %d, got %d", ThumbnailWidth, thumb.Bounds().Dx())
	}
	display, _, err := image.Decode(bytes.NewReader(store.objects[meta.DisplayKey]))
	if err != nil {
		t.Fatalf("Failed to decode display variant: %v", err)
	}
	if display.Bounds().Dx() != DisplayWidth {
		t.Errorf("Expected display width %d, got %d", DisplayWidth, display.Bounds().Dx())
	}
}

func TestPhotoService_SmallImageNotUpscaled(t *testing.T) {
	store := newMockPhotoStorage()
	svc := NewPhotoService(store)

	data := testJPEG(t, 100, 100)
	meta, err := svc.ProcessAndUpload(context.Background(), uuid.New(), data, "cover.jpg")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	thumb, _, err := image.Decode(bytes.NewReader(store.objects[meta.ThumbnailKey]))
	if err != nil {
		t.Fatalf("Failed to decode thumbnail: %v", err)
	}
	if thumb.Bounds().Dx() != 100 {
		t.Errorf("Expected original width preserved, got %d", thumb.Bounds().Dx())
	}
}

func TestPhotoService_RejectsTooLarge(t *testing.T) {
	svc := NewPhotoService(newMockPhotoStorage())

	data := make([]byte, MaxPhotoSize+1)
	if err := svc.ValidatePhoto(data, "big.jpg"); err != ErrPhotoTooLarge {
		t.Errorf("Expected ErrPhotoTooLarge, got %v", err)
	}
}

func TestPhotoService_RejectsBadExtension(t *testing.T) {
	svc := NewPhotoService(newMockPhotoStorage())

	data := testJPEG(t, 100, 100)
	if err := svc.ValidatePhoto(data, "cover.gif"); err != ErrInvalidPhotoFormat {
		t.Errorf("Expected ErrInvalidPhotoFormat, got %v", err)
	}
}

func TestPhotoService_RejectsTooSmall(t *testing.T) {
	svc := NewPhotoService(newMockPhotoStorage())

	data := testJPEG(t, 20, 20)
	if err := svc.ValidatePhoto(data, "tiny.jpg"); err != ErrPhotoTooSmall {
		t.Errorf("Expected ErrPhotoTooSmall, got %v", err)
	}
}

func TestPhotoService_RejectsGarbageData(t *testing.T) {
	svc := NewPhotoService(newMockPhotoStorage())

	data := []byte(strings.Repeat("not an image", 10))
	if err := svc.ValidatePhoto(data, "fake.jpg"); err != ErrInvalidPhotoData {
		t.Errorf("Expected ErrInvalidPhotoData, got %v", err)
	}
}

func TestPhotoService_DisabledWhenNoStorage(t *testing.T) {
	svc := NewPhotoService(nil)

	if svc.IsEnabled() {
		t.Error("Expected photo service to be disabled")
	}
	_, err := svc.ProcessAndUpload(context.Background(), uuid.New(), testJPEG(t, 100, 100), "cover.jpg")
	if err != ErrPhotoStorageNotConfigured {
		t.Errorf("Expected ErrPhotoStorageNotConfigured, got %v", err)
	}
}
