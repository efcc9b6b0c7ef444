package upload

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/campus-market-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBlobStore struct{ mock.Mock }

func (m *mockBlobStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func imageInput(name string) FileInput {
	return FileInput{
		Reader:      strings.NewReader("fake image bytes"),
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        16,
	}
}

func TestUploadImages_EmptyBatch(t *testing.T) {
	svc := NewService(new(mockBlobStore))
	_, err := svc.UploadImages(context.Background(), "u1", nil)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUploadImages_TooMany(t *testing.T) {
	files := make([]FileInput, MaxFiles+1)
	for i := range files {
		files[i] = imageInput("a.jpg")
	}
	svc := NewService(new(mockBlobStore))
	_, err := svc.UploadImages(context.Background(), "u1", files)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUploadImages_RejectsNonImage(t *testing.T) {
	store := new(mockBlobStore)
	f := imageInput("resume.pdf")
	f.ContentType = "application/pdf"

	svc := NewService(store)
	_, err := svc.UploadImages(context.Background(), "u1", []FileInput{imageInput("ok.jpg"), f})

	assert.ErrorIs(t, err, domain.ErrBadRequest)
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadImages_RejectsOversized(t *testing.T) {
	f := imageInput("huge.jpg")
	f.Size = MaxFileSize + 1

	svc := NewService(new(mockBlobStore))
	_, err := svc.UploadImages(context.Background(), "u1", []FileInput{f})

	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUploadImages_HappyPath(t *testing.T) {
	store := new(mockBlobStore)
	store.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "items/u1/") && strings.HasSuffix(key, ".jpg")
	}), mock.Anything, "image/jpeg").Return("https://cdn.example.com/x.jpg", nil).Twice()

	svc := NewService(store)
	urls, err := svc.UploadImages(context.Background(), "u1", []FileInput{imageInput("a.jpg"), imageInput("b.jpg")})

	require.NoError(t, err)
	assert.Len(t, urls, 2)
	store.AssertExpectations(t)
}

func TestUploadImages_ExtensionFromContentType(t *testing.T) {
	store := new(mockBlobStore)
	var captured string
	store.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		captured = key
		return true
	}), mock.Anything, "image/png").Return("https://cdn.example.com/x.png", nil)

	f := FileInput{Reader: strings.NewReader("png"), Filename: "noext", ContentType: "image/png", Size: 3}
	svc := NewService(store)
	_, err := svc.UploadImages(context.Background(), "u1", []FileInput{f})

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(captured, ".png"), "key %q should carry a .png extension", captured)
}

func TestDelete_OwnerPrefixEnforced(t *testing.T) {
	store := new(mockBlobStore)
	svc := NewService(store)

	err := svc.Delete(context.Background(), "u2", "items/u1/photo.jpg")

	assert.ErrorIs(t, err, domain.ErrForbidden)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDelete_HappyPath(t *testing.T) {
	store := new(mockBlobStore)
	store.On("Delete", mock.Anything, "items/u1/photo.jpg").Return(nil)

	svc := NewService(store)
	require.NoError(t, svc.Delete(context.Background(), "u1", "items/u1/photo.jpg"))
	store.AssertExpectations(t)
}
