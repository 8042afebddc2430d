package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestStore(t *testing.T) *LocalPhotoStore {
	t.Helper()
	store, err := NewLocalPhotoStore(t.TempDir(), "http://localhost:8080/", 0)
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return store
}

func TestSaveAndOpen(t *testing.T) {
	store := newTestStore(t)
	userID := uuid.New()
	data := pngBytes(t)

	stored, err := store.Save(context.Background(), userID, models.PhotoUpload{
		Filename:    "photo.png",
		ContentType: "image/png",
		Data:        data,
	})
	require.NoError(t, err)

	assert.Equal(t, userID.String()+"/1700000000123.png", stored.Key)
	assert.Equal(t, "http://localhost:8080/media/incident-images/"+stored.Key, stored.URL)
	assert.Equal(t, "image/png", stored.ContentType)
	assert.Equal(t, len(data), stored.Size)

	got, contentType, err := store.Open(context.Background(), stored.Key)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", contentType)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stored, err := store.Save(ctx, uuid.New(), models.PhotoUpload{ContentType: "image/png", Data: pngBytes(t)})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, stored.Key))
	_, _, err = store.Open(ctx, stored.Key)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Повторное удаление ничего не ломает
	assert.NoError(t, store.Delete(ctx, stored.Key))
	assert.ErrorIs(t, store.Delete(ctx, "../etc/passwd"), models.ErrInvalidInput)
}

func TestSave_NeverOverwrites(t *testing.T) {
	store := newTestStore(t)
	userID := uuid.New()
	upload := models.PhotoUpload{ContentType: "image/png", Data: pngBytes(t)}

	_, err := store.Save(context.Background(), userID, upload)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), userID, upload)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestSave_RejectsUnsupported(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(context.Background(), uuid.New(), models.PhotoUpload{
		ContentType: "image/png",
		Data:        []byte("%PDF-1.4 not an image"),
	})
	assert.ErrorIs(t, err, models.ErrUnsupportedPhoto)

	_, err = store.Save(context.Background(), uuid.New(), models.PhotoUpload{})
	assert.ErrorIs(t, err, models.ErrUnsupportedPhoto)
}

func TestSave_RejectsOversized(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir(), "http://localhost:8080", 16)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), uuid.New(), models.PhotoUpload{Data: pngBytes(t)})
	assert.ErrorIs(t, err, models.ErrUnsupportedPhoto)
}

func TestOpen_NotFoundAndTraversal(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Open(context.Background(), "nobody/1.png")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, _, err = store.Open(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestKeyFromURL(t *testing.T) {
	store := newTestStore(t)

	key, ok := store.KeyFromURL("http://localhost:8080/media/incident-images/u/1.jpg")
	assert.True(t, ok)
	assert.Equal(t, "u/1.jpg", key)

	_, ok = store.KeyFromURL("https://elsewhere.example/u/1.jpg")
	assert.False(t, ok)
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, "image/png", DetectType(pngBytes(t), "image/jpeg"))
	assert.Equal(t, "image/jpeg", DetectType([]byte{0xff, 0xd8, 0xff, 0xe0, 0, 0}, ""))
	webp := append([]byte("RIFF\x00\x00\x00\x00WEBP"), 0, 0)
	assert.Equal(t, "image/webp", DetectType(webp, "image/webp"))
	assert.Equal(t, "text/plain; charset=utf-8", DetectType([]byte("hello"), "image/png"))
}
