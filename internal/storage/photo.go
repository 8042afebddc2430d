package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/models"
)

const (
	// Bucket - имя хранилища фотографий в URL
	Bucket = "incident-images"
	// MaxPhotoBytes - максимальный размер фотографии
	MaxPhotoBytes = 10 << 20
)

var extensionByType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

var typeByExtension = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// LocalPhotoStore хранит фотографии на диске под DataRoot/incident-images
type LocalPhotoStore struct {
	root          string
	publicBaseURL string
	maxBytes      int
	now           func() time.Time
}

// NewLocalPhotoStore создает хранилище и каталог для него
func NewLocalPhotoStore(dataRoot, publicBaseURL string, maxBytes int) (*LocalPhotoStore, error) {
	root := filepath.Join(dataRoot, Bucket)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	if maxBytes <= 0 || maxBytes > MaxPhotoBytes {
		maxBytes = MaxPhotoBytes
	}
	return &LocalPhotoStore{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxBytes:      maxBytes,
		now:           time.Now,
	}, nil
}

// Save сохраняет фотографию пользователя. Существующий объект никогда не перезаписывается.
func (s *LocalPhotoStore) Save(ctx context.Context, userID uuid.UUID, photo models.PhotoUpload) (*models.StoredPhoto, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(photo.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", models.ErrUnsupportedPhoto)
	}
	if len(photo.Data) > s.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", models.ErrUnsupportedPhoto, s.maxBytes)
	}

	contentType := DetectType(photo.Data, photo.ContentType)
	ext, ok := extensionByType[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: content type %q", models.ErrUnsupportedPhoto, contentType)
	}

	key := fmt.Sprintf("%s/%d.%s", userID, s.now().UnixMilli(), ext)
	fullPath, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create user photo directory: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: photo %s already exists", models.ErrConflict, key)
		}
		return nil, fmt.Errorf("failed to create photo file: %w", err)
	}
	if _, err := f.Write(photo.Data); err != nil {
		f.Close()
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write photo: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close photo file: %w", err)
	}

	return &models.StoredPhoto{
		Key:         key,
		URL:         s.PublicURL(key),
		ContentType: contentType,
		Size:        len(photo.Data),
	}, nil
}

// Open читает фотографию по ключу
func (s *LocalPhotoStore) Open(ctx context.Context, key string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	fullPath, err := s.pathFor(key)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("photo %s: %w", key, models.ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to read photo: %w", err)
	}
	contentType := typeByExtension[strings.TrimPrefix(path.Ext(key), ".")]
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// Delete удаляет фотографию по ключу. Отсутствующий файл не считается ошибкой.
func (s *LocalPhotoStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

// PublicURL возвращает адрес, по которому фотография раздается клиентам
func (s *LocalPhotoStore) PublicURL(key string) string {
	return s.publicBaseURL + "/media/" + Bucket + "/" + key
}

// KeyFromURL извлекает ключ из публичного URL этого хранилища
func (s *LocalPhotoStore) KeyFromURL(url string) (string, bool) {
	prefix := s.publicBaseURL + "/media/" + Bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if _, err := cleanKey(key); err != nil {
		return "", false
	}
	return key, true
}

func (s *LocalPhotoStore) pathFor(key string) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// cleanKey отклоняет ключи, выходящие за пределы хранилища
func cleanKey(key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key || strings.Contains(clean, "..") {
		return "", fmt.Errorf("%w: invalid photo key", models.ErrInvalidInput)
	}
	return clean, nil
}

// DetectType определяет тип изображения по содержимому, заявленный тип используется как подсказка
func DetectType(data []byte, declared string) string {
	sniffed := http.DetectContentType(data)
	if _, ok := extensionByType[sniffed]; ok {
		return sniffed
	}
	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}
	if declared == "image/webp" && len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return declared
	}
	return sniffed
}
