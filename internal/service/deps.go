package service

//go:generate mockgen -source=deps.go -destination=mocks/mock_deps.go -package=mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/shenikar/civic_incident_system/internal/realtime"
)

// PhotoStore - хранилище фотографий инцидентов
type PhotoStore interface {
	Save(ctx context.Context, userID uuid.UUID, photo models.PhotoUpload) (*models.StoredPhoto, error)
	Open(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// Verifier - AI-проверка подлинности отчета
type Verifier interface {
	Verify(ctx context.Context, req models.VerificationRequest) (*models.Verification, error)
}

// ChangePublisher рассылает изменения отчетов подписчикам
type ChangePublisher interface {
	Publish(ctx context.Context, event realtime.Event) error
}

// Notifier уведомляет автора о смене статуса его отчета
type Notifier interface {
	NotifyStatusChange(ctx context.Context, report *models.Report, reporter *models.User) error
}
