package webhook

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/civic_incident_system/internal/models"
)

const (
	dispatchQueueKey = "dispatch_events"
)

// DispatchEvent - поручение профильной службе выехать на подтвержденный инцидент
type DispatchEvent struct {
	ReportID     uuid.UUID           `json:"report_id"`
	IncidentType models.IncidentType `json:"incident_type"`
	Severity     models.Severity     `json:"severity"`
	Department   string              `json:"department"`
	Latitude     float64             `json:"latitude"`
	Longitude    float64             `json:"longitude"`
	Location     string              `json:"location"`
	Description  string              `json:"description"`
	PhotoURL     string              `json:"photo_url"`
	DispatchedBy uuid.UUID           `json:"dispatched_by"`
	Timestamp    time.Time           `json:"timestamp"`
}

// NewDispatchEvent собирает поручение по отчету
func NewDispatchEvent(report *models.Report, dispatchedBy uuid.UUID) DispatchEvent {
	return DispatchEvent{
		ReportID:     report.ID,
		IncidentType: report.IncidentType,
		Severity:     report.Severity,
		Department:   report.Department,
		Latitude:     report.Latitude,
		Longitude:    report.Longitude,
		Location:     report.Location,
		Description:  report.Description,
		PhotoURL:     report.PhotoURL,
		DispatchedBy: dispatchedBy,
		Timestamp:    time.Now().UTC(),
	}
}

// DispatchPublisher - интерфейс для постановки поручений в очередь
type DispatchPublisher interface {
	Publish(ctx context.Context, event DispatchEvent) error
}

// RedisDispatchPublisher - реализация DispatchPublisher, использующая список Redis
type RedisDispatchPublisher struct {
	redisClient *redis.Client
}

// NewRedisDispatchPublisher создает новый RedisDispatchPublisher
func NewRedisDispatchPublisher(client *redis.Client) *RedisDispatchPublisher {
	return &RedisDispatchPublisher{
		redisClient: client,
	}
}

// Publish добавляет поручение в очередь
func (p *RedisDispatchPublisher) Publish(ctx context.Context, event DispatchEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch event: %w", err)
	}

	// LPUSH в голову списка, воркер забирает с хвоста через BRPOP
	if err := p.redisClient.LPush(ctx, dispatchQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish dispatch event to Redis: %w", err)
	}
	return nil
}
