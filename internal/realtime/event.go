package realtime

import (
	"time"

	"github.com/shenikar/civic_incident_system/internal/models"
)

// EventType - вид изменения строки отчета
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event - изменение отчета, рассылаемое подписчикам
type Event struct {
	Type       EventType      `json:"type"`
	Report     *models.Report `json:"report"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewEvent создает событие с текущим временем
func NewEvent(t EventType, report *models.Report) Event {
	return Event{Type: t, Report: report, OccurredAt: time.Now().UTC()}
}
