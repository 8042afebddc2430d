package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind определяет оформление уведомления
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationInfo    NotificationKind = "info"
	NotificationWarning NotificationKind = "warning"
	NotificationUrgent  NotificationKind = "urgent"
)

// Notification - уведомление о ходе обработки отчета
type Notification struct {
	ID        string           `json:"id"`
	ReportID  uuid.UUID        `json:"report_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"type"`
	Severity  Severity         `json:"severity"`
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
}
