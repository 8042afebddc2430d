package notify

import (
	"context"
	"fmt"
	"html"
	"sort"

	"github.com/shenikar/civic_incident_system/internal/mailer"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/sirupsen/logrus"
)

// MaxNearby - сколько чужих срочных инцидентов попадает в ленту
const MaxNearby = 3

// Build формирует уведомление о текущем состоянии отчета
func Build(r *models.Report) models.Notification {
	n := models.Notification{
		ID:        r.ID.String(),
		ReportID:  r.ID,
		Severity:  r.Severity,
		Status:    r.Status.Normalize(),
		Timestamp: r.UpdatedAt,
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = r.CreatedAt
	}

	switch n.Status {
	case models.StatusResolved:
		n.Title = "Incident Resolved"
		n.Message = fmt.Sprintf("Your %s severity %s report at %s has been successfully resolved by %s.",
			r.Severity, r.IncidentType, r.Location, r.Department)
		n.Kind = models.NotificationSuccess
	case models.StatusInProgress:
		n.Title = "Incident Under Review"
		n.Message = fmt.Sprintf("%s is actively working on your %s report at %s. Expected resolution: 2-3 days.",
			r.Department, r.IncidentType, r.Location)
		n.Kind = models.NotificationInfo
	case models.StatusRejected:
		n.Title = "Report Rejected"
		n.Message = fmt.Sprintf("Your %s report at %s was reviewed and rejected.", r.IncidentType, r.Location)
		n.Kind = models.NotificationWarning
	default:
		if r.Severity == models.SeverityCritical || r.Severity == models.SeverityHigh {
			n.Title = "Urgent Report Received"
			n.Message = fmt.Sprintf("Your %s severity %s report at %s has been flagged for immediate attention.",
				r.Severity, r.IncidentType, r.Location)
			n.Kind = models.NotificationUrgent
		} else {
			n.Title = "Report Received & Verified"
			n.Message = fmt.Sprintf("Your %s report at %s has been received and is pending review by %s.",
				r.IncidentType, r.Location, r.Department)
			n.Kind = models.NotificationWarning
		}
	}
	return n
}

// BuildAll формирует уведомления для списка отчетов в том же порядке
func BuildAll(reports []*models.Report) []models.Notification {
	out := make([]models.Notification, 0, len(reports))
	for _, r := range reports {
		out = append(out, Build(r))
	}
	return out
}

// BuildNearby формирует предупреждение о срочном инциденте другого жителя
func BuildNearby(r *models.Report) models.Notification {
	return models.Notification{
		ID:        "nearby-" + r.ID.String(),
		ReportID:  r.ID,
		Title:     "Critical Incident Nearby",
		Message:   fmt.Sprintf("%s reported at %s. Stay alert and avoid the area if possible.", r.IncidentType, r.Location),
		Kind:      models.NotificationUrgent,
		Severity:  r.Severity,
		Status:    r.Status.Normalize(),
		Timestamp: r.CreatedAt,
	}
}

// Feed собирает ленту пользователя: уведомления по его отчетам и не больше
// MaxNearby предупреждений о чужих инцидентах. Новые идут первыми.
func Feed(own, nearby []*models.Report) []models.Notification {
	out := BuildAll(own)
	for i, r := range nearby {
		if i == MaxNearby {
			break
		}
		out = append(out, BuildNearby(r))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// EmailNotifier отправляет автору отчета письмо при смене статуса
type EmailNotifier struct {
	mailer *mailer.Mailer
	logger *logrus.Logger
}

// NewEmailNotifier создает EmailNotifier
func NewEmailNotifier(m *mailer.Mailer, logger *logrus.Logger) *EmailNotifier {
	return &EmailNotifier{mailer: m, logger: logger}
}

// NotifyStatusChange отправляет письмо с уведомлением по отчету
func (e *EmailNotifier) NotifyStatusChange(ctx context.Context, report *models.Report, reporter *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if reporter == nil || reporter.Email == "" {
		return nil
	}

	n := Build(report)
	msg := mailer.Message{
		To:      []string{reporter.Email},
		Subject: n.Title,
		Text:    fmt.Sprintf("Hello %s,\n\n%s\n", reporter.DisplayName(), n.Message),
		HTML: fmt.Sprintf("<p>Hello %s,</p><p>%s</p>",
			html.EscapeString(reporter.DisplayName()), html.EscapeString(n.Message)),
	}

	result, err := e.mailer.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send status email: %w", err)
	}
	e.logger.WithFields(logrus.Fields{
		"report_id":  report.ID,
		"status":     n.Status,
		"message_id": result.ProviderMessageID,
	}).Info("Status email sent")
	return nil
}
