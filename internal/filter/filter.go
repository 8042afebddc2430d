// Package filter содержит фильтрацию списков отчетов и подсчет счетчиков
// для карты, истории и очереди проверки.
package filter

import (
	"strings"

	"github.com/shenikar/civic_incident_system/internal/models"
)

const all = "all"

func enabled(value string) bool {
	v := strings.TrimSpace(value)
	return v != "" && !strings.EqualFold(v, all)
}

// Match проверяет отчет на соответствие всем включенным критериям фильтра
func Match(r *models.Report, f models.ReportFilter) bool {
	if enabled(f.Type) && !strings.EqualFold(string(r.IncidentType), strings.TrimSpace(f.Type)) {
		return false
	}
	if enabled(f.Severity) && !strings.EqualFold(string(r.Severity), strings.TrimSpace(f.Severity)) {
		return false
	}
	if enabled(f.Status) {
		want, ok := models.ParseStatus(f.Status)
		if !ok || r.Status.Normalize() != want {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(r.Location), q) &&
			!strings.Contains(strings.ToLower(r.Description), q) {
			return false
		}
	}
	return true
}

// Apply возвращает отчеты, прошедшие фильтр, сохраняя исходный порядок
func Apply(reports []*models.Report, f models.ReportFilter) []*models.Report {
	result := make([]*models.Report, 0, len(reports))
	for _, r := range reports {
		if Match(r, f) {
			result = append(result, r)
		}
	}
	return result
}

// CountSeverities считает отчеты по уровням серьезности
func CountSeverities(reports []*models.Report) models.SeverityCounts {
	var counts models.SeverityCounts
	for _, r := range reports {
		switch r.Severity {
		case models.SeverityCritical:
			counts.Critical++
		case models.SeverityHigh:
			counts.High++
		case models.SeverityMedium:
			counts.Medium++
		case models.SeverityLow:
			counts.Low++
		}
	}
	return counts
}

// CountStatuses считает отчеты по статусам, пустой статус учитывается как pending
func CountStatuses(reports []*models.Report) models.StatusCounts {
	var counts models.StatusCounts
	for _, r := range reports {
		counts.Add(r.Status, 1)
	}
	return counts
}

// DefaultReviewSeverity выбирает вкладку очереди проверки: первый непустой уровень
// от critical к low, либо critical, если очередь пуста
func DefaultReviewSeverity(counts models.SeverityCounts) models.Severity {
	for _, s := range models.Severities {
		if counts.Get(s) > 0 {
			return s
		}
	}
	return models.SeverityCritical
}
