package models

import "strings"

// Severity - порядковая оценка серьезности инцидента
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities в порядке убывания
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// ParseSeverity разбирает серьезность без учета регистра
func ParseSeverity(value string) (Severity, bool) {
	s := Severity(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := severityRank[s]; !ok {
		return "", false
	}
	return s, true
}

// Rank возвращает порядок серьезности, 0 для неизвестного значения
func (s Severity) Rank() int {
	return severityRank[s]
}

// SeverityForType выводит серьезность из типа инцидента
func SeverityForType(incidentType string) Severity {
	switch strings.ToLower(strings.TrimSpace(incidentType)) {
	case "flood", "landslide", "fire":
		return SeverityCritical
	case "accident":
		return SeverityHigh
	case "pothole":
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// SeverityCounts - количество отчетов по уровням серьезности
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Get возвращает счетчик для уровня
func (c SeverityCounts) Get(s Severity) int {
	switch s {
	case SeverityCritical:
		return c.Critical
	case SeverityHigh:
		return c.High
	case SeverityMedium:
		return c.Medium
	case SeverityLow:
		return c.Low
	}
	return 0
}

// Total - сумма по всем уровням
func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low
}
