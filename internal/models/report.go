package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IncidentType - тип гражданского инцидента
type IncidentType string

const (
	IncidentFlood     IncidentType = "Flood"
	IncidentPuddle    IncidentType = "Puddle"
	IncidentPothole   IncidentType = "Pothole"
	IncidentLandslide IncidentType = "Landslide"
	IncidentFire      IncidentType = "Fire"
	IncidentAccident  IncidentType = "Accident"
	IncidentOther     IncidentType = "Other"
)

// IncidentTypes - все поддерживаемые типы в порядке отображения
var IncidentTypes = []IncidentType{
	IncidentFlood,
	IncidentPuddle,
	IncidentPothole,
	IncidentLandslide,
	IncidentFire,
	IncidentAccident,
	IncidentOther,
}

var departmentByType = map[IncidentType]string{
	IncidentFire:      "Fire Department",
	IncidentFlood:     "Disaster Management Cell",
	IncidentLandslide: "Disaster Management Cell",
	IncidentAccident:  "Traffic Police",
	IncidentPothole:   "Public Works Dept",
	IncidentPuddle:    "Public Works Dept",
	IncidentOther:     DefaultDepartment,
}

// DefaultDepartment получает отчеты, для которых не нашлось профильной службы
const DefaultDepartment = "Municipal Authority"

// ParseIncidentType разбирает тип без учета регистра
func ParseIncidentType(value string) (IncidentType, bool) {
	v := strings.TrimSpace(value)
	for _, t := range IncidentTypes {
		if strings.EqualFold(string(t), v) {
			return t, true
		}
	}
	return "", false
}

// DefaultSeverity возвращает серьезность, назначаемую типу автоматически
func (t IncidentType) DefaultSeverity() Severity {
	return SeverityForType(string(t))
}

// Department возвращает службу, которую уведомляют об инциденте этого типа
func (t IncidentType) Department() string {
	if dept, ok := departmentByType[t]; ok {
		return dept
	}
	return DefaultDepartment
}

// ReviewAction - решение администратора по отчету в очереди проверки
type ReviewAction string

const (
	ReviewConfirm ReviewAction = "confirm"
	ReviewReject  ReviewAction = "reject"
)

// Report - отчет об инциденте, отправленный гражданином
type Report struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	ReporterName string       `json:"reporter_name"`
	IncidentType IncidentType `json:"incident_type"`
	Severity     Severity     `json:"severity"`
	Status       Status       `json:"status"`
	Description  string       `json:"description"`
	Location     string       `json:"location"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	PhotoURL     string       `json:"photo_url"`
	PhotoKey     string       `json:"photo_key"`
	Department   string       `json:"department"`
	AIVerified   bool         `json:"ai_verified"`
	AIConfidence float64      `json:"ai_confidence"`
	AIReason     string       `json:"ai_reason"`
	IsFlagged    bool         `json:"is_flagged"`
	ReviewedBy   *uuid.UUID   `json:"reviewed_by,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ApplyVerification переносит вердикт AI-проверки в отчет
func (r *Report) ApplyVerification(v *Verification) {
	r.AIVerified = v.Verified
	r.AIConfidence = v.Confidence
	r.AIReason = v.Reason
	if !v.Verified && v.Checked {
		r.IsFlagged = true
	}
}

// FormatLocation возвращает подпись местоположения, если пользователь ее не указал
func FormatLocation(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}

// ReportInput - данные формы нового отчета
type ReportInput struct {
	IncidentType string
	Severity     string
	Description  string
	Location     string
	Latitude     *float64
	Longitude    *float64
}

// ReportQuery - параметры выборки отчетов из хранилища
type ReportQuery struct {
	UserID          *uuid.UUID
	ExcludeUserID   *uuid.UUID
	Statuses        []Status
	ExcludeStatuses []Status
	Severities      []Severity
	Department      string
	Limit           int
}

// ReportFilter - фильтры списков и карты. Пустое значение или "all" отключает критерий.
type ReportFilter struct {
	Type     string
	Severity string
	Status   string
	Search   string
}

// MapCluster - группа близких отчетов одного типа на живой карте
type MapCluster struct {
	Report      *Report `json:"report"`
	ReportCount int     `json:"report_count"`
	Cell        string  `json:"cell"`
}

// MapView - содержимое живой карты
type MapView struct {
	Clusters       []*MapCluster  `json:"clusters"`
	SeverityCounts SeverityCounts `json:"severity_counts"`
	Total          int            `json:"total"`
}

// ReviewQueue - очередь отчетов, ожидающих решения администратора
type ReviewQueue struct {
	Reports        []*Report      `json:"reports"`
	SeverityCounts SeverityCounts `json:"severity_counts"`
	Severity       string         `json:"severity"`
}
