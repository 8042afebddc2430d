package v1

import (
	"time"

	"github.com/google/uuid"
)

// SignUpRequest DTO для регистрации
// @Description DTO для регистрации
type SignUpRequest struct {
	Name            string `json:"name" validate:"max=255"`
	Email           string `json:"email" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// LoginRequest DTO для входа
// @Description DTO для входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse DTO для ответа с информацией о пользователе
// @Description DTO для ответа с информацией о пользователе
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Station   string    `json:"station,omitempty"`
	District  string    `json:"district,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse DTO для ответа на успешный вход
// @Description DTO для ответа на успешный вход
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// SubmitReportForm - поля multipart формы нового отчета, фотография передается в поле photo
type SubmitReportForm struct {
	IncidentType string `form:"incident_type"`
	Severity     string `form:"severity"`
	Description  string `form:"description"`
	Location     string `form:"location"`
	Latitude     string `form:"latitude"`
	Longitude    string `form:"longitude"`
}

// ReportResponse DTO для ответа с информацией об отчете
// @Description DTO для ответа с информацией об отчете
type ReportResponse struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	ReporterName string     `json:"reporter_name"`
	IncidentType string     `json:"incident_type"`
	Severity     string     `json:"severity"`
	Status       string     `json:"status"`
	Description  string     `json:"description,omitempty"`
	Location     string     `json:"location"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	PhotoURL     string     `json:"photo_url,omitempty"`
	Department   string     `json:"department"`
	AIVerified   bool       `json:"ai_verified"`
	AIConfidence float64    `json:"ai_confidence"`
	AIReason     string     `json:"ai_reason,omitempty"`
	IsFlagged    bool       `json:"is_flagged"`
	ReviewedBy   *uuid.UUID `json:"reviewed_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SeverityCountsResponse DTO со счетчиками по серьезности
type SeverityCountsResponse struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// ClusterResponse DTO метки живой карты
type ClusterResponse struct {
	Report      ReportResponse `json:"report"`
	ReportCount int            `json:"report_count"`
	Cell        string         `json:"cell"`
}

// MapResponse DTO живой карты
// @Description DTO живой карты
type MapResponse struct {
	Clusters       []ClusterResponse      `json:"clusters"`
	SeverityCounts SeverityCountsResponse `json:"severity_counts"`
	Total          int                    `json:"total"`
}

// ReviewQueueResponse DTO очереди проверки
// @Description DTO очереди проверки
type ReviewQueueResponse struct {
	Severity       string                 `json:"severity"`
	SeverityCounts SeverityCountsResponse `json:"severity_counts"`
	Reports        []*ReportResponse      `json:"reports"`
}

// ReviewRequest DTO решения администратора
// @Description DTO решения администратора
type ReviewRequest struct {
	Action string `json:"action" validate:"required,oneof=confirm reject"`
}

// VerifyIncidentRequest DTO для AI-проверки инцидента
// @Description DTO для AI-проверки инцидента
type VerifyIncidentRequest struct {
	IncidentType string   `json:"incidentType" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Lat          *float64 `json:"lat" validate:"required"`
	Lng          *float64 `json:"lng" validate:"required"`
	PhotoURL     string   `json:"photoUrl" validate:"required"`
}

// VerificationResponse DTO вердикта AI-проверки
// @Description DTO вердикта AI-проверки
type VerificationResponse struct {
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ProfileStatsResponse DTO статистики профиля
// @Description DTO статистики профиля
type ProfileStatsResponse struct {
	TotalReports    int `json:"total_reports"`
	ResolvedReports int `json:"resolved_reports"`
}

// NotificationResponse DTO уведомления
// @Description DTO уведомления
type NotificationResponse struct {
	ID        string    `json:"id"`
	ReportID  uuid.UUID `json:"report_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// OverviewResponse DTO сводки супер-администратора
// @Description DTO сводки супер-администратора
type OverviewResponse struct {
	TotalIncidents      int `json:"total_incidents"`
	PendingIncidents    int `json:"pending_incidents"`
	InProgressIncidents int `json:"in_progress_incidents"`
	ResolvedIncidents   int `json:"resolved_incidents"`
	RejectedIncidents   int `json:"rejected_incidents"`
	TotalAdmins         int `json:"total_admins"`
	TotalUsers          int `json:"total_users"`
}

// CreateAdminRequest DTO для создания администратора
// @Description DTO для создания администратора
type CreateAdminRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Station  string `json:"station" validate:"max=255"`
	District string `json:"district" validate:"max=255"`
	Role     string `json:"role" validate:"omitempty,oneof=admin super_admin"`
}

// ChangeEventResponse DTO события потока изменений
// @Description DTO события потока изменений
type ChangeEventResponse struct {
	Type       string          `json:"type"`
	Report     *ReportResponse `json:"report"`
	OccurredAt time.Time       `json:"occurred_at"`
}
