package v1

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/shenikar/civic_incident_system/internal/realtime"
)

// DTOToSignUpInput преобразует DTO регистрации в данные сервиса
func DTOToSignUpInput(dto SignUpRequest) models.SignUpInput {
	return models.SignUpInput{
		Name:            dto.Name,
		Email:           dto.Email,
		Password:        dto.Password,
		ConfirmPassword: dto.ConfirmPassword,
	}
}

// DTOToAdminInput преобразует DTO нового администратора в данные сервиса
func DTOToAdminInput(dto CreateAdminRequest) models.AdminInput {
	return models.AdminInput{
		Name:     dto.Name,
		Email:    dto.Email,
		Password: dto.Password,
		Station:  dto.Station,
		District: dto.District,
		Role:     models.Role(dto.Role),
	}
}

// FormToReportInput преобразует поля формы в данные нового отчета.
// Пустая координата остается nil, чтобы сервис сообщил об отсутствии местоположения.
func FormToReportInput(form SubmitReportForm) (models.ReportInput, error) {
	lat, err := parseCoordinate("latitude", form.Latitude)
	if err != nil {
		return models.ReportInput{}, err
	}
	lng, err := parseCoordinate("longitude", form.Longitude)
	if err != nil {
		return models.ReportInput{}, err
	}
	return models.ReportInput{
		IncidentType: form.IncidentType,
		Severity:     form.Severity,
		Description:  form.Description,
		Location:     form.Location,
		Latitude:     lat,
		Longitude:    lng,
	}, nil
}

func parseCoordinate(name, value string) (*float64, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", models.ErrInvalidInput, name)
	}
	return &f, nil
}

// DTOToVerificationRequest преобразует DTO проверки в запрос к верификатору
func DTOToVerificationRequest(dto VerifyIncidentRequest) models.VerificationRequest {
	req := models.VerificationRequest{
		IncidentType: dto.IncidentType,
		Description:  dto.Description,
		PhotoURL:     dto.PhotoURL,
	}
	if dto.Lat != nil {
		req.Latitude = *dto.Lat
	}
	if dto.Lng != nil {
		req.Longitude = *dto.Lng
	}
	return req
}

// ModelToUserResponse преобразует пользователя в DTO для ответа
func ModelToUserResponse(model *models.User) UserResponse {
	return UserResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Role:      string(model.Role),
		Station:   model.Station,
		District:  model.District,
		CreatedAt: model.CreatedAt,
	}
}

// ModelsToUserResponses преобразует слайс пользователей в слайс DTO
func ModelsToUserResponses(users []*models.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = ModelToUserResponse(user)
	}
	return responses
}

// ModelToSessionResponse преобразует сессию в DTO для ответа
func ModelToSessionResponse(model *models.Session) SessionResponse {
	return SessionResponse{
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		User:      ModelToUserResponse(model.User),
	}
}

// ModelToReportResponse преобразует доменную модель в DTO для ответа
func ModelToReportResponse(model *models.Report) *ReportResponse {
	return &ReportResponse{
		ID:           model.ID,
		UserID:       model.UserID,
		ReporterName: model.ReporterName,
		IncidentType: string(model.IncidentType),
		Severity:     string(model.Severity),
		Status:       string(model.Status.Normalize()),
		Description:  model.Description,
		Location:     model.Location,
		Latitude:     model.Latitude,
		Longitude:    model.Longitude,
		PhotoURL:     model.PhotoURL,
		Department:   model.Department,
		AIVerified:   model.AIVerified,
		AIConfidence: model.AIConfidence,
		AIReason:     model.AIReason,
		IsFlagged:    model.IsFlagged,
		ReviewedBy:   model.ReviewedBy,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// ModelsToReportResponses преобразует слайс моделей в слайс DTO
func ModelsToReportResponses(reports []*models.Report) []*ReportResponse {
	responses := make([]*ReportResponse, len(reports))
	for i, report := range reports {
		responses[i] = ModelToReportResponse(report)
	}
	return responses
}

func severityCountsResponse(c models.SeverityCounts) SeverityCountsResponse {
	return SeverityCountsResponse{
		Critical: c.Critical,
		High:     c.High,
		Medium:   c.Medium,
		Low:      c.Low,
	}
}

// ModelToMapResponse преобразует содержимое карты в DTO
func ModelToMapResponse(view *models.MapView) MapResponse {
	clusters := make([]ClusterResponse, len(view.Clusters))
	for i, cluster := range view.Clusters {
		clusters[i] = ClusterResponse{
			Report:      *ModelToReportResponse(cluster.Report),
			ReportCount: cluster.ReportCount,
			Cell:        cluster.Cell,
		}
	}
	return MapResponse{
		Clusters:       clusters,
		SeverityCounts: severityCountsResponse(view.SeverityCounts),
		Total:          view.Total,
	}
}

// ModelToReviewQueueResponse преобразует очередь проверки в DTO
func ModelToReviewQueueResponse(queue *models.ReviewQueue) ReviewQueueResponse {
	return ReviewQueueResponse{
		Severity:       queue.Severity,
		SeverityCounts: severityCountsResponse(queue.SeverityCounts),
		Reports:        ModelsToReportResponses(queue.Reports),
	}
}

// ModelsToNotificationResponses преобразует уведомления в DTO
func ModelsToNotificationResponses(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = NotificationResponse{
			ID:        n.ID,
			ReportID:  n.ReportID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      string(n.Kind),
			Severity:  string(n.Severity),
			Status:    string(n.Status),
			Timestamp: n.Timestamp,
			Read:      n.Read,
		}
	}
	return responses
}

// ModelToOverviewResponse преобразует сводку в DTO
func ModelToOverviewResponse(o *models.Overview) OverviewResponse {
	return OverviewResponse{
		TotalIncidents:      o.TotalIncidents,
		PendingIncidents:    o.PendingIncidents,
		InProgressIncidents: o.InProgressIncidents,
		ResolvedIncidents:   o.ResolvedIncidents,
		RejectedIncidents:   o.RejectedIncidents,
		TotalAdmins:         o.TotalAdmins,
		TotalUsers:          o.TotalUsers,
	}
}

// EventToChangeEventResponse преобразует событие хаба в DTO потока
func EventToChangeEventResponse(e realtime.Event) ChangeEventResponse {
	resp := ChangeEventResponse{
		Type:       string(e.Type),
		OccurredAt: e.OccurredAt,
	}
	if e.Report != nil {
		resp.Report = ModelToReportResponse(e.Report)
	}
	return resp
}
