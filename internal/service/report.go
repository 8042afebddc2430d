package service

//go:generate mockgen -source=report.go -destination=mocks/mock_report.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/config"
	"github.com/shenikar/civic_incident_system/internal/filter"
	"github.com/shenikar/civic_incident_system/internal/geo"
	"github.com/shenikar/civic_incident_system/internal/metrics"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/shenikar/civic_incident_system/internal/notify"
	"github.com/shenikar/civic_incident_system/internal/realtime"
	"github.com/shenikar/civic_incident_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// MaxDescriptionLength - максимальная длина описания отчета в символах
const MaxDescriptionLength = 2000

// ReportRepository определяет контракт для работы с бд отчетов
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.Status, flagged bool, reviewedBy *uuid.UUID) (*models.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query models.ReportQuery) ([]*models.Report, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (models.StatusCounts, error)
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
	ListDepartments(ctx context.Context) ([]string, error)
	GetReportFromCache(ctx context.Context, id uuid.UUID) (*models.Report, error)
	SetReportCache(ctx context.Context, report *models.Report) error
	InvalidateReportCache(ctx context.Context, id uuid.UUID) error
}

// ReportService определяет контракт бизнес-логики отчетов об инцидентах
type ReportService interface {
	SubmitReport(ctx context.Context, author models.Principal, input models.ReportInput, photo *models.PhotoUpload) (*models.Report, error)
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListMyReports(ctx context.Context, userID uuid.UUID, status string) ([]*models.Report, error)
	ProfileStats(ctx context.Context, userID uuid.UUID) (*models.ProfileStats, error)
	Notifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	LiveMap(ctx context.Context, f models.ReportFilter) (*models.MapView, error)
	ReviewQueue(ctx context.Context, severity string) (*models.ReviewQueue, error)
	ReviewReport(ctx context.Context, reviewer models.Principal, id uuid.UUID, action models.ReviewAction) (*models.Report, error)
	ResolveReport(ctx context.Context, reviewer models.Principal, id uuid.UUID) (*models.Report, error)
	DeleteReport(ctx context.Context, id uuid.UUID) error
	VerifyIncident(ctx context.Context, req models.VerificationRequest) (*models.Verification, error)
	OpenPhoto(ctx context.Context, key string) ([]byte, string, error)
}

// ReportOption настраивает необязательные зависимости сервиса отчетов
type ReportOption func(*reportService)

// WithVerifier подключает AI-проверку
func WithVerifier(v Verifier) ReportOption {
	return func(s *reportService) { s.verifier = v }
}

// WithNotifier подключает почтовые уведомления авторов
func WithNotifier(n Notifier) ReportOption {
	return func(s *reportService) { s.notifier = n }
}

// WithMetrics подключает метрики
func WithMetrics(m *metrics.Metrics) ReportOption {
	return func(s *reportService) { s.metrics = m }
}

type reportService struct {
	repo       ReportRepository
	users      UserRepository
	photos     PhotoStore
	publisher  ChangePublisher
	dispatcher webhook.DispatchPublisher
	verifier   Verifier
	notifier   Notifier
	metrics    *metrics.Metrics
	logger     *logrus.Logger
	cfg        *config.Config
}

func NewReportService(
	repo ReportRepository,
	users UserRepository,
	photos PhotoStore,
	publisher ChangePublisher,
	dispatcher webhook.DispatchPublisher,
	logger *logrus.Logger,
	cfg *config.Config,
	opts ...ReportOption,
) ReportService {
	s := &reportService{
		repo:       repo,
		users:      users,
		photos:     photos,
		publisher:  publisher,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitReport проверяет данные формы, сохраняет фотографию и создает отчет в статусе pending
func (s *reportService) SubmitReport(ctx context.Context, author models.Principal, input models.ReportInput, photo *models.PhotoUpload) (*models.Report, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "report",
		"method":  "SubmitReport",
		"user_id": author.UserID,
	})
	log.Info("Attempting to submit a new report")

	report, err := buildReport(author, input)
	if err != nil {
		log.WithError(err).Warn("Report input rejected")
		return nil, err
	}

	if photo != nil {
		stored, err := s.photos.Save(ctx, author.UserID, *photo)
		if err != nil {
			log.WithError(err).Error("Failed to store report photo")
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		report.PhotoURL = stored.URL
		report.PhotoKey = stored.Key

		if s.verifier != nil && s.cfg.AIVerifyOnSubmit && report.Description != "" {
			s.verifyOnSubmit(ctx, report, photo.Data, stored.ContentType, log)
		}
	}

	if err := s.repo.Create(ctx, report); err != nil {
		log.WithError(err).Error("Failed to create report in repository")
		if report.PhotoKey != "" {
			if delErr := s.photos.Delete(ctx, report.PhotoKey); delErr != nil {
				log.WithError(delErr).WithField("photo_key", report.PhotoKey).Warn("Failed to remove orphaned photo")
			}
		}
		return nil, fmt.Errorf("service: could not create report: %w", err)
	}

	s.publish(ctx, realtime.EventInsert, report)
	if s.metrics != nil {
		s.metrics.ReportsSubmitted.WithLabelValues(string(report.IncidentType), string(report.Severity)).Inc()
	}

	log.WithField("report_id", report.ID).Info("Report submitted successfully")
	return report, nil
}

// buildReport превращает данные формы в отчет
func buildReport(author models.Principal, input models.ReportInput) (*models.Report, error) {
	if strings.TrimSpace(input.IncidentType) == "" {
		return nil, fmt.Errorf("%w: incident type is required", models.ErrInvalidInput)
	}
	incidentType, ok := models.ParseIncidentType(input.IncidentType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown incident type %q", models.ErrInvalidInput, input.IncidentType)
	}

	if input.Latitude == nil || input.Longitude == nil {
		return nil, fmt.Errorf("%w: location is required", models.ErrInvalidInput)
	}
	lat, lng := *input.Latitude, *input.Longitude
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", models.ErrInvalidInput)
	}

	severity := incidentType.DefaultSeverity()
	if strings.TrimSpace(input.Severity) != "" {
		severity, ok = models.ParseSeverity(input.Severity)
		if !ok {
			return nil, fmt.Errorf("%w: unknown severity %q", models.ErrInvalidInput, input.Severity)
		}
	}

	description := strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description exceeds %d characters", models.ErrInvalidInput, MaxDescriptionLength)
	}

	location := strings.TrimSpace(input.Location)
	if location == "" {
		location = models.FormatLocation(lat, lng)
	}

	reporterName := author.Name
	if strings.TrimSpace(reporterName) == "" {
		reporterName = author.Email
	}

	return &models.Report{
		UserID:       author.UserID,
		ReporterName: reporterName,
		IncidentType: incidentType,
		Severity:     severity,
		Status:       models.StatusPending,
		Description:  description,
		Location:     location,
		Latitude:     lat,
		Longitude:    lng,
		Department:   incidentType.Department(),
	}, nil
}

// verifyOnSubmit проверяет отчет до сохранения. Ошибка проверки не мешает подаче отчета.
func (s *reportService) verifyOnSubmit(ctx context.Context, report *models.Report, photo []byte, mime string, log *logrus.Entry) {
	verdict, err := s.verifier.Verify(ctx, models.VerificationRequest{
		IncidentType: string(report.IncidentType),
		Description:  report.Description,
		Latitude:     report.Latitude,
		Longitude:    report.Longitude,
		PhotoURL:     report.PhotoURL,
		Photo:        photo,
		PhotoMIME:    mime,
	})
	if err != nil {
		log.WithError(err).Warn("AI verification failed, report kept unverified")
		s.recordVerification(nil)
		report.ApplyVerification(&models.Verification{Reason: fmt.Sprintf("verification failed: %v", err)})
		return
	}
	s.recordVerification(verdict)
	report.ApplyVerification(verdict)
}

// GetReport получает отчет по ID, сначала из кеша
func (s *reportService) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "GetReport",
		"report_id": id,
	})

	cached, err := s.repo.GetReportFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read report from cache")
	}
	if cached != nil {
		log.Debug("Report served from cache")
		return cached, nil
	}

	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get report from repository")
		return nil, fmt.Errorf("service: could not get report: %w", err)
	}

	if err := s.repo.SetReportCache(ctx, report); err != nil {
		log.WithError(err).Warn("Failed to cache report")
	}
	return report, nil
}

// ListMyReports возвращает отчеты пользователя, новые первыми
func (s *reportService) ListMyReports(ctx context.Context, userID uuid.UUID, status string) ([]*models.Report, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "report",
		"method":  "ListMyReports",
		"user_id": userID,
		"status":  status,
	})

	query := models.ReportQuery{UserID: &userID}
	if st := strings.TrimSpace(status); st != "" && !strings.EqualFold(st, "all") {
		parsed, ok := models.ParseStatus(st)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidInput, status)
		}
		query.Statuses = []models.Status{parsed}
	}

	reports, err := s.repo.List(ctx, query)
	if err != nil {
		log.WithError(err).Error("Failed to list reports from repository")
		return nil, fmt.Errorf("service: could not list reports: %w", err)
	}

	log.WithField("count", len(reports)).Info("Reports listed successfully")
	return reports, nil
}

// ProfileStats возвращает число отчетов пользователя и число решенных
func (s *reportService) ProfileStats(ctx context.Context, userID uuid.UUID) (*models.ProfileStats, error) {
	counts, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "report",
			"method":  "ProfileStats",
			"user_id": userID,
		}).WithError(err).Error("Failed to count user reports")
		return nil, fmt.Errorf("service: could not count reports: %w", err)
	}
	return &models.ProfileStats{
		TotalReports:    counts.Total(),
		ResolvedReports: counts.Resolved,
	}, nil
}

// nearbyQuery выбирает свежие срочные инциденты других жителей
func nearbyQuery(userID uuid.UUID) models.ReportQuery {
	return models.ReportQuery{
		ExcludeUserID:   &userID,
		ExcludeStatuses: []models.Status{models.StatusRejected},
		Severities:      []models.Severity{models.SeverityCritical, models.SeverityHigh},
		Limit:           notify.MaxNearby,
	}
}

// Notifications строит ленту уведомлений по отчетам пользователя и срочным инцидентам рядом
func (s *reportService) Notifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "report",
		"method":  "Notifications",
		"user_id": userID,
	})

	reports, err := s.repo.List(ctx, models.ReportQuery{UserID: &userID})
	if err != nil {
		log.WithError(err).Error("Failed to list reports for notifications")
		return nil, fmt.Errorf("service: could not list notifications: %w", err)
	}

	nearby, err := s.repo.List(ctx, nearbyQuery(userID))
	if err != nil {
		log.WithError(err).Error("Failed to list nearby incidents for notifications")
		return nil, fmt.Errorf("service: could not list notifications: %w", err)
	}
	return notify.Feed(reports, nearby), nil
}

// LiveMap возвращает неотклоненные отчеты, сгруппированные по близости
func (s *reportService) LiveMap(ctx context.Context, f models.ReportFilter) (*models.MapView, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "report",
		"method":  "LiveMap",
	})

	reports, err := s.repo.List(ctx, models.ReportQuery{
		ExcludeStatuses: []models.Status{models.StatusRejected},
	})
	if err != nil {
		log.WithError(err).Error("Failed to list reports for map")
		return nil, fmt.Errorf("service: could not load map: %w", err)
	}

	// Группы строятся по всем отчетам, фильтр применяется к якорю группы
	clusters := geo.GroupNearby(reports, s.cfg.ClusterRadiusMeters)
	anchors := make([]*models.Report, 0, len(clusters))
	visible := make([]*models.MapCluster, 0, len(clusters))
	for _, cluster := range clusters {
		anchors = append(anchors, cluster.Report)
		if filter.Match(cluster.Report, f) {
			visible = append(visible, cluster)
		}
	}

	log.WithFields(logrus.Fields{
		"reports":  len(reports),
		"clusters": len(visible),
	}).Debug("Map built")

	return &models.MapView{
		Clusters:       visible,
		SeverityCounts: filter.CountSeverities(anchors),
		Total:          len(visible),
	}, nil
}

// ReviewQueue возвращает отчеты, ожидающие решения. Без явной серьезности
// показывается самая высокая, по которой есть отчеты.
func (s *reportService) ReviewQueue(ctx context.Context, severity string) (*models.ReviewQueue, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "report",
		"method":   "ReviewQueue",
		"severity": severity,
	})

	reports, err := s.repo.List(ctx, models.ReportQuery{
		Statuses: []models.Status{models.StatusPending},
	})
	if err != nil {
		log.WithError(err).Error("Failed to list pending reports")
		return nil, fmt.Errorf("service: could not load review queue: %w", err)
	}

	counts := filter.CountSeverities(reports)
	effective := strings.ToLower(strings.TrimSpace(severity))
	if effective == "" {
		effective = string(filter.DefaultReviewSeverity(counts))
	}
	if effective != "all" {
		if _, ok := models.ParseSeverity(effective); !ok {
			return nil, fmt.Errorf("%w: unknown severity %q", models.ErrInvalidInput, severity)
		}
	}

	return &models.ReviewQueue{
		Reports:        filter.Apply(reports, models.ReportFilter{Severity: effective}),
		SeverityCounts: counts,
		Severity:       effective,
	}, nil
}

// ReviewReport подтверждает или отклоняет отчет в статусе pending
func (s *reportService) ReviewReport(ctx context.Context, reviewer models.Principal, id uuid.UUID, action models.ReviewAction) (*models.Report, error) {
	var (
		next    models.Status
		flagged bool
	)
	switch action {
	case models.ReviewConfirm:
		next = models.StatusInProgress
	case models.ReviewReject:
		next, flagged = models.StatusRejected, true
	default:
		return nil, fmt.Errorf("%w: unknown review action %q", models.ErrInvalidInput, action)
	}

	report, err := s.changeStatus(ctx, "ReviewReport", reviewer, id, next, flagged)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.Reviews.WithLabelValues(string(action)).Inc()
	}

	if action == models.ReviewConfirm {
		if err := s.dispatcher.Publish(ctx, webhook.NewDispatchEvent(report, reviewer.UserID)); err != nil {
			s.logger.WithFields(logrus.Fields{
				"service":   "report",
				"method":    "ReviewReport",
				"report_id": id,
			}).WithError(err).Error("Failed to enqueue dispatch webhook")
		}
	}
	return report, nil
}

// ResolveReport закрывает отчет, над которым работает служба
func (s *reportService) ResolveReport(ctx context.Context, reviewer models.Principal, id uuid.UUID) (*models.Report, error) {
	return s.changeStatus(ctx, "ResolveReport", reviewer, id, models.StatusResolved, false)
}

func (s *reportService) changeStatus(ctx context.Context, method string, reviewer models.Principal, id uuid.UUID, next models.Status, flagged bool) (*models.Report, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "report",
		"method":      method,
		"report_id":   id,
		"reviewer_id": reviewer.UserID,
		"next_status": next,
	})
	log.Info("Attempting to change report status")

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to change status of a non-existent report")
		return nil, fmt.Errorf("service: could not get report: %w", err)
	}

	from := current.Status.Normalize()
	if !from.CanTransitionTo(next) {
		log.WithField("status", from).Warn("Status transition not allowed")
		return nil, fmt.Errorf("%w: report is %s, cannot move to %s", models.ErrInvalidTransition, from, next)
	}

	reviewerID := reviewer.UserID
	updated, err := s.repo.UpdateStatus(ctx, id, from, next, flagged, &reviewerID)
	if err != nil {
		log.WithError(err).Error("Failed to update report status in repository")
		return nil, fmt.Errorf("service: could not update report status: %w", err)
	}

	if err := s.repo.InvalidateReportCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate report cache")
	}
	s.publish(ctx, realtime.EventUpdate, updated)
	if s.metrics != nil {
		s.metrics.StatusChanges.WithLabelValues(string(next)).Inc()
	}
	s.notifyReporter(ctx, updated, log)

	log.Info("Report status changed successfully")
	return updated, nil
}

func (s *reportService) notifyReporter(ctx context.Context, report *models.Report, log *logrus.Entry) {
	if s.notifier == nil {
		return
	}
	reporter, err := s.users.GetByID(ctx, report.UserID)
	if err != nil {
		log.WithError(err).Warn("Failed to load reporter for notification")
		return
	}
	if err := s.notifier.NotifyStatusChange(ctx, report, reporter); err != nil {
		log.WithError(err).Warn("Failed to notify reporter")
	}
}

// DeleteReport удаляет отчет
func (s *reportService) DeleteReport(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "DeleteReport",
		"report_id": id,
	})
	log.Info("Attempting to delete report")

	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to delete a non-existent report")
		return fmt.Errorf("service: could not get report: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete report in repository")
		return fmt.Errorf("service: could not delete report: %w", err)
	}

	if err := s.repo.InvalidateReportCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate report cache")
	}
	s.publish(ctx, realtime.EventDelete, report)

	log.Info("Report deleted successfully")
	return nil
}

// VerifyIncident запрашивает вердикт AI по данным отчета
func (s *reportService) VerifyIncident(ctx context.Context, req models.VerificationRequest) (*models.Verification, error) {
	if s.verifier == nil {
		return nil, models.ErrVerificationUnavailable
	}
	log := s.logger.WithFields(logrus.Fields{
		"service":       "report",
		"method":        "VerifyIncident",
		"incident_type": req.IncidentType,
	})

	if len(req.Photo) == 0 {
		if key, ok := s.photos.KeyFromURL(req.PhotoURL); ok {
			data, mime, err := s.photos.Open(ctx, key)
			if err != nil {
				log.WithError(err).Warn("Failed to load local photo, sending URL instead")
			} else {
				req.Photo, req.PhotoMIME = data, mime
			}
		}
	}

	verdict, err := s.verifier.Verify(ctx, req)
	if err != nil {
		if !errors.Is(err, models.ErrInvalidInput) {
			s.recordVerification(nil)
		}
		log.WithError(err).Error("Gemini verification failed")
		return nil, fmt.Errorf("service: verification failed: %w", err)
	}
	s.recordVerification(verdict)

	log.WithFields(logrus.Fields{
		"verified":   verdict.Verified,
		"confidence": verdict.Confidence,
	}).Info("Verification completed")
	return verdict, nil
}

// OpenPhoto возвращает фотографию для раздачи
func (s *reportService) OpenPhoto(ctx context.Context, key string) ([]byte, string, error) {
	return s.photos.Open(ctx, key)
}

func (s *reportService) publish(ctx context.Context, t realtime.EventType, report *models.Report) {
	if err := s.publisher.Publish(ctx, realtime.NewEvent(t, report)); err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":    "report",
			"event_type": t,
			"report_id":  report.ID,
		}).WithError(err).Warn("Failed to publish realtime event")
	}
}

func (s *reportService) recordVerification(v *models.Verification) {
	if s.metrics == nil {
		return
	}
	outcome := "error"
	if v != nil {
		outcome = "fake"
		if v.Verified {
			outcome = "verified"
		}
	}
	s.metrics.Verifications.WithLabelValues(outcome).Inc()
}
