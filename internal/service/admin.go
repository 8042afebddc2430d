package service

//go:generate mockgen -source=admin.go -destination=mocks/mock_admin.go -package=mocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/export"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// AdminService определяет контракт кабинета супер-администратора
type AdminService interface {
	Overview(ctx context.Context) (*models.Overview, error)
	ListIncidents(ctx context.Context, status, department string) ([]*models.Report, error)
	Departments(ctx context.Context) ([]string, error)
	ListAdmins(ctx context.Context) ([]*models.User, error)
	CreateAdmin(ctx context.Context, input models.AdminInput) (*models.User, error)
	DeleteAdmin(ctx context.Context, id uuid.UUID) error
	Export(ctx context.Context, format, status, department string) (*models.ExportFile, error)
}

type adminService struct {
	reports ReportRepository
	users   UserRepository
	auth    *authService
	logger  *logrus.Logger
	now     func() time.Time
}

func NewAdminService(reports ReportRepository, users UserRepository, logger *logrus.Logger) AdminService {
	return &adminService{
		reports: reports,
		users:   users,
		auth:    &authService{users: users, logger: logger},
		logger:  logger,
		now:     time.Now,
	}
}

// Overview собирает сводные счетчики параллельными запросами
func (s *adminService) Overview(ctx context.Context) (*models.Overview, error) {
	var (
		statuses models.StatusCounts
		admins   int
		users    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		statuses, err = s.reports.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		admins, err = s.users.CountByRole(gctx, models.RoleAdmin)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.users.CountByRole(gctx, models.RoleUser)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "admin",
			"method":  "Overview",
		}).WithError(err).Error("Failed to collect overview counts")
		return nil, fmt.Errorf("service: could not build overview: %w", err)
	}

	return &models.Overview{
		TotalIncidents:      statuses.Total(),
		PendingIncidents:    statuses.Pending,
		InProgressIncidents: statuses.InProgress,
		ResolvedIncidents:   statuses.Resolved,
		RejectedIncidents:   statuses.Rejected,
		TotalAdmins:         admins,
		TotalUsers:          users,
	}, nil
}

// ListIncidents возвращает отчеты с фильтром по статусу и службе, новые первыми
func (s *adminService) ListIncidents(ctx context.Context, status, department string) ([]*models.Report, error) {
	query, err := incidentQuery(status, department)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.List(ctx, query)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":    "admin",
			"method":     "ListIncidents",
			"status":     status,
			"department": department,
		}).WithError(err).Error("Failed to list incidents")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}
	return reports, nil
}

func incidentQuery(status, department string) (models.ReportQuery, error) {
	var query models.ReportQuery
	if st := strings.TrimSpace(status); st != "" && !strings.EqualFold(st, "all") {
		parsed, ok := models.ParseStatus(st)
		if !ok {
			return query, fmt.Errorf("%w: unknown status %q", models.ErrInvalidInput, status)
		}
		query.Statuses = []models.Status{parsed}
	}
	if d := strings.TrimSpace(department); d != "" && !strings.EqualFold(d, "all") {
		query.Department = d
	}
	return query, nil
}

// Departments возвращает службы, которым направлялись отчеты
func (s *adminService) Departments(ctx context.Context) ([]string, error) {
	departments, err := s.reports.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list departments: %w", err)
	}
	return departments, nil
}

// ListAdmins возвращает администраторов
func (s *adminService) ListAdmins(ctx context.Context) ([]*models.User, error) {
	admins, err := s.users.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("service: could not list admins: %w", err)
	}
	return admins, nil
}

// CreateAdmin создает учетную запись администратора
func (s *adminService) CreateAdmin(ctx context.Context, input models.AdminInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	log := s.logger.WithFields(logrus.Fields{
		"service": "admin",
		"method":  "CreateAdmin",
		"email":   email,
	})
	log.Info("Attempting to create admin")

	role := input.Role
	if role == "" {
		role = models.RoleAdmin
	}
	if role != models.RoleAdmin && role != models.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: role must be admin or super_admin", models.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidInput)
	}
	if err := validateCredentials(email, input.Password); err != nil {
		return nil, err
	}

	user, err := s.auth.createUser(ctx, email, strings.TrimSpace(input.Name), input.Password, role, input.Station, input.District)
	if err != nil {
		log.WithError(err).Warn("Failed to create admin")
		return nil, err
	}

	log.WithField("user_id", user.ID).Info("Admin created successfully")
	return user, nil
}

// DeleteAdmin удаляет администратора. Другие роли так удалить нельзя.
func (s *adminService) DeleteAdmin(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "admin",
		"method":  "DeleteAdmin",
		"user_id": id,
	})

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to delete a non-existent admin")
		return fmt.Errorf("service: could not get admin: %w", err)
	}
	if user.Role != models.RoleAdmin {
		return fmt.Errorf("%w: user %s is not an admin", models.ErrForbidden, id)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete admin in repository")
		return fmt.Errorf("service: could not delete admin: %w", err)
	}
	log.Info("Admin deleted successfully")
	return nil
}

// Export выгружает отчеты в csv, pdf или geojson
func (s *adminService) Export(ctx context.Context, format, status, department string) (*models.ExportFile, error) {
	f, ok := export.ParseFormat(format)
	if !ok {
		return nil, fmt.Errorf("%w: unknown export format %q", models.ErrInvalidInput, format)
	}
	reports, err := s.ListIncidents(ctx, status, department)
	if err != nil {
		return nil, err
	}

	file, err := export.Build(f, reports, s.now())
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "admin",
			"method":  "Export",
			"format":  f,
		}).WithError(err).Error("Failed to build export")
		return nil, fmt.Errorf("service: could not build export: %w", err)
	}
	return file, nil
}
