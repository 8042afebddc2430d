package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/shenikar/civic_incident_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestAdminService(t *testing.T) (*adminService, *mocks.MockReportRepository, *mocks.MockUserRepository) {
	ctrl := gomock.NewController(t)
	reports := mocks.NewMockReportRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	svc := NewAdminService(reports, users, logger).(*adminService)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC) }
	return svc, reports, users
}

func TestOverview(t *testing.T) {
	svc, reports, users := newTestAdminService(t)
	ctx := context.Background()

	reports.EXPECT().CountByStatus(gomock.Any()).Return(models.StatusCounts{Pending: 4, InProgress: 2, Resolved: 5, Rejected: 1}, nil)
	users.EXPECT().CountByRole(gomock.Any(), models.RoleAdmin).Return(3, nil)
	users.EXPECT().CountByRole(gomock.Any(), models.RoleUser).Return(40, nil)

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.Overview{
		TotalIncidents:      12,
		PendingIncidents:    4,
		InProgressIncidents: 2,
		ResolvedIncidents:   5,
		RejectedIncidents:   1,
		TotalAdmins:         3,
		TotalUsers:          40,
	}, overview)
}

func TestOverview_Error(t *testing.T) {
	svc, reports, users := newTestAdminService(t)

	reports.EXPECT().CountByStatus(gomock.Any()).Return(models.StatusCounts{}, errors.New("db down"))
	users.EXPECT().CountByRole(gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()

	_, err := svc.Overview(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestListIncidents_Filters(t *testing.T) {
	svc, reports, _ := newTestAdminService(t)
	ctx := context.Background()

	reports.EXPECT().
		List(ctx, models.ReportQuery{Statuses: []models.Status{models.StatusResolved}, Department: "Fire Department"}).
		Return([]*models.Report{{ID: uuid.New()}}, nil)

	list, err := svc.ListIncidents(ctx, "resolved", "Fire Department")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	reports.EXPECT().List(ctx, models.ReportQuery{}).Return(nil, nil)
	_, err = svc.ListIncidents(ctx, "all", "all")
	require.NoError(t, err)

	_, err = svc.ListIncidents(ctx, "lost", "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCreateAdmin(t *testing.T) {
	svc, _, users := newTestAdminService(t)
	ctx := context.Background()

	users.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			assert.Equal(t, models.RoleAdmin, u.Role)
			assert.Equal(t, "Station 4", u.Station)
			assert.Equal(t, "North", u.District)
			u.ID = uuid.New()
			return nil
		})

	user, err := svc.CreateAdmin(ctx, models.AdminInput{
		Name:     "Officer Rao",
		Email:    "rao@city.gov",
		Password: "secret1",
		Station:  " Station 4 ",
		District: "North",
	})
	require.NoError(t, err)
	assert.Equal(t, "rao@city.gov", user.Email)
}

func TestCreateAdmin_Validation(t *testing.T) {
	svc, _, _ := newTestAdminService(t)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, models.AdminInput{Name: "X", Email: "x@y.z", Password: "secret1", Role: models.RoleUser})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.CreateAdmin(ctx, models.AdminInput{Email: "x@y.z", Password: "secret1"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.CreateAdmin(ctx, models.AdminInput{Name: "X", Email: "x@y.z", Password: "123"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestDeleteAdmin(t *testing.T) {
	svc, _, users := newTestAdminService(t)
	ctx := context.Background()
	adminID := uuid.New()
	citizenID := uuid.New()

	users.EXPECT().GetByID(ctx, adminID).Return(&models.User{ID: adminID, Role: models.RoleAdmin}, nil)
	users.EXPECT().Delete(ctx, adminID).Return(nil)
	require.NoError(t, svc.DeleteAdmin(ctx, adminID))

	users.EXPECT().GetByID(ctx, citizenID).Return(&models.User{ID: citizenID, Role: models.RoleUser}, nil)
	assert.ErrorIs(t, svc.DeleteAdmin(ctx, citizenID), models.ErrForbidden)
}

func TestExport_CSV(t *testing.T) {
	svc, reports, _ := newTestAdminService(t)
	ctx := context.Background()

	reports.EXPECT().List(ctx, models.ReportQuery{}).Return([]*models.Report{
		{ID: uuid.New(), IncidentType: models.IncidentFire, Severity: models.SeverityCritical, Status: models.StatusPending, Location: "Market"},
	}, nil)

	file, err := svc.Export(ctx, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "incidents-20260301-103000.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "id,created_at,incident_type"))
}

func TestExport_UnknownFormat(t *testing.T) {
	svc, _, _ := newTestAdminService(t)
	_, err := svc.Export(context.Background(), "xlsx", "", "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
