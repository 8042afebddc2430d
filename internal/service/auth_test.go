package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/auth"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/shenikar/civic_incident_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSecret = "test-secret-0123456789"

func newTestAuthService(t *testing.T) (AuthService, *mocks.MockUserRepository) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewAuthService(users, auth.NewTokenManager(testSecret, time.Hour), logger), users
}

func TestSignUp_Success(t *testing.T) {
	svc, users := newTestAuthService(t)
	ctx := context.Background()

	users.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			assert.Equal(t, "meera@example.org", u.Email)
			assert.Equal(t, models.RoleUser, u.Role)
			assert.True(t, auth.CheckPassword(u.PasswordHash, "secret1"))
			u.ID = uuid.New()
			return nil
		})

	user, err := svc.SignUp(ctx, models.SignUpInput{
		Name:            " Meera ",
		Email:           " Meera@Example.org ",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Meera", user.Name)
	assert.NotEqual(t, uuid.Nil, user.ID)
}

func TestSignUp_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   models.SignUpInput
		message string
	}{
		{"mismatch", models.SignUpInput{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret2"}, "Passwords do not match"},
		{"short password", models.SignUpInput{Email: "a@b.co", Password: "12345", ConfirmPassword: "12345"}, "Password must be at least 6 characters"},
		{"bad email", models.SignUpInput{Email: "not-an-email", Password: "secret1", ConfirmPassword: "secret1"}, "invalid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestAuthService(t)
			_, err := svc.SignUp(context.Background(), tt.input)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
			assert.ErrorContains(t, err, tt.message)
		})
	}
}

func TestSignUp_EmailTaken(t *testing.T) {
	svc, users := newTestAuthService(t)
	ctx := context.Background()

	users.EXPECT().Create(ctx, gomock.Any()).Return(models.ErrEmailTaken)

	_, err := svc.SignUp(ctx, models.SignUpInput{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"})
	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestLogin_SuccessAndAuthenticate(t *testing.T) {
	svc, users := newTestAuthService(t)
	ctx := context.Background()
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	stored := &models.User{ID: uuid.New(), Name: "Ops", Email: "ops@example.org", PasswordHash: hash, Role: models.RoleAdmin}

	users.EXPECT().GetByEmail(ctx, "ops@example.org").Return(stored, nil)
	users.EXPECT().GetByID(ctx, stored.ID).Return(stored, nil)

	session, err := svc.Login(ctx, "OPS@example.org", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, stored, session.User)

	principal, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, principal.UserID)
	assert.Equal(t, models.RoleAdmin, principal.Role)
	assert.Equal(t, "Ops", principal.Name)
}

func TestLogin_Failures(t *testing.T) {
	svc, users := newTestAuthService(t)
	ctx := context.Background()
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)

	users.EXPECT().GetByEmail(ctx, "ghost@example.org").Return(nil, models.ErrNotFound)
	_, err = svc.Login(ctx, "ghost@example.org", "secret1")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	users.EXPECT().GetByEmail(ctx, "ops@example.org").Return(&models.User{PasswordHash: hash}, nil)
	_, err = svc.Login(ctx, "ops@example.org", "wrong-password")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	users.EXPECT().GetByEmail(ctx, "db@example.org").Return(nil, errors.New("connection refused"))
	_, err = svc.Login(ctx, "db@example.org", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	_, err := svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthenticate_UsesStoredAccount(t *testing.T) {
	svc, users := newTestAuthService(t)
	ctx := context.Background()
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	stored := &models.User{ID: uuid.New(), Name: "Ops", Email: "ops@example.org", PasswordHash: hash, Role: models.RoleAdmin}

	users.EXPECT().GetByEmail(ctx, "ops@example.org").Return(stored, nil)
	session, err := svc.Login(ctx, "ops@example.org", "secret1")
	require.NoError(t, err)

	t.Run("deleted admin loses access", func(t *testing.T) {
		users.EXPECT().GetByID(ctx, stored.ID).Return(nil, fmt.Errorf("repository: %w", models.ErrNotFound))
		_, err := svc.Authenticate(ctx, session.Token)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("demoted role applies immediately", func(t *testing.T) {
		demoted := *stored
		demoted.Role = models.RoleUser
		users.EXPECT().GetByID(ctx, stored.ID).Return(&demoted, nil)
		principal, err := svc.Authenticate(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, principal.Role)
	})

	t.Run("lookup failure is not unauthorized", func(t *testing.T) {
		users.EXPECT().GetByID(ctx, stored.ID).Return(nil, errors.New("connection refused"))
		_, err := svc.Authenticate(ctx, session.Token)
		require.Error(t, err)
		assert.NotErrorIs(t, err, models.ErrUnauthorized)
	})
}

func TestGetProfile(t *testing.T) {
	svc, users := newTestAuthService(t)
	ctx := context.Background()
	id := uuid.New()

	users.EXPECT().GetByID(ctx, id).Return(nil, models.ErrNotFound)
	_, err := svc.GetProfile(ctx, id)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
