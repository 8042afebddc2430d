package service

//go:generate mockgen -source=auth.go -destination=mocks/mock_auth.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/auth"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/sirupsen/logrus"
)

// UserRepository определяет контракт для работы с бд пользователей
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	CountByRole(ctx context.Context, role models.Role) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthService определяет контракт регистрации и входа
type AuthService interface {
	SignUp(ctx context.Context, input models.SignUpInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type authService struct {
	users  UserRepository
	tokens *auth.TokenManager
	logger *logrus.Logger
}

func NewAuthService(users UserRepository, tokens *auth.TokenManager, logger *logrus.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// SignUp регистрирует гражданина с ролью user
func (s *authService) SignUp(ctx context.Context, input models.SignUpInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "SignUp",
		"email":   email,
	})
	log.Info("Attempting to register a new user")

	if err := validateCredentials(email, input.Password); err != nil {
		return nil, err
	}
	if input.Password != input.ConfirmPassword {
		return nil, fmt.Errorf("%w: Passwords do not match", models.ErrInvalidInput)
	}

	user, err := s.createUser(ctx, email, strings.TrimSpace(input.Name), input.Password, models.RoleUser, "", "")
	if err != nil {
		log.WithError(err).Warn("Failed to register user")
		return nil, err
	}

	log.WithField("user_id", user.ID).Info("User registered successfully")
	return user, nil
}

func (s *authService) createUser(ctx context.Context, email, name, password string, role models.Role, station, district string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("service: could not hash password: %w", err)
	}
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Station:      strings.TrimSpace(station),
		District:     strings.TrimSpace(district),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service: could not create user: %w", err)
	}
	return user, nil
}

// Login проверяет пароль и выпускает токен сессии
func (s *authService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	email = normalizeEmail(email)
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "Login",
		"email":   email,
	})

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("Login attempt for unknown email")
			return nil, fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)
		}
		log.WithError(err).Error("Failed to load user")
		return nil, fmt.Errorf("service: could not load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		log.Warn("Login attempt with wrong password")
		return nil, fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)
	}

	token, expiresAt, err := s.tokens.Issue(models.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.DisplayName(),
		Role:   user.Role,
	})
	if err != nil {
		log.WithError(err).Error("Failed to issue session token")
		return nil, fmt.Errorf("service: could not issue token: %w", err)
	}

	log.WithField("role", user.Role).Info("User logged in")
	return &models.Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate разбирает токен сессии. Роль берется из сохраненной учетной записи,
// поэтому удаленный или пониженный пользователь теряет доступ сразу.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	principal, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.WithField("user_id", principal.UserID).Warn("Token presented for a deleted user")
			return nil, fmt.Errorf("%w: account no longer exists", models.ErrUnauthorized)
		}
		return nil, fmt.Errorf("service: could not load session user: %w", err)
	}

	return &models.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.DisplayName(),
		Role:   user.Role,
	}, nil
}

// GetProfile возвращает профиль пользователя
func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get profile: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email address", models.ErrInvalidInput)
	}
	if len(password) < auth.MinPasswordLength {
		return fmt.Errorf("%w: Password must be at least %d characters", models.ErrInvalidInput, auth.MinPasswordLength)
	}
	return nil
}
