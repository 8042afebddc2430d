package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/models"
)

// TokenManager выпускает и проверяет HS256 токены сессий
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager создает TokenManager
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue подписывает токен для субъекта и возвращает момент его истечения
func (m *TokenManager) Issue(p models.Principal) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)
	claims := jwt.MapClaims{
		"sub":   p.UserID.String(),
		"email": p.Email,
		"name":  p.Name,
		"role":  string(p.Role),
		"iat":   issuedAt.Unix(),
		"exp":   expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse проверяет подпись и срок действия токена
func (m *TokenManager) Parse(tokenString string) (*models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid session token", models.ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid token claims", models.ErrUnauthorized)
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject claim", models.ErrUnauthorized)
	}
	roleValue, _ := claims["role"].(string)
	role, ok := models.ParseRole(roleValue)
	if !ok {
		return nil, fmt.Errorf("%w: invalid role claim", models.ErrUnauthorized)
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return &models.Principal{
		UserID: userID,
		Email:  email,
		Name:   name,
		Role:   role,
	}, nil
}
