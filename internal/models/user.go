package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role определяет, какой кабинет и какой объем данных доступен пользователю
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var roleRank = map[Role]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// ParseRole разбирает роль
func ParseRole(value string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := roleRank[r]; !ok {
		return "", false
	}
	return r, true
}

// AtLeast - роль не ниже указанной
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min] && roleRank[r] > 0
}

// User - учетная запись гражданина или администратора
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Station      string    `json:"station,omitempty"`
	District     string    `json:"district,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayName возвращает имя, а при его отсутствии email
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

// Principal - аутентифицированный субъект запроса
type Principal struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   Role      `json:"role"`
}

// Session - результат успешного входа
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// SignUpInput - данные регистрации
type SignUpInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// AdminInput - данные нового администратора
type AdminInput struct {
	Name     string
	Email    string
	Password string
	Station  string
	District string
	Role     Role
}
