package models

import (
	"github.com/golang-jwt/jwt/v4"
)

// AdminClaims is the JWT payload issued on panel login.
type AdminClaims struct {
	EmployeeID int64  `json:"employee_id"`
	Name       string `json:"name"`
	TelegramID string `json:"telegram_id"`
	IsAdmin    bool   `json:"is_admin"`
	jwt.RegisteredClaims
}
