package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

var ErrNoToken = errors.New("token is empty")

// Claims - то, что клиенту нужно знать о токене для отображения интерфейса.
// Подпись проверяет бэкенд, здесь токен только читается.
type Claims struct {
	UserID    int64
	Email     string
	Role      string
	ExpiresAt time.Time
}

// ParseClaims разбирает токен без проверки подписи
func ParseClaims(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrNoToken
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, mapClaims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims := &Claims{}
	switch sub := mapClaims["sub"].(type) {
	case string:
		claims.UserID, _ = strconv.ParseInt(sub, 10, 64)
	case float64:
		claims.UserID = int64(sub)
	}
	claims.Email, _ = mapClaims["email"].(string)
	claims.Role, _ = mapClaims["role"].(string)
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}

// RoleFromToken возвращает роль из токена или пустую строку
func RoleFromToken(tokenStr string) string {
	claims, err := ParseClaims(tokenStr)
	if err != nil {
		return ""
	}
	return claims.Role
}

func IsAdmin(tokenStr string) bool {
	return RoleFromToken(tokenStr) == RoleAdmin
}
