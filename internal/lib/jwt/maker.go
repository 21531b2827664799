package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenExpired возвращается из ParseToken, когда срок действия токена истёк.
// Отличается от прочих ошибок парсинга, чтобы обработчики могли вернуть
// осмысленный ответ клиенту.
var ErrTokenExpired = errors.New("token expired")

// GenerateToken выпускает JWT со снимком учётной записи, подписывая его
// секретным ключом. Каждому токену присваивается уникальный ID (jti),
// по которому токен можно отозвать через denylist при выходе из системы.
func (j *MakerImpl) GenerateToken(uid, email, role, subscriptionStatus string) (string, error) {
	claims := Claims{
		UserUID:            uid,
		Email:              email,
		Role:               role,
		SubscriptionStatus: subscriptionStatus,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT, проверяет его подпись и срок действия,
// возвращает Claims с данными, если токен корректен.
// Хранилище не используется: результат зависит только от токена,
// секретного ключа и текущего времени.
func (j *MakerImpl) ParseToken(tokenStr string) (*Claims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
