// Package jwt реализует выпуск и парсинг сессионных JWT токенов.
//
// Claims расширяет стандартные claims JWT снимком учётной записи на момент
// выпуска токена: uid, email, роль и статус подписки. Снимок подписки может
// устареть относительно базы, поэтому решения о доступе, зависящие от
// подписки, принимаются по актуальной записи пользователя, а не по токену.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims описывает пользовательские данные, хранящиеся в сессионном токене.
type Claims struct {
	UserUID            string `json:"user_uid"`            // Идентификатор пользователя
	Email              string `json:"email"`               // Почта пользователя
	Role               string `json:"role"`                // Роль пользователя
	SubscriptionStatus string `json:"subscription_status"` // Снимок статуса подписки на момент выпуска
	jwt.RegisteredClaims
}

// Maker описывает интерфейс для выпуска и парсинга сессионных токенов.
type Maker interface {
	// GenerateToken выпускает токен со снимком учётной записи.
	GenerateToken(uid, email, role, subscriptionStatus string) (string, error)
	// ParseToken проверяет подпись и срок действия токена и возвращает Claims.
	ParseToken(tokenStr string) (*Claims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
