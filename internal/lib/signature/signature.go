// Package signature реализует проверку подписи платёжного колбэка.
//
// Платёжный сервис подписывает пару (payment_id, subscription_id) алгоритмом
// HMAC-SHA256 на общем секретном ключе. Verify пересчитывает подпись и
// сравнивает её с присланной. Сравнение выполняется за постоянное время,
// чтобы исключить утечку секрета через тайминг.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verify проверяет подпись платежа. Подпись считается по строке
// "<paymentID>|<subscriptionID>" и передаётся в hex-кодировке.
func Verify(secret, paymentID, subscriptionID, providedSignature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(paymentID + "|" + subscriptionID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(providedSignature))
}

// Sign возвращает ожидаемую подпись для пары платёж-подписка.
// Используется в тестах и при отладке интеграции с платёжным сервисом.
func Sign(secret, paymentID, subscriptionID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(paymentID + "|" + subscriptionID))
	return hex.EncodeToString(mac.Sum(nil))
}
