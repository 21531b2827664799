// Package models содержит доменную модель пользователя платформы,
// включающую данные учётной записи, хэш пароля, роль и ссылку на
// подписку во внешнем платёжном сервисе.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей платформы.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Статусы подписки пользователя. SubscriptionID заполнен только
// в статусах pending и active, при отмене он очищается.
const (
	SubscriptionNone      = "none"
	SubscriptionPending   = "pending"
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
)

// User представляет зарегистрированного пользователя платформы.
type User struct {
	UID                string     // Уникальный идентификатор пользователя
	Email              string     // Электронная почта (уникальная)
	FullName           string     // Полное имя пользователя
	PasswordHash       string     // Хэш пароля, наружу не сериализуется
	Role               string     // Роль пользователя, admin или user
	SubscriptionID     *string    // Идентификатор подписки в платёжном сервисе
	SubscriptionStatus string     // Статус подписки: none, pending, active, cancelled
	ResetTokenHash     *string    // SHA-256 хэш токена сброса пароля
	ResetTokenExpiry   *time.Time // Срок действия токена сброса пароля
	CreatedAt          time.Time
}

// HasLiveSubscription сообщает, есть ли у пользователя незавершённая подписка.
func (u *User) HasLiveSubscription() bool {
	return u.SubscriptionStatus == SubscriptionPending || u.SubscriptionStatus == SubscriptionActive
}
