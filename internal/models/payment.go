package models

import "time"

// Payment представляет подтверждённый платёж за подписку.
// Запись создаётся только после успешной проверки подписи платёжного
// сервиса и служит единственным основанием для расчёта окна возврата.
type Payment struct {
	ID             int       `json:"id"`
	PaymentID      string    `json:"payment_id"`      // Идентификатор платежа в платёжном сервисе
	SubscriptionID string    `json:"subscription_id"` // Идентификатор подписки в платёжном сервисе
	Signature      string    `json:"signature"`       // Подпись, с которой платёж прошёл проверку
	CreatedAt      time.Time `json:"created_at"`      // Опорная дата для расчёта окна возврата
}
