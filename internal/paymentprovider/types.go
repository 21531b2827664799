// Package paymentprovider реализует HTTP-клиент платёжного сервиса,
// обслуживающего регулярные платежи за подписку: создание и отмену
// подписки, запрос её текущего статуса и возврат платежа.
package paymentprovider

// Статусы подписки на стороне платёжного сервиса.
const (
	StatusCreated   = "created"
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// CreateSubscriptionRequest представляет запрос на создание подписки.
type CreateSubscriptionRequest struct {
	PlanID         string `json:"plan_id"`         // Идентификатор тарифного плана
	CustomerNotify int    `json:"customer_notify"` // 1 — уведомления клиенту шлёт платёжный сервис
	TotalCount     int    `json:"total_count"`     // Количество платёжных циклов
}

// Subscription представляет подписку в ответах платёжного сервиса.
type Subscription struct {
	ID      string `json:"id"`
	PlanID  string `json:"plan_id"`
	Status  string `json:"status"`
	StartAt int64  `json:"start_at"` // Unix-время начала подписки
}

// RefundRequest представляет запрос на возврат платежа.
type RefundRequest struct {
	Speed string `json:"speed"` // Скорость возврата, например "optimum"
}

// Refund представляет ответ на запрос возврата.
type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

// SubscriptionList представляет постраничный список подписок.
type SubscriptionList struct {
	Count int            `json:"count"`
	Items []Subscription `json:"items"`
}
