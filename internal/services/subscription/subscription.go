// Package services содержит бизнес-логику жизненного цикла платной подписки.
//
// Подписка проходит состояния none -> pending -> active -> cancelled.
// Переходы согласуются с платёжным сервисом и журналом платежей:
// активация возможна только после проверки подписи платежа и записи
// в журнал, отмена считает окно возврата по дате записи журнала.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/lms-access/internal/lib/month"
	"github.com/magabrotheeeer/lms-access/internal/lib/signature"
	"github.com/magabrotheeeer/lms-access/internal/models"
	"github.com/magabrotheeeer/lms-access/internal/paymentprovider"
)

// RefundWindow окно после подтверждения платежа, в течение которого
// отмена подписки сопровождается возвратом. Ровно 14 дней уже не
// дают права на возврат: elapsed >= RefundWindow означает отказ.
const RefundWindow = 14 * 24 * time.Hour

// AccountRepository определяет методы для работы с учётными записями.
type AccountRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// UpdateSubscription атомарно обновляет ссылку на подписку и статус.
	UpdateSubscription(ctx context.Context, userUID string, subscriptionID *string, status string) error
}

// LedgerRepository определяет методы для работы с журналом платежей.
type LedgerRepository interface {
	// SavePayment сохраняет подтверждённый платёж.
	SavePayment(ctx context.Context, payment models.Payment) (int, error)
	// GetPaymentBySubscriptionID находит запись по подписке.
	GetPaymentBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Payment, bool, error)
	// DeletePayment удаляет запись после подтверждённого возврата.
	DeletePayment(ctx context.Context, subscriptionID string) error
}

// BillingProvider описывает вызовы платёжного сервиса, используемые циклом.
type BillingProvider interface {
	CreateSubscription(ctx context.Context, planID string, notifyCustomer bool, totalCycles int) (*paymentprovider.Subscription, error)
	FetchSubscription(ctx context.Context, id string) (*paymentprovider.Subscription, error)
	CancelSubscription(ctx context.Context, id string) (*paymentprovider.Subscription, error)
	RefundPayment(ctx context.Context, paymentID, speed string) (*paymentprovider.Refund, error)
	ListSubscriptions(ctx context.Context, count, skip int) (*paymentprovider.SubscriptionList, error)
}

// Notifier описывает канал уведомлений, отделённый от пути запроса.
// Публикация не возвращает ошибку: сбой уведомления не влияет на операцию.
type Notifier interface {
	Publish(routingKey string, event any)
}

// SubscriptionService реализует переходы жизненного цикла подписки.
type SubscriptionService struct {
	accounts    AccountRepository
	ledger      LedgerRepository
	provider    BillingProvider
	notifier    Notifier
	secret      string // Общий секрет для проверки подписи платежа
	planID      string
	totalCycles int
	locks       keyedMutex
	now         func() time.Time
	log         *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(accounts AccountRepository, ledger LedgerRepository,
	provider BillingProvider, notifier Notifier,
	secret, planID string, totalCycles int, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		accounts:    accounts,
		ledger:      ledger,
		provider:    provider,
		notifier:    notifier,
		secret:      secret,
		planID:      planID,
		totalCycles: totalCycles,
		now:         time.Now,
		log:         log,
	}
}

// Create создает подписку в платёжном сервисе и переводит пользователя
// в статус pending. Администраторы не могут оформлять подписку, как и
// пользователи с уже живой подпиской. При ошибке платёжного сервиса
// локальное состояние не меняется.
func (s *SubscriptionService) Create(ctx context.Context, userUID string) (string, error) {
	const op = "services.subscription.Create"
	unlock := s.locks.Lock(userUID)
	defer unlock()

	user, err := s.accounts.GetUser(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if user.Role == models.RoleAdmin {
		return "", fmt.Errorf("%s: admin cannot purchase a subscription: %w", op, ErrOperationNotPermitted)
	}
	if user.HasLiveSubscription() {
		return "", fmt.Errorf("%s: subscription already exists: %w", op, ErrOperationNotPermitted)
	}

	sub, err := s.provider.CreateSubscription(ctx, s.planID, true, s.totalCycles)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrProvider, err)
	}
	if sub.ID == "" {
		return "", fmt.Errorf("%s: empty subscription id in provider response: %w", op, ErrProvider)
	}

	if err := s.accounts.UpdateSubscription(ctx, userUID, &sub.ID, models.SubscriptionPending); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	paymentEvents.WithLabelValues("created").Inc()
	s.log.Info("subscription created",
		slog.String("user_uid", userUID), slog.String("subscription_id", sub.ID))
	return sub.ID, nil
}

// VerifyPayment проверяет подпись платёжного колбэка и активирует подписку.
//
// Подпись считается по идентификатору подписки из учётной записи, а не из
// запроса. Запись в журнал платежей строго предшествует активации: сбой
// между этими шагами оставляет восстановимое состояние, где запись есть,
// а статус ещё pending. Повторный колбэк по активной подписке принимается
// идемпотентно и не создаёт дубликата в журнале.
func (s *SubscriptionService) VerifyPayment(ctx context.Context, userUID, paymentID, providedSignature, subscriptionID string) error {
	const op = "services.subscription.VerifyPayment"
	unlock := s.locks.Lock(userUID)
	defer unlock()

	user, err := s.accounts.GetUser(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !user.HasLiveSubscription() || user.SubscriptionID == nil {
		return fmt.Errorf("%s: no subscription awaiting payment: %w", op, ErrOperationNotPermitted)
	}
	externalID := *user.SubscriptionID

	if !signature.Verify(s.secret, paymentID, externalID, providedSignature) {
		return fmt.Errorf("%s: %w", op, ErrPaymentNotVerified)
	}

	if user.SubscriptionStatus == models.SubscriptionActive {
		// повторный колбэк по уже активной подписке
		s.log.Info("redundant payment callback ignored",
			slog.String("user_uid", userUID), slog.String("payment_id", paymentID))
		return nil
	}

	_, found, err := s.ledger.GetPaymentBySubscriptionID(ctx, externalID)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrLedgerWrite, err)
	}
	if !found {
		if _, err := s.ledger.SavePayment(ctx, models.Payment{
			PaymentID:      paymentID,
			SubscriptionID: externalID,
			Signature:      providedSignature,
		}); err != nil {
			return fmt.Errorf("%s: %w: %w", op, ErrLedgerWrite, err)
		}
	}

	// активация строго после записи в журнал
	if err := s.accounts.UpdateSubscription(ctx, userUID, &externalID, models.SubscriptionActive); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	paymentEvents.WithLabelValues("activated").Inc()
	s.notifier.Publish("subscription.activated", map[string]string{
		"email":           user.Email,
		"subscription_id": externalID,
	})
	s.log.Info("subscription activated",
		slog.String("user_uid", userUID), slog.String("subscription_id", externalID))
	return nil
}

// Cancel отменяет подписку. Возвращает признак того, что платёж был возвращён.
//
// Отмена безопасна к повторному вызову: уже отменённая учётная запись
// возвращает успех без обращений к платёжному сервису, а уже отменённая
// на стороне платёжного сервиса подписка не отменяется второй раз. Решение о
// возврате принимается только по записи журнала платежей, её отсутствие
// прерывает операцию. При elapsed < RefundWindow выполняется возврат,
// при неудаче возврата локальное состояние не меняется и отмену можно
// повторить.
func (s *SubscriptionService) Cancel(ctx context.Context, userUID string) (bool, error) {
	const op = "services.subscription.Cancel"
	unlock := s.locks.Lock(userUID)
	defer unlock()

	user, err := s.accounts.GetUser(ctx, userUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if user.Role == models.RoleAdmin {
		return false, fmt.Errorf("%s: admin cannot cancel a subscription: %w", op, ErrOperationNotPermitted)
	}
	if user.SubscriptionStatus == models.SubscriptionCancelled {
		// повторная отмена уже отменённой подписки: успех без обращения
		// к платёжному сервису и без повторного возврата
		s.log.Info("subscription already cancelled", slog.String("user_uid", userUID))
		return false, nil
	}
	if !user.HasLiveSubscription() || user.SubscriptionID == nil {
		return false, fmt.Errorf("%s: no subscription to cancel: %w", op, ErrOperationNotPermitted)
	}
	externalID := *user.SubscriptionID

	remote, err := s.provider.FetchSubscription(ctx, externalID)
	if err != nil {
		return false, fmt.Errorf("%s: %w: %w", op, ErrProvider, err)
	}
	if remote.Status != paymentprovider.StatusCancelled {
		if _, err := s.provider.CancelSubscription(ctx, externalID); err != nil {
			return false, fmt.Errorf("%s: %w: %w", op, ErrProvider, err)
		}
	}

	payment, found, err := s.ledger.GetPaymentBySubscriptionID(ctx, externalID)
	if err != nil {
		return false, fmt.Errorf("%s: %w: %w", op, ErrLedgerWrite, err)
	}
	if !found {
		return false, fmt.Errorf("%s: subscription %s: %w", op, externalID, ErrLedgerEntryMissing)
	}

	elapsed := s.now().Sub(payment.CreatedAt)
	if elapsed >= RefundWindow {
		// окно возврата истекло, запись журнала сохраняется как история
		if err := s.accounts.UpdateSubscription(ctx, userUID, nil, models.SubscriptionCancelled); err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		paymentEvents.WithLabelValues("cancelled").Inc()
		s.notifier.Publish("subscription.cancelled", map[string]string{
			"email":    user.Email,
			"refunded": "false",
		})
		s.log.Info("subscription cancelled without refund",
			slog.String("user_uid", userUID), slog.String("subscription_id", externalID))
		return false, nil
	}

	if _, err := s.provider.RefundPayment(ctx, payment.PaymentID, "optimum"); err != nil {
		return false, fmt.Errorf("%s: refund failed: %w: %w", op, ErrProvider, err)
	}

	if err := s.accounts.UpdateSubscription(ctx, userUID, nil, models.SubscriptionCancelled); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	// журнал чистится последним, только после подтверждённого возврата
	if err := s.ledger.DeletePayment(ctx, externalID); err != nil {
		s.log.Error("failed to delete payment record after refund",
			slog.String("subscription_id", externalID), slog.Any("err", err))
	}

	paymentEvents.WithLabelValues("refunded").Inc()
	s.notifier.Publish("subscription.cancelled", map[string]string{
		"email":    user.Email,
		"refunded": "true",
	})
	s.log.Info("subscription cancelled with refund",
		slog.String("user_uid", userUID), slog.String("subscription_id", externalID))
	return true, nil
}

// MonthlySales строит помесячный отчёт по оформленным подпискам
// для административной панели.
func (s *SubscriptionService) MonthlySales(ctx context.Context, count, skip int) (map[string]int, error) {
	const op = "services.subscription.MonthlySales"

	list, err := s.provider.ListSubscriptions(ctx, count, skip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProvider, err)
	}

	startDates := make([]time.Time, 0, len(list.Items))
	for _, sub := range list.Items {
		startDates = append(startDates, time.Unix(sub.StartAt, 0).UTC())
	}
	return month.CountByMonth(startDates).ToMap(), nil
}
