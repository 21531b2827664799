package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/lms-access/internal/models"
)

// SavePayment сохраняет подтверждённый платёж в журнал.
// Уникальный индекс по subscription_id гарантирует не более одной
// живой записи на подписку.
func (s *Storage) SavePayment(ctx context.Context, payment models.Payment) (int, error) {
	const op = "storage.SavePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (payment_id, subscription_id, signature)
			  VALUES ($1, $2, $3) RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		payment.PaymentID, payment.SubscriptionID, payment.Signature).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetPaymentBySubscriptionID находит запись журнала по идентификатору подписки.
// Отсутствие записи не является ошибкой хранилища и возвращается флагом found.
func (s *Storage) GetPaymentBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Payment, bool, error) {
	const op = "storage.GetPaymentBySubscriptionID"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, payment_id, subscription_id, signature, created_at
			  FROM payments
			  WHERE subscription_id = $1`
	p := &models.Payment{}
	err := s.DB.QueryRowContext(ctx, query, subscriptionID).Scan(
		&p.ID, &p.PaymentID, &p.SubscriptionID, &p.Signature, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return p, true, nil
}

// DeletePayment удаляет запись журнала по идентификатору подписки.
// Вызывается только после подтверждённого возврата платежа.
func (s *Storage) DeletePayment(ctx context.Context, subscriptionID string) error {
	const op = "storage.DeletePayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM payments WHERE subscription_id = $1`
	if _, err := s.DB.ExecContext(ctx, query, subscriptionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
