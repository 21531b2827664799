package services

import "errors"

// Типизированные ошибки жизненного цикла подписки. Сервис не оставляет
// частичных изменений на путях с ошибками, кроме явно безопасного
// промежуточного состояния: запись в журнале есть, статус ещё pending.
var (
	// ErrOperationNotPermitted операция несовместима с ролью или
	// текущим состоянием подписки (например, подписка для администратора).
	ErrOperationNotPermitted = errors.New("operation not permitted")

	// ErrPaymentNotVerified подпись платежа не прошла проверку.
	ErrPaymentNotVerified = errors.New("payment not verified")

	// ErrProvider платёжный сервис недоступен, вернул ошибку
	// или неразборчивый ответ. Сюда же относятся таймауты.
	ErrProvider = errors.New("payment provider error")

	// ErrLedgerWrite не удалось сохранить запись в журнале платежей.
	// Статус подписки при этом остаётся pending, повтор безопасен.
	ErrLedgerWrite = errors.New("failed to write payment record")

	// ErrLedgerEntryMissing запись журнала не найдена при отмене.
	// Без неё нельзя посчитать окно возврата, операция прерывается.
	ErrLedgerEntryMissing = errors.New("payment record missing")
)
