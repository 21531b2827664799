// Package services содержит воркер отправки писем по событиям платформы:
// приветствие при регистрации, токен сброса пароля и изменения подписки.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/lms-access/internal/lib/sl"
	"github.com/magabrotheeeer/lms-access/internal/lib/smtp"
)

// SenderService отправляет письма по сообщениям из очередей.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

type welcomeEvent struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type resetEvent struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type subscriptionEvent struct {
	Email          string `json:"email"`
	SubscriptionID string `json:"subscription_id"`
	Refunded       string `json:"refunded"`
}

// SendWelcome отправляет приветственное письмо новому пользователю.
func (s *SenderService) SendWelcome(body []byte) error {
	var event welcomeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Добро пожаловать на платформу"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВаша учётная запись создана. Оформите подписку, чтобы открыть доступ к лекциям курсов.",
		event.FullName)

	return s.sendEmail([]string{event.Email}, subject, bodyText)
}

// SendPasswordReset отправляет одноразовый токен сброса пароля.
func (s *SenderService) SendPasswordReset(body []byte) error {
	var event resetEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Восстановление пароля"
	bodyText := fmt.Sprintf("Здравствуйте!\n\nВаш код для восстановления пароля: %s\n\nКод действует 15 минут. Если вы не запрашивали восстановление, проигнорируйте это письмо.",
		event.Token)

	return s.sendEmail([]string{event.Email}, subject, bodyText)
}

// SendSubscriptionUpdate отправляет письмо об активации или отмене подписки.
func (s *SenderService) SendSubscriptionUpdate(body []byte) error {
	var event subscriptionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	var subject, bodyText string
	switch {
	case event.SubscriptionID != "":
		subject = "Подписка активирована"
		bodyText = "Здравствуйте!\n\nОплата получена, подписка активна. Лекции всех курсов теперь доступны."
	case event.Refunded == "true":
		subject = "Подписка отменена, платёж возвращён"
		bodyText = "Здравствуйте!\n\nВаша подписка отменена. Платёж будет возвращён в течение нескольких рабочих дней."
	default:
		subject = "Подписка отменена"
		bodyText = "Здравствуйте!\n\nВаша подписка отменена. Срок возврата платежа истёк, поэтому возврат не выполняется."
	}

	return s.sendEmail([]string{event.Email}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.String("subject", subject))
	return nil
}
