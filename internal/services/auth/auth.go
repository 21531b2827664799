// Package services содержит логику бизнес-уровня для работы с учётными
// записями: регистрацию, вход, выход с отзывом токена и сброс пароля.
package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/lms-access/internal/lib/jwt"
	"github.com/magabrotheeeer/lms-access/internal/lib/password"
	"github.com/magabrotheeeer/lms-access/internal/models"
)

// Время жизни токена сброса пароля.
const resetTokenTTL = 15 * time.Minute

// Типизированные ошибки аутентификации.
var (
	// ErrInvalidCredentials пара email/пароль не подошла. Наружу не
	// уточняется, существует ли такой пользователь.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken пользователь с таким email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")

	// ErrResetTokenInvalid токен сброса не найден или просрочен.
	ErrResetTokenInvalid = errors.New("reset token is invalid or expired")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateProfile обновляет отображаемое имя пользователя.
	UpdateProfile(ctx context.Context, userUID, fullName string) error

	// UpdatePassword сохраняет новый хэш пароля и сбрасывает токен восстановления.
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error

	// SetResetToken сохраняет хэш токена сброса и срок его действия.
	SetResetToken(ctx context.Context, userUID, tokenHash string, expiry time.Time) error

	// GetUserByResetToken находит пользователя по хэшу токена сброса.
	GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
}

// TokenDenylist хранит идентификаторы отозванных токенов до истечения
// их собственного срока действия.
type TokenDenylist interface {
	AddToDenylist(ctx context.Context, jti string, ttl time.Duration) error
}

// Notifier описывает канал уведомлений, отделённый от пути запроса.
type Notifier interface {
	Publish(routingKey string, event any)
}

// AuthService отвечает за регистрацию, авторизацию и управление паролем.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	denylist TokenDenylist
	notifier Notifier
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker,
	denylist TokenDenylist, notifier Notifier, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		denylist: denylist,
		notifier: notifier,
		log:      log,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user".
func (s *AuthService) Register(ctx context.Context, email, fullName, rawPassword string) (string, error) {
	const op = "services.auth.Register"

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:              email,
		FullName:           fullName,
		PasswordHash:       hashed,
		Role:               models.RoleUser, // дефолтная роль при регистрации
		SubscriptionStatus: models.SubscriptionNone,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.Publish("user.registered", map[string]string{
		"email":     email,
		"full_name": fullName,
	})
	s.log.Info("user registered", slog.String("user_uid", uid))
	return uid, nil
}

// Login проверяет пароль пользователя и выдаёт JWT со снимком
// email, роли и статуса подписки на момент входа.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, user.Role, user.SubscriptionStatus)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// Logout отзывает токен: его jti попадает в денай-лист до момента,
// когда токен истёк бы сам.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.Claims) error {
	const op = "services.auth.Logout"

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.denylist.AddToDenylist(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("token revoked", slog.String("user_uid", claims.UserUID))
	return nil
}

// Me возвращает актуальную учётную запись пользователя из хранилища,
// а не снимок из токена.
func (s *AuthService) Me(ctx context.Context, userUID string) (*models.User, error) {
	const op = "services.auth.Me"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateProfile меняет отображаемое имя и выдаёт свежий токен,
// чтобы снимок в токене не расходился с учётной записью.
func (s *AuthService) UpdateProfile(ctx context.Context, userUID, fullName string) (string, error) {
	const op = "services.auth.UpdateProfile"

	if err := s.users.UpdateProfile(ctx, userUID, fullName); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, user.Role, user.SubscriptionStatus)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *AuthService) ChangePassword(ctx context.Context, userUID, currentPassword, newPassword string) error {
	const op = "services.auth.ChangePassword"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, currentPassword); err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePassword(ctx, userUID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RequestPasswordReset генерирует одноразовый токен сброса и отправляет
// его пользователю. В базе хранится только SHA-256 хэш токена. Для
// незарегистрированного email операция молча завершается успехом.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	const op = "services.auth.RequestPasswordReset"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// не раскрываем, существует ли учётная запись
		s.log.Info("password reset requested for unknown email")
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	token := hex.EncodeToString(raw)
	expiry := time.Now().UTC().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.UID, hashResetToken(token), expiry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.Publish("user.reset", map[string]string{
		"email": user.Email,
		"token": token,
	})
	s.log.Info("password reset token issued", slog.String("user_uid", user.UID))
	return nil
}

// ResetPassword завершает сброс: принимает токен из письма и новый пароль.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	const op = "services.auth.ResetPassword"

	user, err := s.users.GetUserByResetToken(ctx, hashResetToken(token))
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrResetTokenInvalid)
	}
	if user.ResetTokenExpiry == nil || time.Now().UTC().After(*user.ResetTokenExpiry) {
		return fmt.Errorf("%s: %w", op, ErrResetTokenInvalid)
	}
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePassword(ctx, user.UID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("password reset completed", slog.String("user_uid", user.UID))
	return nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
