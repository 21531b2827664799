package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/lms-access/internal/models"
)

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var subscriptionID, resetTokenHash sql.NullString
	var resetTokenExpiry sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role,
		&subscriptionID, &u.SubscriptionStatus, &resetTokenHash, &resetTokenExpiry,
		&u.CreatedAt); err != nil {
		return nil, err
	}
	if subscriptionID.Valid {
		u.SubscriptionID = &subscriptionID.String
	}
	if resetTokenHash.Valid {
		u.ResetTokenHash = &resetTokenHash.String
	}
	if resetTokenExpiry.Valid {
		u.ResetTokenExpiry = &resetTokenExpiry.Time
	}
	return u, nil
}

const userColumns = `uid, email, full_name, password_hash, role,
			  subscription_id, subscription_status, reset_token_hash, reset_token_expiry,
			  created_at`

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (email, full_name, password_hash, role, subscription_status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.FullName, user.PasswordHash, user.Role,
		user.SubscriptionStatus).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по его почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateSubscription атомарно обновляет ссылку на подписку и её статус.
// subscriptionID равный nil очищает ссылку, это происходит при отмене.
func (s *Storage) UpdateSubscription(ctx context.Context, userUID string, subscriptionID *string, status string) error {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_id = $1,
			      subscription_status = $2
			  WHERE uid = $3`
	res, err := s.DB.ExecContext(ctx, query, subscriptionID, status, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}

// UpdateProfile обновляет имя пользователя.
func (s *Storage) UpdateProfile(ctx context.Context, userUID, fullName string) error {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET full_name = $1
			  WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, fullName, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePassword заменяет хэш пароля и очищает токен сброса, если он был.
func (s *Storage) UpdatePassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_hash = $1,
			      reset_token_hash = NULL,
			      reset_token_expiry = NULL
			  WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, passwordHash, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetResetToken сохраняет хэш токена сброса пароля и срок его действия.
func (s *Storage) SetResetToken(ctx context.Context, userUID, tokenHash string, expiry time.Time) error {
	const op = "storage.SetResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET reset_token_hash = $1,
			      reset_token_expiry = $2
			  WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, tokenHash, expiry, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserByResetToken возвращает пользователя по хэшу токена сброса пароля.
func (s *Storage) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	const op = "storage.GetUserByResetToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE reset_token_hash = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, tokenHash))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
