package postgres

import (
	"context"
	"time"

	"github.com/MatviieshynO/auth-service/internal/domain/user"
)

// CreateVerification persists the email verification record issued alongside
// a freshly created account.
func (r *UsersRepo) CreateVerification(ctx context.Context, v user.EmailVerification) error {
	return r.observe("verifications.create", func() error {
		_, err := r.pool.Exec(
			ctx,
			`INSERT INTO email_verifications (user_id, token, confirm_code, token_expiry, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			v.UserID, v.Token, v.ConfirmCode, v.ExpiresAt, time.Now().UTC(),
		)
		return err
	})
}

// GetVerificationByUser returns the latest verification record issued for an
// account. The confirm-email endpoint consumes it; this side only issues.
func (r *UsersRepo) GetVerificationByUser(ctx context.Context, userID int64) (user.EmailVerification, error) {
	var v user.EmailVerification

	err := r.observe("verifications.get_by_user", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT user_id, token, confirm_code, token_expiry
			 FROM email_verifications
			 WHERE user_id = $1
			 ORDER BY created_at DESC
			 LIMIT 1`,
			userID,
		).Scan(&v.UserID, &v.Token, &v.ConfirmCode, &v.ExpiresAt)
	})

	if err != nil {
		return user.EmailVerification{}, err
	}

	return v, nil
}
