package db

import (
	"context"
	"errors"
	"time"

	"github.com/MatviieshynO/auth-service/internal/config"
	"github.com/MatviieshynO/auth-service/internal/domain/user"
	"github.com/MatviieshynO/auth-service/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdmin seeds the initial Admin account when configured and absent.
func EnsureAdmin(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the account exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (first_name, family_name, email, password_hash, gender, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		cfg.AdminFirstName, "Account", cfg.AdminEmail, hash, user.GenderMale, user.RoleAdmin, now,
	)

	return err
}
