package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/MatviieshynO/auth-service/internal/domain/user"
	"github.com/MatviieshynO/auth-service/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, first_name, family_name, email, password_hash, gender, role, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.FamilyName,
		&u.Email,
		&u.PasswordHash,
		&u.Gender,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_id", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))
		return err
	})

	return u, err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_email", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		))
		return err
	})

	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, params user.CreateParams) (user.User, error) {
	now := time.Now().UTC()

	var u user.User
	var err error

	err = r.observe("users.create", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`INSERT INTO users (first_name, family_name, email, password_hash, gender, role, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			 RETURNING `+userColumns,
			params.FirstName, params.FamilyName, params.Email, params.PasswordHash, params.Gender, params.Role, now,
		))
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

// Update persists the mutable profile fields. Only the fields present on the
// patch are written.
func (r *UsersRepo) Update(ctx context.Context, id int64, patch user.UpdateParams) (user.User, error) {
	set := make([]string, 0, 4)
	args := make([]any, 0, 5)
	args = append(args, id)

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, col+" = $"+strconv.Itoa(len(args)))
	}

	if patch.FirstName != nil {
		add("first_name", *patch.FirstName)
	}
	if patch.FamilyName != nil {
		add("family_name", *patch.FamilyName)
	}
	if patch.Gender != nil {
		add("gender", *patch.Gender)
	}

	add("updated_at", time.Now().UTC())

	var u user.User
	var err error

	err = r.observe("users.update", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`UPDATE users SET `+strings.Join(set, ", ")+` WHERE id = $1 RETURNING `+userColumns,
			args...,
		))
		return err
	})

	return u, err
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.update_password", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1 RETURNING `+userColumns,
			id, passwordHash, time.Now().UTC(),
		))
		return err
	})

	return u, err
}

// Delete removes the row and returns it, so callers can respond with the
// projection of the just-deleted account.
func (r *UsersRepo) Delete(ctx context.Context, id int64) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.delete", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`DELETE FROM users WHERE id = $1 RETURNING `+userColumns,
			id,
		))
		return err
	})

	return u, err
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var users []user.User

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT `+userColumns+` FROM users ORDER BY id`,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			users = append(users, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return users, nil
}

