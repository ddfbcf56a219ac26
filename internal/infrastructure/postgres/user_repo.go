package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ninjahub/ninjahub-core/internal/domain"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, display_name, role, created_at, updated_at`

// Create inserts the user and every meta value in one transaction.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	var created *domain.User
	err := withTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO users (username, email, password_hash, display_name, role)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+userColumns,
			u.Username, u.Email, u.PasswordHash, u.DisplayName, u.Role,
		)
		var err error
		created, err = scanUser(row)
		if err != nil {
			switch constraint, ok := uniqueViolation(err); {
			case ok && constraint == "users_username_key":
				return domain.ErrExistingUserLogin
			case ok && constraint == "users_email_key":
				return domain.ErrExistingUserEmail
			}
			return err
		}
		created.Meta = u.Meta
		return writeUserMeta(ctx, tx, created.ID, u.Meta.Values())
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, login)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	if err := loadUserMeta(ctx, r.pool, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("username exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("email exists: %w", err)
	}
	return exists, nil
}

// Update writes the primary fields and every meta value.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	return withTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users
			SET    email = $2, display_name = $3, role = $4, updated_at = NOW()
			WHERE  id = $1`,
			u.ID, u.Email, u.DisplayName, u.Role)
		if err != nil {
			if constraint, ok := uniqueViolation(err); ok && constraint == "users_email_key" {
				return domain.ErrExistingUserEmail
			}
			return fmt.Errorf("update user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrUserNotFound
		}
		return writeUserMeta(ctx, tx, u.ID, u.Meta.Values())
	})
}

// SetMeta upserts the given meta values.
func (r *UserRepository) SetMeta(ctx context.Context, userID int64, values map[string]string) error {
	return writeUserMeta(ctx, r.pool, userID, values)
}

// ResetPassword consumes resetKey and stores the new hash atomically. The
// conditional clear row-locks the meta row, so of two concurrent calls with
// the same key only the first finds it.
func (r *UserRepository) ResetPassword(ctx context.Context, userID int64, resetKey, passwordHash string) error {
	if resetKey == "" {
		return domain.ErrResetEmptyKey
	}
	return withTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE user_meta
			SET    meta_value = ''
			WHERE  user_id = $1 AND meta_key = $2 AND meta_value = $3`,
			userID, domain.MetaResetPasswordKey, resetKey)
		if err != nil {
			return fmt.Errorf("consume reset key: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrResetEmptyKey
		}

		tag, err = tx.Exec(ctx,
			`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
			userID, passwordHash)
		if err != nil {
			return fmt.Errorf("set password: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}

func writeUserMeta(ctx context.Context, q querier, userID int64, values map[string]string) error {
	for k, v := range values {
		_, err := q.Exec(ctx, `
			INSERT INTO user_meta (user_id, meta_key, meta_value) VALUES ($1, $2, $3)
			ON CONFLICT (user_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`,
			userID, k, v)
		if err != nil {
			return fmt.Errorf("write user meta %s: %w", k, err)
		}
	}
	return nil
}

func loadUserMeta(ctx context.Context, q querier, u *domain.User) error {
	rows, err := q.Query(ctx, `SELECT meta_key, meta_value FROM user_meta WHERE user_id = $1`, u.ID)
	if err != nil {
		return fmt.Errorf("load user meta: %w", err)
	}
	stored, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([2]string, error) {
		var kv [2]string
		err := row.Scan(&kv[0], &kv[1])
		return kv, err
	})
	if err != nil {
		return fmt.Errorf("scan user meta: %w", err)
	}
	m := make(map[string]string, len(stored))
	for _, kv := range stored {
		m[kv[0]] = kv[1]
	}
	u.Meta.Load(m)
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := domain.NewUser()
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
